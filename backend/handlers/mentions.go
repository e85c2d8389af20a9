package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// UserAutocompleteHandler returns usernames matching the q parameter, capped
// at 10. Serves both /user-autocomplete and its /mentions alias.
func UserAutocompleteHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	rows, err := db.Query(`SELECT username FROM users WHERE username LIKE ? ORDER BY username ASC LIMIT 10`,
		"%"+query+"%")
	if err != nil {
		log.Error().Err(err).Msg("autocomplete query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		usernames = append(usernames, name)
	}

	sendData(w, http.StatusOK, map[string]any{"data": usernames})
}
