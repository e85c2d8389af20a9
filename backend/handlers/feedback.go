package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type feedbackDTO struct {
	FeedbackID int64     `json:"feedback_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type feedbackPayload struct {
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Content   string `json:"content" validate:"required"`
}

func ListFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := clamp(toInt(q.Get("page"), 1), 1, 1000000)
	limit := clamp(toInt(q.Get("limit"), 20), 1, 100)
	offset := (page - 1) * limit

	query := `
SELECT feedback_id, first_name, last_name, email, content, created_at
FROM feedback`
	var args []any
	if search := strings.TrimSpace(q.Get("search")); search != "" {
		query += ` WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR content LIKE ?`
		pat := "%" + search + "%"
		args = append(args, pat, pat, pat, pat)
	}
	query += `
ORDER BY created_at DESC, feedback_id DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("list feedback query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	items := []feedbackDTO{}
	for rows.Next() {
		var f feedbackDTO
		if err := rows.Scan(&f.FeedbackID, &f.FirstName, &f.LastName, &f.Email, &f.Content, &f.CreatedAt); err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		items = append(items, f)
	}

	sendData(w, http.StatusOK, map[string]any{"data": items, "page": page, "limit": limit})
}

// CreateFeedbackHandler is the one write open to anonymous visitors.
func CreateFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var p feedbackPayload
	if !decodeBody(w, r, &p) {
		return
	}
	p.Email = strings.TrimSpace(p.Email)
	p.Content = strings.TrimSpace(p.Content)
	if err := payloadValidator().Struct(&p); err != nil {
		sendErrorResponse(w, "Email and content are required", http.StatusBadRequest)
		return
	}

	res, err := db.Exec(`INSERT INTO feedback (first_name, last_name, email, content) VALUES (?, ?, ?, ?)`,
		p.FirstName, p.LastName, p.Email, p.Content)
	if err != nil {
		log.Error().Err(err).Msg("insert feedback failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	id, _ := res.LastInsertId()

	sendData(w, http.StatusCreated, map[string]any{
		"message":     "Feedback received",
		"feedback_id": id,
	})
}
