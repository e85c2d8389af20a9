package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"retrospective/backend/authz"
	"retrospective/backend/guard"
	"retrospective/backend/models"
)

type followerDTO struct {
	FollowerID   int64     `json:"follower_id"`
	OwnerID      int64     `json:"owner_id"`
	Owner        string    `json:"owner"`
	FollowedID   int64     `json:"followed_id"`
	FollowedName string    `json:"followed_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type followPayload struct {
	FollowedID int64 `json:"followed_id"`
}

func ListFollowersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := clamp(toInt(q.Get("page"), 1), 1, 1000000)
	limit := clamp(toInt(q.Get("limit"), 20), 1, 100)
	offset := (page - 1) * limit

	query := `
SELECT f.follower_id, f.owner_id, uo.username, f.followed_id, uf.username, f.created_at
FROM followers f
JOIN users uo ON uo.user_id = f.owner_id
JOIN users uf ON uf.user_id = f.followed_id`
	var args []any
	if followed := toInt64(q.Get("followed"), 0); followed > 0 {
		query += ` WHERE f.followed_id = ?`
		args = append(args, followed)
	}
	query += `
ORDER BY f.created_at DESC, f.follower_id DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("list followers query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	items := []followerDTO{}
	for rows.Next() {
		var f followerDTO
		if err := rows.Scan(&f.FollowerID, &f.OwnerID, &f.Owner, &f.FollowedID, &f.FollowedName, &f.CreatedAt); err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		items = append(items, f)
	}

	sendData(w, http.StatusOK, map[string]any{"data": items, "page": page, "limit": limit})
}

func CreateFollowerHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	if err := authz.Check(authz.KindFollower, principal, authz.ActionCreate, authz.Record{}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p followPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if p.FollowedID <= 0 {
		sendErrorResponse(w, "Missing followed user id", http.StatusBadRequest)
		return
	}
	if err := userExists(p.FollowedID); err != nil {
		sendDomainError(w, err)
		return
	}
	if err := guard.CheckFollow(db, principal, p.FollowedID); err != nil {
		sendDomainError(w, err)
		return
	}

	res, err := db.Exec(`INSERT INTO followers (owner_id, followed_id) VALUES (?, ?)`, principal, p.FollowedID)
	if err != nil {
		if guard.IsUniqueViolation(err) {
			sendDomainError(w, guard.ErrAlreadyFollowing)
			return
		}
		log.Error().Err(err).Msg("insert follower failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	id, _ := res.LastInsertId()

	sendData(w, http.StatusCreated, map[string]any{
		"message":     "Now following",
		"follower_id": id,
	})
}

func GetFollowerHandler(w http.ResponseWriter, r *http.Request) {
	followerID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid follower id", http.StatusBadRequest)
		return
	}

	var f followerDTO
	err := db.QueryRow(`
SELECT f.follower_id, f.owner_id, uo.username, f.followed_id, uf.username, f.created_at
FROM followers f
JOIN users uo ON uo.user_id = f.owner_id
JOIN users uf ON uf.user_id = f.followed_id
WHERE f.follower_id = ?`, followerID).Scan(
		&f.FollowerID, &f.OwnerID, &f.Owner, &f.FollowedID, &f.FollowedName, &f.CreatedAt)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"data": f})
}

func DeleteFollowerHandler(w http.ResponseWriter, r *http.Request) {
	followerID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid follower id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	var f models.Follower
	err := db.QueryRow(`SELECT follower_id, owner_id, followed_id FROM followers WHERE follower_id=?`, followerID).
		Scan(&f.FollowerID, &f.OwnerID, &f.FollowedID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindFollower, principal, authz.ActionDelete, authz.Record{Owner: f.OwnerID}); err != nil {
		sendDomainError(w, err)
		return
	}

	if _, err := db.Exec(`DELETE FROM followers WHERE follower_id=?`, followerID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userExists(userID int64) error {
	var one int
	err := db.QueryRow(`SELECT 1 FROM users WHERE user_id=?`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return err
}
