package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"retrospective/backend/authz"
	"retrospective/backend/guard"
	"retrospective/backend/models"
)

type likeDTO struct {
	LikeID    int64     `json:"like_id"`
	OwnerID   int64     `json:"owner_id"`
	Owner     string    `json:"owner"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type likePayload struct {
	PostID int64 `json:"post_id"`
}

func ListLikesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := clamp(toInt(q.Get("page"), 1), 1, 1000000)
	limit := clamp(toInt(q.Get("limit"), 20), 1, 100)
	offset := (page - 1) * limit

	query := `
SELECT l.like_id, l.owner_id, u.username, l.post_id, l.created_at
FROM likes l
JOIN users u ON u.user_id = l.owner_id`
	var args []any
	if postID := toInt64(q.Get("post"), 0); postID > 0 {
		query += ` WHERE l.post_id = ?`
		args = append(args, postID)
	}
	query += `
ORDER BY l.created_at DESC, l.like_id DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("list likes query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	items := []likeDTO{}
	for rows.Next() {
		var l likeDTO
		if err := rows.Scan(&l.LikeID, &l.OwnerID, &l.Owner, &l.PostID, &l.CreatedAt); err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		items = append(items, l)
	}

	sendData(w, http.StatusOK, map[string]any{"data": items, "page": page, "limit": limit})
}

func CreateLikeHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	if err := authz.Check(authz.KindLike, principal, authz.ActionCreate, authz.Record{}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p likePayload
	if !decodeBody(w, r, &p) {
		return
	}
	if p.PostID <= 0 {
		sendErrorResponse(w, "Missing post id", http.StatusBadRequest)
		return
	}
	if err := postExists(p.PostID); err != nil {
		sendDomainError(w, err)
		return
	}
	if err := guard.CheckLike(db, principal, p.PostID); err != nil {
		sendDomainError(w, err)
		return
	}

	res, err := db.Exec(`INSERT INTO likes (owner_id, post_id) VALUES (?, ?)`, principal, p.PostID)
	if err != nil {
		// a concurrent like slipped past the pre-check
		if guard.IsUniqueViolation(err) {
			sendDomainError(w, guard.ErrAlreadyLiked)
			return
		}
		log.Error().Err(err).Msg("insert like failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	id, _ := res.LastInsertId()

	Emit("like.created", map[string]any{"like_id": id, "post_id": p.PostID, "owner_id": principal})

	sendData(w, http.StatusCreated, map[string]any{
		"message": "Post liked",
		"like_id": id,
	})
}

func GetLikeHandler(w http.ResponseWriter, r *http.Request) {
	likeID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid like id", http.StatusBadRequest)
		return
	}

	var l likeDTO
	err := db.QueryRow(`
SELECT l.like_id, l.owner_id, u.username, l.post_id, l.created_at
FROM likes l
JOIN users u ON u.user_id = l.owner_id
WHERE l.like_id = ?`, likeID).Scan(&l.LikeID, &l.OwnerID, &l.Owner, &l.PostID, &l.CreatedAt)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"data": l})
}

func DeleteLikeHandler(w http.ResponseWriter, r *http.Request) {
	likeID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid like id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	var like models.Like
	err := db.QueryRow(`SELECT like_id, owner_id, post_id FROM likes WHERE like_id=?`, likeID).
		Scan(&like.LikeID, &like.OwnerID, &like.PostID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindLike, principal, authz.ActionDelete, authz.Record{Owner: like.OwnerID}); err != nil {
		sendDomainError(w, err)
		return
	}

	if _, err := db.Exec(`DELETE FROM likes WHERE like_id=?`, likeID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
