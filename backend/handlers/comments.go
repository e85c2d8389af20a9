package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"retrospective/backend/authz"
	"retrospective/backend/models"
)

type commentDTO struct {
	CommentID    int64     `json:"comment_id"`
	PostID       int64     `json:"post_id"`
	OwnerID      int64     `json:"owner_id"`
	Owner        string    `json:"owner"`
	IsOwner      bool      `json:"is_owner"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type commentPayload struct {
	PostID  int64  `json:"post_id"`
	Content string `json:"content"`
}

func ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := clamp(toInt(q.Get("page"), 1), 1, 1000000)
	limit := clamp(toInt(q.Get("limit"), 20), 1, 50)
	offset := (page - 1) * limit
	viewer := currentUserID(r)

	query := `
SELECT c.comment_id, c.post_id, c.owner_id, u.username, u.profile_image, c.content, c.created_at, c.updated_at
FROM comments c
JOIN users u ON u.user_id = c.owner_id`
	var args []any
	if postID := toInt64(q.Get("post"), 0); postID > 0 {
		query += ` WHERE c.post_id = ?`
		args = append(args, postID)
	}
	query += `
ORDER BY c.created_at DESC, c.comment_id DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("list comments query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	items := []commentDTO{}
	for rows.Next() {
		var c commentDTO
		if err := rows.Scan(&c.CommentID, &c.PostID, &c.OwnerID, &c.Owner, &c.ProfileImage,
			&c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		c.IsOwner = viewer != 0 && viewer == c.OwnerID
		items = append(items, c)
	}

	sendData(w, http.StatusOK, map[string]any{
		"data":  items,
		"page":  page,
		"limit": limit,
	})
}

func CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	if err := authz.Check(authz.KindComment, principal, authz.ActionCreate, authz.Record{}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p commentPayload
	if !decodeBody(w, r, &p) {
		return
	}
	content := strings.TrimSpace(p.Content)
	if content == "" {
		sendErrorResponse(w, "Comment cannot be empty", http.StatusBadRequest)
		return
	}
	if len(content) > 4000 {
		sendErrorResponse(w, "Comment too long", http.StatusBadRequest)
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

	res, err := db.Exec(`INSERT INTO comments (owner_id, post_id, content) VALUES (?, ?, ?)`,
		principal, p.PostID, content)
	if err != nil {
		log.Error().Err(err).Msg("insert comment failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	id, _ := res.LastInsertId()

	Emit("comment.created", map[string]any{
		"comment_id": id,
		"post_id":    p.PostID,
		"owner_id":   principal,
	})

	sendData(w, http.StatusCreated, map[string]any{
		"message":    "Comment added",
		"comment_id": id,
	})
}

func GetCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid comment id", http.StatusBadRequest)
		return
	}
	viewer := currentUserID(r)

	var c commentDTO
	err := db.QueryRow(`
SELECT c.comment_id, c.post_id, c.owner_id, u.username, u.profile_image, c.content, c.created_at, c.updated_at
FROM comments c
JOIN users u ON u.user_id = c.owner_id
WHERE c.comment_id = ?`, commentID).Scan(
		&c.CommentID, &c.PostID, &c.OwnerID, &c.Owner, &c.ProfileImage, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	c.IsOwner = viewer != 0 && viewer == c.OwnerID
	sendData(w, http.StatusOK, map[string]any{"data": c})
}

func UpdateCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid comment id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	comment, err := loadComment(commentID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindComment, principal, authz.ActionUpdate, authz.Record{Owner: comment.OwnerID}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p commentPayload
	if !decodeBody(w, r, &p) {
		return
	}
	content := strings.TrimSpace(p.Content)
	if content == "" {
		sendErrorResponse(w, "Comment cannot be empty", http.StatusBadRequest)
		return
	}

	if _, err := db.Exec(`UPDATE comments SET content=?, updated_at=CURRENT_TIMESTAMP WHERE comment_id=?`,
		content, commentID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"message": "Comment updated", "comment_id": commentID})
}

func DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid comment id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	comment, err := loadComment(commentID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindComment, principal, authz.ActionDelete, authz.Record{Owner: comment.OwnerID}); err != nil {
		sendDomainError(w, err)
		return
	}

	if _, err := db.Exec(`DELETE FROM comments WHERE comment_id=?`, commentID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadComment(commentID int64) (models.Comment, error) {
	var c models.Comment
	err := db.QueryRow(`SELECT comment_id, owner_id, post_id, content, created_at, updated_at
		FROM comments WHERE comment_id=?`, commentID).Scan(
		&c.CommentID, &c.OwnerID, &c.PostID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
