package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"retrospective/backend/authz"
	"retrospective/backend/models"
)

type postDTO struct {
	PostID        int64     `json:"post_id"`
	OwnerID       int64     `json:"owner_id"`
	Owner         string    `json:"owner"`
	IsOwner       bool      `json:"is_owner"`
	ProfileImage  *string   `json:"profile_image,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      *string   `json:"category,omitempty"`
	Location      *string   `json:"location,omitempty"`
	Image         *string   `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	LikeID        *int64    `json:"like_id"`
}

type postPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Image       *string `json:"image"`
}

const postSelect = `
SELECT p.post_id, p.owner_id, u.username, u.profile_image, p.title, p.description,
p.category, p.location, p.image, p.created_at, p.updated_at,
(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.post_id) AS likes_count,
(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.post_id) AS comments_count,
(SELECT l.like_id FROM likes l WHERE l.post_id = p.post_id AND l.owner_id = ?) AS like_id
FROM posts p
JOIN users u ON u.user_id = p.owner_id
`

func scanPostDTO(row interface{ Scan(...any) error }, viewer int64) (postDTO, error) {
	var p postDTO
	var likeID sql.NullInt64
	err := row.Scan(&p.PostID, &p.OwnerID, &p.Owner, &p.ProfileImage, &p.Title, &p.Description,
		&p.Category, &p.Location, &p.Image, &p.CreatedAt, &p.UpdatedAt,
		&p.LikesCount, &p.CommentsCount, &likeID)
	if err != nil {
		return p, err
	}
	if likeID.Valid {
		p.LikeID = &likeID.Int64
	}
	p.IsOwner = viewer != 0 && viewer == p.OwnerID
	return p, nil
}

func ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := clamp(toInt(q.Get("page"), 1), 1, 1000000)
	limit := clamp(toInt(q.Get("limit"), 10), 1, 50)
	offset := (page - 1) * limit

	viewer := currentUserID(r)
	args := []any{viewer}

	var where []string
	if search := strings.TrimSpace(q.Get("search")); search != "" {
		where = append(where, `(p.title LIKE ? OR p.description LIKE ?)`)
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	if cat := q.Get("category"); cat != "" {
		where = append(where, `p.category = ?`)
		args = append(args, cat)
	}
	if owner := toInt64(q.Get("owner"), 0); owner > 0 {
		where = append(where, `p.owner_id = ?`)
		args = append(args, owner)
	}

	query := postSelect
	if len(where) > 0 {
		query += "WHERE " + strings.Join(where, " AND ")
	}
	query += `
ORDER BY p.created_at DESC, p.post_id DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("list posts query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	posts := []postDTO{}
	for rows.Next() {
		p, err := scanPostDTO(rows, viewer)
		if err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		posts = append(posts, p)
	}

	sendData(w, http.StatusOK, map[string]any{
		"data":  posts,
		"page":  page,
		"limit": limit,
	})
}

func CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	if err := authz.Check(authz.KindPost, principal, authz.ActionCreate, authz.Record{}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p postPayload
	if !decodeBody(w, r, &p) {
		return
	}
	title := strings.TrimSpace(p.Title)
	if len(title) < 3 {
		sendErrorResponse(w, "Title must be at least 3 characters", http.StatusBadRequest)
		return
	}
	if len(title) > 150 {
		sendErrorResponse(w, "Title too long", http.StatusBadRequest)
		return
	}
	if p.Category != nil && !models.IsPostCategory(*p.Category) {
		sendErrorResponse(w, "Invalid category", http.StatusBadRequest)
		return
	}

	res, err := db.Exec(`INSERT INTO posts (owner_id, title, description, category, location, image)
		VALUES (?, ?, ?, ?, ?, ?)`,
		principal, title, p.Description, p.Category, p.Location, p.Image)
	if err != nil {
		log.Error().Err(err).Msg("insert post failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	postID, _ := res.LastInsertId()

	Emit("post.created", map[string]any{"post_id": postID, "owner_id": principal})

	sendData(w, http.StatusCreated, map[string]any{
		"message": "Post created",
		"post_id": postID,
	})
}

func GetPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid post id", http.StatusBadRequest)
		return
	}
	viewer := currentUserID(r)

	p, err := scanPostDTO(db.QueryRow(postSelect+`WHERE p.post_id = ?`, viewer, postID), viewer)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"data": p})
}

func UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid post id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	post, err := loadPost(postID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindPost, principal, authz.ActionUpdate, authz.Record{Owner: post.OwnerID}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p postPayload
	if !decodeBody(w, r, &p) {
		return
	}
	title := strings.TrimSpace(p.Title)
	if len(title) < 3 || len(title) > 150 {
		sendErrorResponse(w, "Title must be between 3 and 150 characters", http.StatusBadRequest)
		return
	}
	if p.Category != nil && !models.IsPostCategory(*p.Category) {
		sendErrorResponse(w, "Invalid category", http.StatusBadRequest)
		return
	}

	if _, err := db.Exec(`UPDATE posts SET title=?, description=?, category=?, location=?, image=?, updated_at=CURRENT_TIMESTAMP
		WHERE post_id=?`,
		title, p.Description, p.Category, p.Location, p.Image, postID); err != nil {
		log.Error().Err(err).Int64("post_id", postID).Msg("update post failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendData(w, http.StatusOK, map[string]any{"message": "Post updated", "post_id": postID})
}

func DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid post id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	post, err := loadPost(postID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindPost, principal, authz.ActionDelete, authz.Record{Owner: post.OwnerID}); err != nil {
		sendDomainError(w, err)
		return
	}

	if _, err := db.Exec(`DELETE FROM posts WHERE post_id=?`, postID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadPost(postID int64) (models.Post, error) {
	var p models.Post
	err := db.QueryRow(`SELECT post_id, owner_id, title, description, category, location, image, created_at, updated_at
		FROM posts WHERE post_id=?`, postID).Scan(
		&p.PostID, &p.OwnerID, &p.Title, &p.Description, &p.Category, &p.Location, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// postExists distinguishes a missing target (404) from everything else.
func postExists(postID int64) error {
	var one int
	err := db.QueryRow(`SELECT 1 FROM posts WHERE post_id=?`, postID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return err
}
