package handlers

import (
	"database/sql"
	"net/http"
	"time"
)

type profileDTO struct {
	UserID         int64     `json:"user_id"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	ProfileImage   *string   `json:"profile_image,omitempty"`
	IsOwner        bool      `json:"is_owner"`
	PostsCount     int       `json:"posts_count"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	FollowingID    *int64    `json:"following_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	viewer := currentUserID(r)

	var p profileDTO
	var followingID sql.NullInt64
	err := db.QueryRow(`
SELECT u.user_id, u.username, u.bio, u.profile_image, u.created_at,
(SELECT COUNT(*) FROM posts WHERE owner_id = u.user_id) AS posts_count,
(SELECT COUNT(*) FROM followers WHERE followed_id = u.user_id) AS followers_count,
(SELECT COUNT(*) FROM followers WHERE owner_id = u.user_id) AS following_count,
(SELECT follower_id FROM followers WHERE owner_id = ? AND followed_id = u.user_id) AS following_id
FROM users u
WHERE u.user_id = ?`, viewer, userID).Scan(
		&p.UserID, &p.Username, &p.Bio, &p.ProfileImage, &p.CreatedAt,
		&p.PostsCount, &p.FollowersCount, &p.FollowingCount, &followingID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if followingID.Valid {
		p.FollowingID = &followingID.Int64
	}
	p.IsOwner = viewer != 0 && viewer == p.UserID

	sendData(w, http.StatusOK, map[string]any{"data": p})
}
