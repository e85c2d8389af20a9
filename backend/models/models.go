package models

import "time"

type User struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	PostID      int64     `json:"post_id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    *string   `json:"category,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Image       *string   `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Comment struct {
	CommentID int64     `json:"comment_id"`
	OwnerID   int64     `json:"owner_id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Like struct {
	LikeID    int64     `json:"like_id"`
	OwnerID   int64     `json:"owner_id"`
	PostID    int64     `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Follower struct {
	FollowerID int64     `json:"follower_id"`
	OwnerID    int64     `json:"owner_id"`
	FollowedID int64     `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Chat struct {
	ChatID     int64     `json:"chat_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

type Message struct {
	MessageID int64     `json:"message_id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Report struct {
	ReportID  int64     `json:"report_id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Reason    string    `json:"reason"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type Feedback struct {
	FeedbackID int64     `json:"feedback_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PostCategories is the fixed category set a post may carry. A post may also
// carry no category at all.
var PostCategories = []string{
	"family-and-friends",
	"everyday-life-&-candid-moments",
	"nature-and-landscapes",
	"cityscapes-and-architecture",
	"food-and-drinks",
	"people-and-portraits",
	"fashion-and-style",
	"travel-and-adventure",
	"art-and-creativity",
	"fitness-and-health",
	"technology-and-gadgets",
	"pets-and-animals",
	"events-and-celebrations",
	"abstract-and-conceptual",
	"seasonal-and-holiday",
	"vintage-and-retro",
	"self-portraits",
	"street-photography",
	"relationships",
	"other",
}

// ReportCategories is the fixed category set for abuse reports. Unlike post
// categories, a report must carry one.
var ReportCategories = []string{
	"spam",
	"inappropriate_content",
	"harassment",
	"hate_speech",
	"misinformation",
	"copyright_violation",
	"impersonation",
	"self_harm",
	"other",
}

func IsPostCategory(c string) bool {
	for _, v := range PostCategories {
		if v == c {
			return true
		}
	}
	return false
}

func IsReportCategory(c string) bool {
	for _, v := range ReportCategories {
		if v == c {
			return true
		}
	}
	return false
}
