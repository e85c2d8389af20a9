// Package guard blocks structurally invalid relationships before they are
// persisted: duplicate chats, likes, reports and follows, and self-targeting
// chats and follows. Guard checks run after authorization and before the
// insert. They are advisory under concurrency; the UNIQUE constraints in the
// schema are the authoritative backstop, and IsUniqueViolation translates a
// lost race into the same user-facing rejection.
package guard

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrSelfChat         = errors.New("you cannot start a chat with yourself")
	ErrChatExists       = errors.New("chat with this user already exists")
	ErrAlreadyLiked     = errors.New("you have already liked this post")
	ErrAlreadyReported  = errors.New("you have already reported this post")
	ErrSelfFollow       = errors.New("you cannot follow yourself")
	ErrAlreadyFollowing = errors.New("you are already following this user")
)

// NormalizePair returns the unordered {a, b} pair as (lo, hi). Chats store
// this normalized form so symmetric uniqueness is one constraint instead of
// an ordering-dependent pair of checks.
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func CheckChat(db *sql.DB, sender, receiver int64) error {
	if sender == receiver {
		return ErrSelfChat
	}
	lo, hi := NormalizePair(sender, receiver)
	var one int
	err := db.QueryRow(`SELECT 1 FROM chats WHERE pair_lo=? AND pair_hi=?`, lo, hi).Scan(&one)
	switch {
	case err == nil:
		return ErrChatExists
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return err
	}
}

func CheckLike(db *sql.DB, owner, post int64) error {
	var one int
	err := db.QueryRow(`SELECT 1 FROM likes WHERE owner_id=? AND post_id=?`, owner, post).Scan(&one)
	switch {
	case err == nil:
		return ErrAlreadyLiked
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return err
	}
}

func CheckReport(db *sql.DB, user, post int64) error {
	var one int
	err := db.QueryRow(`SELECT 1 FROM reports WHERE user_id=? AND post_id=?`, user, post).Scan(&one)
	switch {
	case err == nil:
		return ErrAlreadyReported
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return err
	}
}

func CheckFollow(db *sql.DB, owner, followed int64) error {
	if owner == followed {
		return ErrSelfFollow
	}
	var one int
	err := db.QueryRow(`SELECT 1 FROM followers WHERE owner_id=? AND followed_id=?`, owner, followed).Scan(&one)
	switch {
	case err == nil:
		return ErrAlreadyFollowing
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure, i.e. a concurrent create won the race after our pre-check passed.
func IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
