package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"retrospective/backend/models"
)

const (
	sessionCookieName = "session_token"
	sessionDuration   = 24 * time.Hour
	cleanupInterval   = 1 * time.Hour
)

var (
	errSessionNotFound = errors.New("session not found")
	errSessionExpired  = errors.New("session expired")
	errSessionInvalid  = errors.New("invalid session")
)

func init() {
	go cleanupExpiredSessions()
}

func cleanupExpiredSessions() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		if db == nil {
			continue
		}
		db.Exec(`DELETE FROM sessions WHERE expires_at <= datetime('now')`)
	}
}

// CreateSession issues a fresh token for the user, replacing any session the
// user already holds, and sets the cookie.
func CreateSession(userID int64, username string, w http.ResponseWriter) error {
	if userID <= 0 || username == "" {
		return errors.New("invalid user data for session creation")
	}

	db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)

	token := uuid.New().String()
	expiresAt := time.Now().Add(sessionDuration)

	if _, err := db.Exec(`INSERT INTO sessions (session_id, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  expiresAt,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func GetSession(r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, errSessionNotFound
		}
		return nil, fmt.Errorf("cookie error: %w", err)
	}
	if cookie.Value == "" {
		return nil, errSessionInvalid
	}

	var session models.Session
	err = db.QueryRow(`
		SELECT s.session_id, s.user_id, u.username, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.user_id
		WHERE s.session_id = ?`, cookie.Value).Scan(
		&session.SessionID, &session.UserID, &session.Username, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errSessionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		db.Exec(`DELETE FROM sessions WHERE session_id = ?`, session.SessionID)
		return nil, errSessionExpired
	}
	return &session, nil
}

func DeleteSession(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil
		}
		return fmt.Errorf("cookie error: %w", err)
	}

	db.Exec(`DELETE FROM sessions WHERE session_id = ?`, cookie.Value)

	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookieName,
		Value:   "",
		Expires: time.Now().Add(-1 * time.Hour),
		Path:    "/",
	})
	return nil
}
