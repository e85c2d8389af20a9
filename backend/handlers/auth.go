package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"retrospective/backend/guard"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Bio      string `json:"bio" validate:"max=500"`
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var p registerPayload
	if !decodeBody(w, r, &p) {
		return
	}
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)

	if err := payloadValidator().Struct(&p); err != nil {
		sendErrorResponse(w, "Invalid registration data: "+err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		sendErrorResponse(w, "Error processing password", http.StatusInternalServerError)
		return
	}

	res, err := db.Exec(`INSERT INTO users (username, email, password_hash, bio) VALUES (?, ?, ?, ?)`,
		p.Username, p.Email, string(hash), p.Bio)
	if err != nil {
		if guard.IsUniqueViolation(err) {
			sendErrorResponse(w, "Username or email already taken", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("register insert failed")
		sendErrorResponse(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	userID, _ := res.LastInsertId()
	if err := CreateSession(userID, p.Username, w); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("session creation failed")
		sendErrorResponse(w, "Registered but failed to start session", http.StatusInternalServerError)
		return
	}

	sendData(w, http.StatusCreated, map[string]any{
		"message":  "Registration successful",
		"user_id":  userID,
		"username": p.Username,
	})
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var p loginPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if p.Username == "" || p.Password == "" {
		sendErrorResponse(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	var userID int64
	var passwordHash string
	err := db.QueryRow(`SELECT user_id, password_hash FROM users WHERE username = ?`, p.Username).
		Scan(&userID, &passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendErrorResponse(w, "Invalid username or password", http.StatusBadRequest)
			return
		}
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p.Password)) != nil {
		sendErrorResponse(w, "Invalid username or password", http.StatusBadRequest)
		return
	}

	if err := CreateSession(userID, p.Username, w); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("session creation failed")
		sendErrorResponse(w, "Failed to start session", http.StatusInternalServerError)
		return
	}

	sendData(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"user_id":  userID,
		"username": p.Username,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := DeleteSession(w, r); err != nil {
		sendErrorResponse(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	sendJSONResponse(w, true, "Logged out")
}

// SessionHandler reports who the cookie belongs to, if anyone.
func SessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := GetSession(r)
	if err != nil {
		sendData(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	sendData(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user_id":       sess.UserID,
		"username":      sess.Username,
	})
}
