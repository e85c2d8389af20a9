package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"retrospective/backend/authz"
	"retrospective/backend/guard"
	"retrospective/backend/models"
)

var db *sql.DB

func SetDB(database *sql.DB) {
	db = database
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func sendJSONResponse(w http.ResponseWriter, success bool, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.Response{Success: success, Message: message})
}

func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.Response{Success: false, Message: message})
}

func sendData(w http.ResponseWriter, statusCode int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body == nil {
		body = map[string]any{}
	}
	if _, ok := body["success"]; !ok {
		body["success"] = true
	}
	json.NewEncoder(w).Encode(body)
}

// sendDomainError maps authorization and guard failures onto the status
// contract: missing target 404, unauthenticated or unauthorized write 403,
// structurally invalid relationship 400.
func sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		sendErrorResponse(w, "Not found", http.StatusNotFound)
	case errors.Is(err, authz.ErrAuthRequired), errors.Is(err, authz.ErrForbidden):
		sendErrorResponse(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, authz.ErrEditReceivedMessage),
		errors.Is(err, guard.ErrSelfChat),
		errors.Is(err, guard.ErrChatExists),
		errors.Is(err, guard.ErrAlreadyLiked),
		errors.Is(err, guard.ErrAlreadyReported),
		errors.Is(err, guard.ErrSelfFollow),
		errors.Is(err, guard.ErrAlreadyFollowing):
		sendErrorResponse(w, capitalize(err.Error()), http.StatusBadRequest)
	default:
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// currentUserID resolves the acting principal; 0 means anonymous.
func currentUserID(r *http.Request) int64 {
	if sess, err := GetSession(r); err == nil {
		return sess.UserID
	}
	return 0
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendErrorResponse(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func toInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func toInt64(s string, def int64) int64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
