package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"retrospective/backend/handlers"
	"retrospective/backend/models"
	"retrospective/backend/router"
)

// newTestServer wires an in-memory database into the real router. No hub:
// the CRUD paths must work without one.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db := models.InitDB(":memory:")
	t.Cleanup(func() { db.Close() })
	handlers.SetDB(db)
	return router.New(nil)
}

// doJSON performs a request with an optional session cookie and JSON body.
func doJSON(t *testing.T, h http.Handler, method, path, cookie string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// registerUser creates an account and returns its session cookie.
func registerUser(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatalf("register %s: no session cookie", username)
	return ""
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func envelopeID(t *testing.T, rec *httptest.ResponseRecorder, key string) int64 {
	t.Helper()
	out := decodeEnvelope(t, rec)
	v, ok := out[key].(float64)
	if !ok {
		t.Fatalf("response missing %q: %s", key, rec.Body.String())
	}
	return int64(v)
}

// createPost makes a post for the given session and returns its id.
func createPost(t *testing.T, h http.Handler, cookie, title string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/posts", cookie, map[string]any{
		"title":       title,
		"description": "a description",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d, body %s", rec.Code, rec.Body.String())
	}
	return envelopeID(t, rec, "post_id")
}
