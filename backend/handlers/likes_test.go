package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
)

// A principal may like a given post at most once; other principals still can.
func TestLikeUniqueness(t *testing.T) {
	h := newTestServer(t)
	tester := registerUser(t, h, "tester")
	tester2 := registerUser(t, h, "tester2")
	postID := createPost(t, h, tester, "a likeable post")

	rec := doJSON(t, h, http.MethodPost, "/likes", tester, map[string]any{"post_id": postID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first like: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/likes", tester, map[string]any{"post_id": postID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate like: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/likes", tester2, map[string]any{"post_id": postID})
	if rec.Code != http.StatusCreated {
		t.Errorf("second principal like: status %d, want 201", rec.Code)
	}

	// exactly two likes on the post
	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/likes?post=%d", postID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list likes: status %d", rec.Code)
	}
	out := decodeEnvelope(t, rec)
	data, _ := out["data"].([]any)
	if len(data) != 2 {
		t.Errorf("like count = %d, want 2", len(data))
	}
}

func TestLikeRequiresAuthAndTarget(t *testing.T) {
	h := newTestServer(t)
	tester := registerUser(t, h, "tester")

	if rec := doJSON(t, h, http.MethodPost, "/likes", "", map[string]any{"post_id": 1}); rec.Code != http.StatusForbidden {
		t.Errorf("anonymous like: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/likes", tester, map[string]any{"post_id": 99}); rec.Code != http.StatusNotFound {
		t.Errorf("like missing post: status %d, want 404", rec.Code)
	}
}

func TestLikeDeleteIsOwnerOnly(t *testing.T) {
	h := newTestServer(t)
	tester := registerUser(t, h, "tester")
	other := registerUser(t, h, "other")
	postID := createPost(t, h, tester, "a likeable post")

	rec := doJSON(t, h, http.MethodPost, "/likes", tester, map[string]any{"post_id": postID})
	likeID := envelopeID(t, rec, "like_id")
	path := fmt.Sprintf("/likes/%d", likeID)

	if rec := doJSON(t, h, http.MethodDelete, path, other, nil); rec.Code != http.StatusForbidden {
		t.Errorf("non-owner delete: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, path, tester, nil); rec.Code != http.StatusNoContent {
		t.Errorf("owner delete: status %d, want 204", rec.Code)
	}

	// the like is gone; liking again is allowed
	if rec := doJSON(t, h, http.MethodPost, "/likes", tester, map[string]any{"post_id": postID}); rec.Code != http.StatusCreated {
		t.Errorf("re-like after delete: status %d, want 201", rec.Code)
	}
}
