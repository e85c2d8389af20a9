package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
)

// Duplicate chats are rejected regardless of direction; self-chats always.
func TestChatUniquenessAndSelfReference(t *testing.T) {
	h := newTestServer(t)
	adam := registerUser(t, h, "adam")   // user 1
	brian := registerUser(t, h, "brian") // user 2

	rec := doJSON(t, h, http.MethodPost, "/chats", adam, map[string]any{"receiver_id": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first chat: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/chats", adam, map[string]any{"receiver_id": 2})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate chat same direction: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/chats", brian, map[string]any{"receiver_id": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate chat reversed: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/chats", adam, map[string]any{"receiver_id": 1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self chat: status %d, want 400", rec.Code)
	}
}

func TestChatAccessScoping(t *testing.T) {
	h := newTestServer(t)
	adam := registerUser(t, h, "adam")
	brian := registerUser(t, h, "brian")
	carl := registerUser(t, h, "carl")

	rec := doJSON(t, h, http.MethodPost, "/chats", adam, map[string]any{"receiver_id": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chat: status %d", rec.Code)
	}
	chatID := envelopeID(t, rec, "chat_id")
	path := fmt.Sprintf("/chats/%d", chatID)

	// both participants can retrieve it
	if rec := doJSON(t, h, http.MethodGet, path, adam, nil); rec.Code != http.StatusOK {
		t.Errorf("sender retrieve: status %d, want 200", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, path, brian, nil); rec.Code != http.StatusOK {
		t.Errorf("receiver retrieve: status %d, want 200", rec.Code)
	}

	// a third principal is rejected without leaking contents
	if rec := doJSON(t, h, http.MethodGet, path, carl, nil); rec.Code != http.StatusForbidden {
		t.Errorf("outsider retrieve: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, path, "", nil); rec.Code != http.StatusForbidden {
		t.Errorf("anonymous retrieve: status %d, want 403", rec.Code)
	}

	// missing chats are a 404, not a 403
	if rec := doJSON(t, h, http.MethodGet, "/chats/999", adam, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing chat: status %d, want 404", rec.Code)
	}

	// listing only shows the principal's own chats
	rec = doJSON(t, h, http.MethodGet, "/chats", carl, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("outsider list: status %d", rec.Code)
	}
	out := decodeEnvelope(t, rec)
	if data, ok := out["data"].([]any); !ok || len(data) != 0 {
		t.Errorf("outsider list = %v, want empty", out["data"])
	}
}

func TestChatEditIsSenderOnly(t *testing.T) {
	h := newTestServer(t)
	adam := registerUser(t, h, "adam")
	brian := registerUser(t, h, "brian")

	rec := doJSON(t, h, http.MethodPost, "/chats", adam, map[string]any{"receiver_id": 2, "note": "hello"})
	chatID := envelopeID(t, rec, "chat_id")
	path := fmt.Sprintf("/chats/%d", chatID)

	// receiver may read but not edit or delete
	if rec := doJSON(t, h, http.MethodPut, path, brian, map[string]any{"note": "hijack"}); rec.Code != http.StatusForbidden {
		t.Errorf("receiver edit: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, path, brian, nil); rec.Code != http.StatusForbidden {
		t.Errorf("receiver delete: status %d, want 403", rec.Code)
	}

	if rec := doJSON(t, h, http.MethodPut, path, adam, map[string]any{"note": "updated"}); rec.Code != http.StatusOK {
		t.Errorf("sender edit: status %d, want 200", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, path, adam, nil); rec.Code != http.StatusNoContent {
		t.Errorf("sender delete: status %d, want 204", rec.Code)
	}
}

func TestChatCreateRequiresAuthAndReceiver(t *testing.T) {
	h := newTestServer(t)
	adam := registerUser(t, h, "adam")

	if rec := doJSON(t, h, http.MethodPost, "/chats", "", map[string]any{"receiver_id": 1}); rec.Code != http.StatusForbidden {
		t.Errorf("anonymous create: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/chats", adam, map[string]any{"receiver_id": 42}); rec.Code != http.StatusNotFound {
		t.Errorf("missing receiver: status %d, want 404", rec.Code)
	}
}
