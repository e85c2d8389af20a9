package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
)

func setupChatWithMessage(t *testing.T) (http.Handler, string, string, string, int64, int64) {
	t.Helper()
	h := newTestServer(t)
	adam := registerUser(t, h, "adam")
	brian := registerUser(t, h, "brian")
	carl := registerUser(t, h, "carl")

	rec := doJSON(t, h, http.MethodPost, "/chats", adam, map[string]any{"receiver_id": 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chat: status %d", rec.Code)
	}
	chatID := envelopeID(t, rec, "chat_id")

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/chats/%d/messages", chatID), adam,
		map[string]any{"content": "hello brian"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create message: status %d, body %s", rec.Code, rec.Body.String())
	}
	msgID := envelopeID(t, rec, "message_id")

	return h, adam, brian, carl, chatID, msgID
}

func getMessageSeen(t *testing.T, h http.Handler, cookie string, chatID, msgID int64) bool {
	t.Helper()
	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/chats/%d/messages/%d", chatID, msgID), cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get message: status %d", rec.Code)
	}
	out := decodeEnvelope(t, rec)
	data, ok := out["data"].(map[string]any)
	if !ok {
		t.Fatalf("message payload missing: %s", rec.Body.String())
	}
	seen, _ := data["seen"].(bool)
	return seen
}

// seen moves unseen -> seen on a receiver update, idempotently, and resets
// when the sender edits the content.
func TestMessageSeenStateMachine(t *testing.T) {
	h, adam, brian, _, chatID, msgID := setupChatWithMessage(t)
	path := fmt.Sprintf("/chats/%d/messages/%d", chatID, msgID)

	if getMessageSeen(t, h, brian, chatID, msgID) {
		t.Fatal("new message should start unseen")
	}

	// retrieval alone never transitions
	if getMessageSeen(t, h, brian, chatID, msgID) {
		t.Error("retrieve must not mark the message seen")
	}

	// neither an empty update nor seen=false transitions anything
	if rec := doJSON(t, h, http.MethodPut, path, brian, map[string]any{}); rec.Code != http.StatusOK {
		t.Fatalf("empty receiver update: status %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPut, path, brian, map[string]any{"seen": false}); rec.Code != http.StatusOK {
		t.Fatalf("seen=false receiver update: status %d", rec.Code)
	}
	if getMessageSeen(t, h, brian, chatID, msgID) {
		t.Error("only an explicit seen=true may mark the message seen")
	}

	// receiver update flips it
	if rec := doJSON(t, h, http.MethodPut, path, brian, map[string]any{"seen": true}); rec.Code != http.StatusOK {
		t.Fatalf("receiver update: status %d, body %s", rec.Code, rec.Body.String())
	}
	if !getMessageSeen(t, h, brian, chatID, msgID) {
		t.Error("receiver update should mark the message seen")
	}

	// re-applying is a no-op, not an error
	if rec := doJSON(t, h, http.MethodPut, path, brian, map[string]any{"seen": true}); rec.Code != http.StatusOK {
		t.Errorf("repeat receiver update: status %d, want 200", rec.Code)
	}

	// a sender edit makes the message unread again
	if rec := doJSON(t, h, http.MethodPut, path, adam, map[string]any{"content": "hello again"}); rec.Code != http.StatusOK {
		t.Fatalf("sender edit: status %d, body %s", rec.Code, rec.Body.String())
	}
	if getMessageSeen(t, h, adam, chatID, msgID) {
		t.Error("sender edit should reset seen to false")
	}
}

// Only the sender can change the text; the receiver is rejected with 400.
func TestMessageEditIsAsymmetric(t *testing.T) {
	h, adam, brian, _, chatID, msgID := setupChatWithMessage(t)
	path := fmt.Sprintf("/chats/%d/messages/%d", chatID, msgID)

	rec := doJSON(t, h, http.MethodPut, path, brian, map[string]any{"content": "tampered"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("receiver content edit: status %d, want 400", rec.Code)
	}

	// the original text survives
	rec = doJSON(t, h, http.MethodGet, path, adam, nil)
	out := decodeEnvelope(t, rec)
	data := out["data"].(map[string]any)
	if data["content"] != "hello brian" {
		t.Errorf("content = %q, want original", data["content"])
	}

	// sender editing to empty is invalid
	if rec := doJSON(t, h, http.MethodPut, path, adam, map[string]any{"content": "   "}); rec.Code != http.StatusBadRequest {
		t.Errorf("sender empty edit: status %d, want 400", rec.Code)
	}
}

func TestMessageAccessScoping(t *testing.T) {
	h, _, _, carl, chatID, msgID := setupChatWithMessage(t)

	// an outsider gets an explicit 403, not an empty list
	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/chats/%d/messages", chatID), carl, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider message list: status %d, want 403", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/chats/%d/messages/%d", chatID, msgID), carl, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider message retrieve: status %d, want 403", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/chats/%d/messages", chatID), carl,
		map[string]any{"content": "butting in"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider message create: status %d, want 403", rec.Code)
	}

}

func TestMissingMessageReturns404(t *testing.T) {
	h, adam, _, _, chatID, _ := setupChatWithMessage(t)

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/chats/%d/messages/999", chatID), adam, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing message: status %d, want 404", rec.Code)
	}
}

func TestMessageDeleteIsSenderOnly(t *testing.T) {
	h, adam, brian, _, chatID, msgID := setupChatWithMessage(t)
	path := fmt.Sprintf("/chats/%d/messages/%d", chatID, msgID)

	if rec := doJSON(t, h, http.MethodDelete, path, brian, nil); rec.Code != http.StatusForbidden {
		t.Errorf("receiver delete: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, path, adam, nil); rec.Code != http.StatusNoContent {
		t.Errorf("sender delete: status %d, want 204", rec.Code)
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	h, adam, _, _, chatID, _ := setupChatWithMessage(t)

	rec := doJSON(t, h, http.MethodPost, fmt.Sprintf("/chats/%d/messages", chatID), adam,
		map[string]any{"content": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty message: status %d, want 400", rec.Code)
	}
}
