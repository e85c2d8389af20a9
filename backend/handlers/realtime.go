package handlers

import (
	json "github.com/goccy/go-json"

	"retrospective/backend/ws"
)

var realtimeHub *ws.Hub

// SetHub wires the realtime hub; call once at startup.
func SetHub(h *ws.Hub) { realtimeHub = h }

// Emit broadcasts a server-side event to all connected clients, JSON shape
// {"type": "...", "data": {...}}.
func Emit(eventType string, data any) {
	if realtimeHub == nil {
		return
	}
	msg, err := json.Marshal(map[string]any{"type": eventType, "data": data})
	if err != nil {
		return
	}
	realtimeHub.Broadcast <- msg
}

// EmitToUser delivers an event only to one user's connections. Chat events
// go through here so nothing leaks to non-participants.
func EmitToUser(userID int64, eventType string, data any) {
	if realtimeHub == nil {
		return
	}
	msg, err := json.Marshal(map[string]any{"type": eventType, "data": data})
	if err != nil {
		return
	}
	realtimeHub.SendToUser(userID, msg)
}
