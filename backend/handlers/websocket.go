package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"retrospective/backend/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func HandleWebSocket(hub *ws.Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	var userID int64
	var username string
	if session, serr := GetSession(r); serr == nil && session != nil {
		userID = session.UserID
		username = session.Username
	}

	client := &ws.Client{
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		UserID:   userID,
		Username: username,
	}

	hub.Register <- client

	go client.WritePump()
	client.ReadPump()
}
