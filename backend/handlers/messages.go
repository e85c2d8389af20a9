package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"retrospective/backend/authz"
	"retrospective/backend/models"
)

type messageDTO struct {
	MessageID int64     `json:"message_id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messagePayload struct {
	Content *string `json:"content"`
	Seen    *bool   `json:"seen"`
}

// resolveChatAccess loads the chat and verifies the principal may read it.
// Every nested message route goes through this first, so an outsider gets an
// explicit 403 (or 404 for a missing chat) and never an empty list.
func resolveChatAccess(w http.ResponseWriter, r *http.Request, principal int64) (models.Chat, bool) {
	chatID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid chat id", http.StatusBadRequest)
		return models.Chat{}, false
	}
	chat, err := loadChat(chatID)
	if err != nil {
		sendDomainError(w, err)
		return models.Chat{}, false
	}
	if err := authz.Check(authz.KindChat, principal, authz.ActionRead,
		authz.Record{Sender: chat.SenderID, Receiver: chat.ReceiverID}); err != nil {
		sendDomainError(w, err)
		return models.Chat{}, false
	}
	return chat, true
}

func ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	chat, ok := resolveChatAccess(w, r, principal)
	if !ok {
		return
	}

	rows, err := db.Query(`
SELECT m.message_id, m.chat_id, m.sender_id, u.username, m.content, m.seen, m.created_at, m.updated_at
FROM messages m
JOIN users u ON u.user_id = m.sender_id
WHERE m.chat_id = ?
ORDER BY m.created_at ASC, m.message_id ASC`, chat.ChatID)
	if err != nil {
		log.Error().Err(err).Msg("list messages query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	items := []messageDTO{}
	for rows.Next() {
		var m messageDTO
		if err := rows.Scan(&m.MessageID, &m.ChatID, &m.SenderID, &m.Sender, &m.Content,
			&m.Seen, &m.CreatedAt, &m.UpdatedAt); err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		items = append(items, m)
	}

	sendData(w, http.StatusOK, map[string]any{"data": items})
}

func CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	chat, ok := resolveChatAccess(w, r, principal)
	if !ok {
		return
	}

	var p messagePayload
	if !decodeBody(w, r, &p) {
		return
	}
	if p.Content == nil || strings.TrimSpace(*p.Content) == "" {
		sendErrorResponse(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(*p.Content)

	res, err := db.Exec(`INSERT INTO messages (chat_id, sender_id, content) VALUES (?, ?, ?)`,
		chat.ChatID, principal, content)
	if err != nil {
		log.Error().Err(err).Msg("insert message failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	id, _ := res.LastInsertId()

	other := chat.SenderID
	if principal == chat.SenderID {
		other = chat.ReceiverID
	}
	EmitToUser(other, "message.created", map[string]any{
		"message_id": id,
		"chat_id":    chat.ChatID,
		"sender_id":  principal,
		"content":    content,
	})

	sendData(w, http.StatusCreated, map[string]any{
		"message":    "Message sent",
		"message_id": id,
	})
}

func GetMessageHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	chat, ok := resolveChatAccess(w, r, principal)
	if !ok {
		return
	}
	messageID, ok := urlID(r, "messageID")
	if !ok {
		sendErrorResponse(w, "Invalid message id", http.StatusBadRequest)
		return
	}

	var m messageDTO
	err := db.QueryRow(`
SELECT m.message_id, m.chat_id, m.sender_id, u.username, m.content, m.seen, m.created_at, m.updated_at
FROM messages m
JOIN users u ON u.user_id = m.sender_id
WHERE m.message_id = ? AND m.chat_id = ?`, messageID, chat.ChatID).Scan(
		&m.MessageID, &m.ChatID, &m.SenderID, &m.Sender, &m.Content, &m.Seen, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"data": m})
}

// UpdateMessageHandler applies the asymmetric edit rule. The sender may edit
// content, which marks the message unseen again; the receiver's update marks
// it seen (idempotent) and must not alter the content.
func UpdateMessageHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	chat, ok := resolveChatAccess(w, r, principal)
	if !ok {
		return
	}
	messageID, ok := urlID(r, "messageID")
	if !ok {
		sendErrorResponse(w, "Invalid message id", http.StatusBadRequest)
		return
	}

	msg, err := loadMessage(chat.ChatID, messageID)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	var p messagePayload
	if !decodeBody(w, r, &p) {
		return
	}

	contentChanged := p.Content != nil && strings.TrimSpace(*p.Content) != msg.Content
	if err := authz.CheckMessageUpdate(principal, msg.SenderID, contentChanged); err != nil {
		sendDomainError(w, err)
		return
	}

	if principal == msg.SenderID {
		if contentChanged {
			content := strings.TrimSpace(*p.Content)
			if content == "" {
				sendErrorResponse(w, "Message cannot be empty", http.StatusBadRequest)
				return
			}
			// edited content is news to the receiver again
			if _, err := db.Exec(`UPDATE messages SET content=?, seen=FALSE, updated_at=CURRENT_TIMESTAMP
				WHERE message_id=?`, content, messageID); err != nil {
				sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}
	} else {
		// the receiver's only transition is unseen -> seen; re-applying or
		// asking for seen=false changes nothing
		if p.Seen != nil && *p.Seen && !msg.Seen {
			if _, err := db.Exec(`UPDATE messages SET seen=TRUE WHERE message_id=?`, messageID); err != nil {
				sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}
	}

	m, err := loadMessage(chat.ChatID, messageID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"data": m})
}

func DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	chat, ok := resolveChatAccess(w, r, principal)
	if !ok {
		return
	}
	messageID, ok := urlID(r, "messageID")
	if !ok {
		sendErrorResponse(w, "Invalid message id", http.StatusBadRequest)
		return
	}

	msg, err := loadMessage(chat.ChatID, messageID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	// only the author removes a message
	if msg.SenderID != principal {
		sendDomainError(w, authz.ErrForbidden)
		return
	}

	if _, err := db.Exec(`DELETE FROM messages WHERE message_id=?`, messageID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadMessage(chatID, messageID int64) (models.Message, error) {
	var m models.Message
	err := db.QueryRow(`SELECT message_id, chat_id, sender_id, content, seen, created_at, updated_at
		FROM messages WHERE message_id=? AND chat_id=?`, messageID, chatID).Scan(
		&m.MessageID, &m.ChatID, &m.SenderID, &m.Content, &m.Seen, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return m, sql.ErrNoRows
	}
	return m, err
}
