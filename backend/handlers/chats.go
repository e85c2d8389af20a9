package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"retrospective/backend/authz"
	"retrospective/backend/guard"
	"retrospective/backend/models"
)

type chatDTO struct {
	ChatID         int64     `json:"chat_id"`
	SenderID       int64     `json:"sender_id"`
	Sender         string    `json:"sender"`
	SenderImage    *string   `json:"sender_image,omitempty"`
	ReceiverID     int64     `json:"receiver_id"`
	Receiver       string    `json:"receiver"`
	ReceiverImage  *string   `json:"receiver_image,omitempty"`
	Note           string    `json:"note"`
	LastMessage    *string   `json:"last_message"`
	UnreadMessages int       `json:"unread_message_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type createChatPayload struct {
	ReceiverID int64  `json:"receiver_id"`
	Note       string `json:"note"`
}

type updateChatPayload struct {
	Note string `json:"note"`
}

const chatSelect = `
SELECT c.chat_id, c.sender_id, us.username, us.profile_image,
c.receiver_id, ur.username, ur.profile_image, c.note, c.created_at,
(SELECT m.content FROM messages m WHERE m.chat_id = c.chat_id ORDER BY m.created_at DESC, m.message_id DESC LIMIT 1) AS last_message,
(SELECT COUNT(*) FROM messages m WHERE m.chat_id = c.chat_id AND m.seen = FALSE AND m.sender_id <> ?) AS unread_count
FROM chats c
JOIN users us ON us.user_id = c.sender_id
JOIN users ur ON ur.user_id = c.receiver_id
`

func scanChatDTO(row interface{ Scan(...any) error }) (chatDTO, error) {
	var c chatDTO
	var last sql.NullString
	err := row.Scan(&c.ChatID, &c.SenderID, &c.Sender, &c.SenderImage,
		&c.ReceiverID, &c.Receiver, &c.ReceiverImage, &c.Note, &c.CreatedAt,
		&last, &c.UnreadMessages)
	if err != nil {
		return c, err
	}
	if last.Valid {
		c.LastMessage = &last.String
	}
	return c, nil
}

// ListChatsHandler returns only the chats the principal participates in.
// The participant filter runs before anything else so outsiders never learn
// which chats exist.
func ListChatsHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	if principal == 0 {
		sendDomainError(w, authz.ErrAuthRequired)
		return
	}

	rows, err := db.Query(chatSelect+`
WHERE c.sender_id = ? OR c.receiver_id = ?
ORDER BY c.created_at DESC, c.chat_id DESC`, principal, principal, principal)
	if err != nil {
		log.Error().Err(err).Msg("list chats query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	items := []chatDTO{}
	for rows.Next() {
		c, err := scanChatDTO(rows)
		if err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		items = append(items, c)
	}

	sendData(w, http.StatusOK, map[string]any{"data": items})
}

func CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)

	var p createChatPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if err := authz.Check(authz.KindChat, principal, authz.ActionCreate,
		authz.Record{Sender: principal, Receiver: p.ReceiverID}); err != nil {
		sendDomainError(w, err)
		return
	}
	if p.ReceiverID <= 0 {
		sendErrorResponse(w, "Missing receiver id", http.StatusBadRequest)
		return
	}
	if err := userExists(p.ReceiverID); err != nil {
		sendDomainError(w, err)
		return
	}
	if err := guard.CheckChat(db, principal, p.ReceiverID); err != nil {
		sendDomainError(w, err)
		return
	}

	lo, hi := guard.NormalizePair(principal, p.ReceiverID)
	res, err := db.Exec(`INSERT INTO chats (sender_id, receiver_id, note, pair_lo, pair_hi) VALUES (?, ?, ?, ?, ?)`,
		principal, p.ReceiverID, strings.TrimSpace(p.Note), lo, hi)
	if err != nil {
		if guard.IsUniqueViolation(err) {
			sendDomainError(w, guard.ErrChatExists)
			return
		}
		log.Error().Err(err).Msg("insert chat failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	id, _ := res.LastInsertId()

	EmitToUser(p.ReceiverID, "chat.created", map[string]any{"chat_id": id, "sender_id": principal})

	sendData(w, http.StatusCreated, map[string]any{
		"message": "Chat created",
		"chat_id": id,
	})
}

func GetChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid chat id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	chat, err := loadChat(chatID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindChat, principal, authz.ActionRead,
		authz.Record{Sender: chat.SenderID, Receiver: chat.ReceiverID}); err != nil {
		sendDomainError(w, err)
		return
	}

	c, err := scanChatDTO(db.QueryRow(chatSelect+`WHERE c.chat_id = ?`, principal, chatID))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"data": c})
}

// UpdateChatHandler edits the chat-level note. Both participants read the
// chat, but only its original sender may edit it.
func UpdateChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid chat id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	chat, err := loadChat(chatID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindChat, principal, authz.ActionUpdate,
		authz.Record{Sender: chat.SenderID, Receiver: chat.ReceiverID}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p updateChatPayload
	if !decodeBody(w, r, &p) {
		return
	}
	if _, err := db.Exec(`UPDATE chats SET note=? WHERE chat_id=?`, strings.TrimSpace(p.Note), chatID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	sendData(w, http.StatusOK, map[string]any{"message": "Chat updated", "chat_id": chatID})
}

func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID, ok := urlID(r, "id")
	if !ok {
		sendErrorResponse(w, "Invalid chat id", http.StatusBadRequest)
		return
	}
	principal := currentUserID(r)

	chat, err := loadChat(chatID)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if err := authz.Check(authz.KindChat, principal, authz.ActionDelete,
		authz.Record{Sender: chat.SenderID, Receiver: chat.ReceiverID}); err != nil {
		sendDomainError(w, err)
		return
	}

	if _, err := db.Exec(`DELETE FROM chats WHERE chat_id=?`, chatID); err != nil {
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func loadChat(chatID int64) (models.Chat, error) {
	var c models.Chat
	err := db.QueryRow(`SELECT chat_id, sender_id, receiver_id, note, created_at FROM chats WHERE chat_id=?`, chatID).
		Scan(&c.ChatID, &c.SenderID, &c.ReceiverID, &c.Note, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, sql.ErrNoRows
	}
	return c, err
}
