package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"retrospective/backend/authz"
	"retrospective/backend/guard"
	"retrospective/backend/models"
)

type reportDTO struct {
	ReportID  int64     `json:"report_id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Reason    string    `json:"reason"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type reportPayload struct {
	PostID   int64  `json:"post_id" validate:"required,gt=0"`
	Reason   string `json:"reason" validate:"required"`
	Category string `json:"category" validate:"required"`
}

func ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := clamp(toInt(q.Get("page"), 1), 1, 1000000)
	limit := clamp(toInt(q.Get("limit"), 20), 1, 100)
	offset := (page - 1) * limit

	query := `
SELECT rp.report_id, rp.post_id, rp.user_id, u.username, rp.reason, rp.category, rp.created_at
FROM reports rp
JOIN users u ON u.user_id = rp.user_id`
	var where []string
	var args []any
	if cat := q.Get("category"); cat != "" {
		where = append(where, `rp.category = ?`)
		args = append(args, cat)
	}
	if user := toInt64(q.Get("user"), 0); user > 0 {
		where = append(where, `rp.user_id = ?`)
		args = append(args, user)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += `
ORDER BY rp.created_at DESC, rp.report_id DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("list reports query failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	items := []reportDTO{}
	for rows.Next() {
		var rep reportDTO
		if err := rows.Scan(&rep.ReportID, &rep.PostID, &rep.UserID, &rep.Username,
			&rep.Reason, &rep.Category, &rep.CreatedAt); err != nil {
			sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		items = append(items, rep)
	}

	sendData(w, http.StatusOK, map[string]any{"data": items, "page": page, "limit": limit})
}

func CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	principal := currentUserID(r)
	if err := authz.Check(authz.KindReport, principal, authz.ActionCreate, authz.Record{}); err != nil {
		sendDomainError(w, err)
		return
	}

	var p reportPayload
	if !decodeBody(w, r, &p) {
		return
	}
	p.Reason = strings.TrimSpace(p.Reason)
	if err := payloadValidator().Struct(&p); err != nil {
		sendErrorResponse(w, "Missing required report fields", http.StatusBadRequest)
		return
	}
	if !models.IsReportCategory(p.Category) {
		sendErrorResponse(w, "Invalid report category", http.StatusBadRequest)
		return
	}
	if err := postExists(p.PostID); err != nil {
		sendDomainError(w, err)
		return
	}
	if err := guard.CheckReport(db, principal, p.PostID); err != nil {
		sendDomainError(w, err)
		return
	}

	res, err := db.Exec(`INSERT INTO reports (post_id, user_id, reason, category) VALUES (?, ?, ?, ?)`,
		p.PostID, principal, p.Reason, p.Category)
	if err != nil {
		if guard.IsUniqueViolation(err) {
			sendDomainError(w, guard.ErrAlreadyReported)
			return
		}
		log.Error().Err(err).Msg("insert report failed")
		sendErrorResponse(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	id, _ := res.LastInsertId()

	sendData(w, http.StatusCreated, map[string]any{
		"message":   "Report submitted",
		"report_id": id,
	})
}
