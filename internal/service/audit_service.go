package service

import (
	"context"

	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuditLogResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	UserEmail string         `json:"user_email"`
	Action    string         `json:"action"`
	TableName string         `json:"table_name"`
	RecordID  string         `json:"record_id,omitempty"`
	OldValues map[string]any `json:"old_values,omitempty"`
	NewValues map[string]any `json:"new_values,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// AuditRecorder appends audit entries inside the caller's unit of work.
// A failed write is logged and swallowed so it never blocks the primary commit.
type AuditRecorder struct {
	repo repository.AuditRepository
	log  *logrus.Logger
}

func NewAuditRecorder(repo repository.AuditRepository, log *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, log: log}
}

func (a *AuditRecorder) Record(ctx context.Context, actor uuid.UUID, action, table string, recordID uuid.UUID, oldValues, newValues map[string]any) {
	entry := &model.AuditLog{
		UserID:    actor,
		Action:    action,
		Table:     table,
		OldValues: oldValues,
		NewValues: newValues,
	}
	if recordID != uuid.Nil {
		entry.RecordID = &recordID
	}
	if err := a.repo.Log(ctx, entry); err != nil {
		a.log.WithError(err).WithFields(logrus.Fields{
			"action":    action,
			"table":     table,
			"record_id": recordID,
			"user_id":   actor,
		}).Error("audit write failed")
	}
}

// ListAuditLogs returns the newest entries first.
func (a *AuditRecorder) ListAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	logs, total, err := a.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		item := AuditLogResponse{
			ID:        l.ID.String(),
			UserID:    l.UserID.String(),
			Action:    l.Action,
			TableName: l.Table,
			OldValues: l.OldValues,
			NewValues: l.NewValues,
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if l.User != nil {
			item.UserEmail = l.User.Email
		}
		if l.RecordID != nil {
			item.RecordID = l.RecordID.String()
		}
		res = append(res, item)
	}
	return res, total, nil
}
