package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error)
	CountByRecord(ctx context.Context, table string, recordID uuid.UUID) (int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Log inserts entry. Inside a transaction the insert runs under a savepoint,
// so a failed audit write leaves the enclosing transaction usable.
func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	err := GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
	return mapError(err, "audit log")
}

func (r *auditRepository) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, mapError(err, "audit logs")
	}

	offset := (page - 1) * limit
	if err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, mapError(err, "audit logs")
	}

	return logs, total, nil
}

func (r *auditRepository) CountByRecord(ctx context.Context, table string, recordID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.AuditLog{}).
		Where("table_name = ? AND record_id = ?", table, recordID).
		Count(&n).Error
	return n, mapError(err, "audit logs")
}
