package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReturnRepository interface {
	Create(ctx context.Context, ret *model.Return) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Return, error)
	List(ctx context.Context, limit int) ([]model.Return, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type returnRepository struct {
	db *gorm.DB
}

func NewReturnRepository(db *gorm.DB) ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, ret *model.Return) error {
	return mapError(GetDB(ctx, r.db).Create(ret).Error, "return")
}

func (r *returnRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Return, error) {
	var ret model.Return
	if err := GetDB(ctx, r.db).Preload("Sale").First(&ret, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "return")
	}
	return &ret, nil
}

func (r *returnRepository) List(ctx context.Context, limit int) ([]model.Return, error) {
	var rets []model.Return
	err := GetDB(ctx, r.db).Preload("Sale").Order("created_at desc").Limit(limit).Find(&rets).Error
	return rets, mapError(err, "returns")
}

func (r *returnRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return mapError(GetDB(ctx, r.db).Model(&model.Return{}).Where("id = ?", id).Update("status", status).Error, "return")
}
