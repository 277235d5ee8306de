package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryCountRepository interface {
	Create(ctx context.Context, count *model.InventoryCount) error
	Update(ctx context.Context, count *model.InventoryCount) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryCount, error)
	List(ctx context.Context, limit int) ([]model.InventoryCount, error)
}

type inventoryCountRepository struct {
	db *gorm.DB
}

func NewInventoryCountRepository(db *gorm.DB) InventoryCountRepository {
	return &inventoryCountRepository{db: db}
}

func (r *inventoryCountRepository) Create(ctx context.Context, count *model.InventoryCount) error {
	return mapError(GetDB(ctx, r.db).Omit("Product").Create(count).Error, "inventory count")
}

func (r *inventoryCountRepository) Update(ctx context.Context, count *model.InventoryCount) error {
	return mapError(GetDB(ctx, r.db).Omit("Product").Save(count).Error, "inventory count")
}

func (r *inventoryCountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return mapError(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InventoryCount{}).Error, "inventory count")
}

func (r *inventoryCountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryCount, error) {
	var count model.InventoryCount
	if err := GetDB(ctx, r.db).First(&count, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "inventory count")
	}
	return &count, nil
}

func (r *inventoryCountRepository) List(ctx context.Context, limit int) ([]model.InventoryCount, error) {
	var counts []model.InventoryCount
	err := GetDB(ctx, r.db).Preload("Product").Order("updated_at desc").Limit(limit).Find(&counts).Error
	return counts, mapError(err, "inventory counts")
}
