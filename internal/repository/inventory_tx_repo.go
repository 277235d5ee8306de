package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryTxRepository interface {
	Create(ctx context.Context, tx *model.InventoryTransaction) error
	List(ctx context.Context, productID *uuid.UUID, limit int) ([]model.InventoryTransaction, error)
	ListByReference(ctx context.Context, ref model.Reference) ([]model.InventoryTransaction, error)
	SumByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

type inventoryTxRepository struct {
	db *gorm.DB
}

func NewInventoryTxRepository(db *gorm.DB) InventoryTxRepository {
	return &inventoryTxRepository{db: db}
}

func (r *inventoryTxRepository) Create(ctx context.Context, tx *model.InventoryTransaction) error {
	return mapError(GetDB(ctx, r.db).Create(tx).Error, "inventory transaction")
}

func (r *inventoryTxRepository) List(ctx context.Context, productID *uuid.UUID, limit int) ([]model.InventoryTransaction, error) {
	var txs []model.InventoryTransaction
	db := GetDB(ctx, r.db)
	if productID != nil {
		db = db.Where("product_id = ?", *productID)
	}
	err := db.Order("created_at desc").Limit(limit).Find(&txs).Error
	return txs, mapError(err, "inventory transactions")
}

func (r *inventoryTxRepository) ListByReference(ctx context.Context, ref model.Reference) ([]model.InventoryTransaction, error) {
	var txs []model.InventoryTransaction
	err := GetDB(ctx, r.db).
		Where("reference_type = ? AND reference_id = ?", string(ref.Kind), ref.ID).
		Order("created_at asc").
		Find(&txs).Error
	return txs, mapError(err, "inventory transactions")
}

// SumByProduct totals every recorded stock movement of a product.
func (r *inventoryTxRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int
	err := GetDB(ctx, r.db).Model(&model.InventoryTransaction{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity_change), 0)").
		Scan(&total).Error
	return total, mapError(err, "inventory transactions")
}
