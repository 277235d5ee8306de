package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, limit int) ([]model.Purchase, error)
	UpdateHeader(ctx context.Context, purchase *model.Purchase) error
	ReplaceItems(ctx context.Context, purchaseID uuid.UUID, items []model.PurchaseItem) error
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return mapError(GetDB(ctx, r.db).Create(purchase).Error, "purchase")
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Preload("Items.Product").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "purchase")
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&purchase).Error; err != nil {
		return nil, mapError(err, "purchase")
	}
	if err := GetDB(ctx, r.db).Where("purchase_id = ?", id).Find(&purchase.Items).Error; err != nil {
		return nil, mapError(err, "purchase items")
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, limit int) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := GetDB(ctx, r.db).Preload("Items.Product").Order("created_at desc").Limit(limit).Find(&purchases).Error
	return purchases, mapError(err, "purchases")
}

func (r *purchaseRepository) UpdateHeader(ctx context.Context, purchase *model.Purchase) error {
	err := GetDB(ctx, r.db).Model(&model.Purchase{}).Where("id = ?", purchase.ID).
		Updates(map[string]any{
			"status":       purchase.Status,
			"notes":        purchase.Notes,
			"total_amount": purchase.TotalAmount,
		}).Error
	return mapError(err, "purchase")
}

// ReplaceItems deletes the current lines of a purchase and inserts items.
func (r *purchaseRepository) ReplaceItems(ctx context.Context, purchaseID uuid.UUID, items []model.PurchaseItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("purchase_id = ?", purchaseID).Delete(&model.PurchaseItem{}).Error; err != nil {
		return mapError(err, "purchase items")
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].PurchaseID = purchaseID
	}
	return mapError(db.Create(&items).Error, "purchase items")
}
