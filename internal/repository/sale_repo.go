package repository

import (
	"context"
	"time"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter narrows ListSales.
type SaleFilter struct {
	Start      *time.Time
	End        *time.Time
	CashierID  *uuid.UUID
	CustomerID *uuid.UUID
	Status     string
	Limit      int
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	HasItem(ctx context.Context, saleID, productID uuid.UUID) (bool, error)
	ListNonVoidedByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

// Create inserts the header and its items in one statement batch.
func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return mapError(GetDB(ctx, r.db).Create(sale).Error, "sale")
}

func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).Preload("Items.Product").Preload("Customer").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "sale")
	}
	return &sale, nil
}

func (r *saleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&sale).Error; err != nil {
		return nil, mapError(err, "sale")
	}
	if err := GetDB(ctx, r.db).Where("sale_id = ?", id).Order("created_at asc").Find(&sale.Items).Error; err != nil {
		return nil, mapError(err, "sale items")
	}
	return &sale, nil
}

func (r *saleRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).Preload("Items").Where("idempotency_key = ?", key).First(&sale).Error; err != nil {
		return nil, mapError(err, "sale")
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]model.Sale, error) {
	var sales []model.Sale
	db := GetDB(ctx, r.db).Preload("Items.Product")
	if filter.Start != nil {
		db = db.Where("sale_date >= ?", *filter.Start)
	}
	if filter.End != nil {
		db = db.Where("sale_date <= ?", *filter.End)
	}
	if filter.CashierID != nil {
		db = db.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	err := db.Order("created_at desc").Limit(filter.Limit).Find(&sales).Error
	return sales, mapError(err, "sales")
}

func (r *saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return mapError(GetDB(ctx, r.db).Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error, "sale")
}

func (r *saleRepository) HasItem(ctx context.Context, saleID, productID uuid.UUID) (bool, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.SaleItem{}).
		Where("sale_id = ? AND product_id = ?", saleID, productID).
		Count(&n).Error
	return n > 0, mapError(err, "sale items")
}

func (r *saleRepository) ListNonVoidedByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error) {
	var sales []model.Sale
	err := GetDB(ctx, r.db).
		Where("customer_id = ? AND status <> ?", customerID, model.SaleStatusVoided).
		Order("sale_date asc").
		Find(&sales).Error
	return sales, mapError(err, "sales")
}
