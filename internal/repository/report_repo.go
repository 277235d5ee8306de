package repository

import (
	"context"
	"fmt"
	"time"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerTotals is the replayed purchase history of one customer.
type CustomerTotals struct {
	CustomerID       uuid.UUID
	TotalPurchases   decimal.Decimal
	LastPurchaseDate *time.Time
}

type ReportRepository interface {
	SalesTotals(ctx context.Context, status string, start, end *time.Time) (total decimal.Decimal, count int64, err error)
	TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]model.ProductRanking, error)
	InventoryValue(ctx context.Context) (value decimal.Decimal, products int64, err error)
	CustomerTotals(ctx context.Context) ([]CustomerTotals, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func saleWindow(db *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		db = db.Where("sales.sale_date >= ?", *start)
	}
	if end != nil {
		db = db.Where("sales.sale_date <= ?", *end)
	}
	return db
}

func (r *reportRepository) SalesTotals(ctx context.Context, status string, start, end *time.Time) (decimal.Decimal, int64, error) {
	var result struct {
		Value decimal.Decimal
		Count int64
	}
	db := GetDB(ctx, r.db).Table("sales").
		Select("COALESCE(SUM(sales.total_amount), 0) as value, COUNT(sales.id) as count").
		Where("sales.status = ?", status)
	if err := saleWindow(db, start, end).Scan(&result).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to query sales totals: %w", err)
	}
	return result.Value, result.Count, nil
}

func (r *reportRepository) TopProducts(ctx context.Context, start, end *time.Time, limit int) ([]model.ProductRanking, error) {
	var rankings []model.ProductRanking
	db := GetDB(ctx, r.db).Table("sale_items").
		Select("products.id as product_id, products.name as product_name, products.sku as product_sku, SUM(sale_items.quantity) as total_quantity, SUM(sale_items.total_price) as total_value").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status = ?", model.SaleStatusCompleted)
	if err := saleWindow(db, start, end).
		Group("products.id, products.name, products.sku").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rankings, nil
}

// InventoryValue is the sum of stock * cost over active products.
func (r *reportRepository) InventoryValue(ctx context.Context) (decimal.Decimal, int64, error) {
	var result struct {
		Value decimal.Decimal
		Count int64
	}
	if err := GetDB(ctx, r.db).Table("products").
		Select("COALESCE(SUM(stock_quantity * COALESCE(cost, 0)), 0) as value, COUNT(id) as count").
		Where("is_active = ?", true).
		Scan(&result).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to query inventory value: %w", err)
	}
	return result.Value, result.Count, nil
}

// CustomerTotals replays every non-voided sale per customer.
func (r *reportRepository) CustomerTotals(ctx context.Context) ([]CustomerTotals, error) {
	var sales []model.Sale
	if err := GetDB(ctx, r.db).
		Select("customer_id", "total_amount", "sale_date").
		Where("customer_id IS NOT NULL AND status <> ?", model.SaleStatusVoided).
		Order("sale_date asc").
		Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to replay sales: %w", err)
	}

	byCustomer := map[uuid.UUID]*CustomerTotals{}
	order := []uuid.UUID{}
	for _, s := range sales {
		id := *s.CustomerID
		t, ok := byCustomer[id]
		if !ok {
			t = &CustomerTotals{CustomerID: id}
			byCustomer[id] = t
			order = append(order, id)
		}
		t.TotalPurchases = t.TotalPurchases.Add(s.TotalAmount)
		date := s.SaleDate
		t.LastPurchaseDate = &date
	}
	out := make([]CustomerTotals, 0, len(order))
	for _, id := range order {
		out = append(out, *byCustomer[id])
	}
	return out, nil
}
