package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRanking is one row of a best-seller list.
type ProductRanking struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	ProductSKU    string          `json:"product_sku"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// SalesSummary aggregates completed sales over a window.
type SalesSummary struct {
	Start          *time.Time       `json:"start"`
	End            *time.Time       `json:"end"`
	SalesCount     int64            `json:"total_sales_count"`
	Revenue        decimal.Decimal  `json:"total_sales_amount"`
	VoidedCount    int64            `json:"voided_sales_count"`
	TotalProducts  int64            `json:"total_products"`
	InventoryValue decimal.Decimal  `json:"total_inventory_value"`
	TopProducts    []ProductRanking `json:"top_products"`
}
