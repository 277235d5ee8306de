package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item and its on-hand stock.
// StockQuantity is only written through the stock ledger once the product exists.
type Product struct {
	Identity
	Name           string           `gorm:"type:varchar(255);not null;index" json:"name"`
	Description    string           `gorm:"type:text" json:"description"`
	SKU            string           `gorm:"type:varchar(100);index" json:"sku"`
	Barcode        string           `gorm:"type:varchar(100);index" json:"barcode"`
	Category       string           `gorm:"type:varchar(100)" json:"category"`
	Price          decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	Cost           *decimal.Decimal `gorm:"type:numeric(12,2)" json:"cost"`
	StockQuantity  int              `gorm:"not null;default:0" json:"stock_quantity"`
	MinStockLevel  *int             `json:"min_stock_level"`
	Unit           string           `gorm:"type:varchar(30)" json:"unit"`
	IsActive       bool             `gorm:"not null;default:true" json:"is_active"`
	ExpirationDate *time.Time       `json:"expiration_date"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// IsLowStock reports whether stock has reached the configured minimum.
func (p *Product) IsLowStock() bool {
	return p.MinStockLevel != nil && p.StockQuantity <= *p.MinStockLevel
}

// Inventory transaction types
const (
	TxTypeSale               = "sale"
	TxTypeSaleVoid           = "sale_void"
	TxTypePurchase           = "purchase"
	TxTypePurchaseAdjustment = "purchase_adjustment"
	TxTypeReturn             = "return"
	TxTypeStockAdjustment    = "stock_adjustment"
	TxTypeManual             = "manual"
)

// ReferenceKind names the entity that caused a stock movement.
type ReferenceKind string

const (
	RefSale           ReferenceKind = "sale"
	RefPurchase       ReferenceKind = "purchase"
	RefReturn         ReferenceKind = "return"
	RefInventoryCount ReferenceKind = "inventory_count"
	RefManual         ReferenceKind = "manual"
)

// Valid reports whether k is one of the known referencing kinds.
func (k ReferenceKind) Valid() bool {
	switch k {
	case RefSale, RefPurchase, RefReturn, RefInventoryCount, RefManual:
		return true
	}
	return false
}

// Reference is a typed back-pointer from a stock movement to its cause.
type Reference struct {
	Kind ReferenceKind `json:"kind"`
	ID   uuid.UUID     `json:"id"`
}

func SaleRef(id uuid.UUID) *Reference           { return &Reference{Kind: RefSale, ID: id} }
func PurchaseRef(id uuid.UUID) *Reference       { return &Reference{Kind: RefPurchase, ID: id} }
func ReturnRef(id uuid.UUID) *Reference         { return &Reference{Kind: RefReturn, ID: id} }
func InventoryCountRef(id uuid.UUID) *Reference { return &Reference{Kind: RefInventoryCount, ID: id} }

// InventoryTransaction is the append-only stock history of a product.
// The sum of QuantityChange for a product equals its stock minus the initial value.
type InventoryTransaction struct {
	Identity
	ProductID       uuid.UUID  `gorm:"type:char(36);not null;index" json:"product_id"`
	QuantityChange  int        `gorm:"not null" json:"quantity_change"`
	StockAfter      int        `gorm:"not null" json:"stock_after"`
	TransactionType string     `gorm:"type:varchar(30);not null;index" json:"transaction_type"`
	ReferenceID     *uuid.UUID `gorm:"type:char(36);index" json:"reference_id"`
	ReferenceType   *string    `gorm:"type:varchar(30)" json:"reference_type"`
	CreatedBy       uuid.UUID  `gorm:"type:char(36);not null" json:"created_by"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
}

// SetReference stores ref in the reference_type/reference_id column pair.
func (t *InventoryTransaction) SetReference(ref *Reference) {
	if ref == nil {
		t.ReferenceID, t.ReferenceType = nil, nil
		return
	}
	id, kind := ref.ID, string(ref.Kind)
	t.ReferenceID, t.ReferenceType = &id, &kind
}

// Reference rebuilds the typed reference, or nil for unreferenced movements.
func (t *InventoryTransaction) Reference() *Reference {
	if t.ReferenceID == nil || t.ReferenceType == nil {
		return nil
	}
	return &Reference{Kind: ReferenceKind(*t.ReferenceType), ID: *t.ReferenceID}
}

// InventoryCount is a physical stock-take snapshot.
type InventoryCount struct {
	Identity
	ProductID     *uuid.UUID `gorm:"type:char(36);index" json:"product_id"`
	Product       *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	PhysicalCount int        `gorm:"not null" json:"physical_count"`
	SystemCount   int        `gorm:"not null" json:"system_count"`
	Difference    int        `json:"difference"`
	Status        string     `gorm:"type:varchar(30);not null" json:"status"`
	CountDate     *time.Time `json:"count_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
