package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a supplier receipt. It exclusively owns its items.
type Purchase struct {
	Identity
	SupplierName string          `gorm:"type:varchar(255);not null" json:"supplier_name"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PurchaseDate *time.Time      `json:"purchase_date"`
	Status       string          `gorm:"type:varchar(30);not null" json:"status"`
	Notes        string          `gorm:"type:text" json:"notes"`
	Items        []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PurchaseItem is one received line.
type PurchaseItem struct {
	Identity
	PurchaseID uuid.UUID       `gorm:"type:char(36);not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:char(36);not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}
