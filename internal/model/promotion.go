package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promotion is a catalogued discount campaign. Sales do not apply it
// automatically; the till reads active promotions and prices lines itself.
type Promotion struct {
	Identity
	Name              string           `gorm:"type:varchar(255);not null" json:"name"`
	Type              string           `gorm:"type:varchar(50);not null" json:"type"`
	Value             decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"value"`
	StartDate         time.Time        `gorm:"not null" json:"start_date"`
	EndDate           time.Time        `gorm:"not null" json:"end_date"`
	CurrentUses       *int             `json:"current_uses"`
	MaxUses           *int             `json:"max_uses"`
	MinPurchaseAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"min_purchase_amount"`
	IsActive          bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time        `gorm:"index" json:"created_at"`
}
