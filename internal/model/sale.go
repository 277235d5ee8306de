package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale status
const (
	SaleStatusCompleted = "completed"
	SaleStatusVoided    = "voided"
)

// Payment enumerations
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentMobile = "mobile"
	PaymentOther  = "other"

	PaymentStatusPaid     = "paid"
	PaymentStatusPending  = "pending"
	PaymentStatusRefunded = "refunded"
)

// Sale is a completed checkout. It moves completed -> voided once and never back.
type Sale struct {
	Identity
	SaleNumber     string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"sale_number"`
	IdempotencyKey *string          `gorm:"type:varchar(128);uniqueIndex" json:"idempotency_key"`
	CashierID      uuid.UUID        `gorm:"type:char(36);not null;index" json:"cashier_id"`
	CustomerID     *uuid.UUID       `gorm:"type:char(36);index" json:"customer_id"`
	Customer       *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Subtotal       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxAmount      *decimal.Decimal `gorm:"type:numeric(12,2)" json:"tax_amount"`
	DiscountAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount_amount"`
	TotalAmount    decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentMethod  string           `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus  *string          `gorm:"type:varchar(20)" json:"payment_status"`
	Status         string           `gorm:"type:varchar(20);not null;default:'completed';index" json:"status"`
	PointsRedeemed int              `gorm:"not null;default:0" json:"points_redeemed"`
	Notes          string           `gorm:"type:text" json:"notes"`
	SaleDate       time.Time        `gorm:"not null;index" json:"sale_date"`
	Items          []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time        `json:"created_at"`
}

// SaleItem is one line of a Sale.
type SaleItem struct {
	Identity
	SaleID         uuid.UUID        `gorm:"type:char(36);not null;index" json:"sale_id"`
	ProductID      uuid.UUID        `gorm:"type:char(36);not null;index" json:"product_id"`
	Product        *Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity       int              `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	DiscountAmount *decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount_amount"`
	TotalPrice     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Customer aggregates are maintained by sale creation and voiding.
type Customer struct {
	Identity
	Name               string           `gorm:"type:varchar(255);not null;index" json:"name"`
	Phone              string           `gorm:"type:varchar(30)" json:"phone"`
	Email              string           `gorm:"type:varchar(255)" json:"email"`
	Address            string           `gorm:"type:text" json:"address"`
	CustomerType       string           `gorm:"type:varchar(30)" json:"customer_type"`
	DiscountPercentage *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount_percentage"`
	TotalPurchases     decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"total_purchases"`
	LoyaltyPoints      int              `gorm:"not null;default:0" json:"loyalty_points"`
	IsActive           bool             `gorm:"not null;default:true" json:"is_active"`
	LastPurchaseDate   *time.Time       `json:"last_purchase_date"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Return records goods brought back against a sale line.
type Return struct {
	Identity
	SaleID       uuid.UUID       `gorm:"type:char(36);not null;index" json:"sale_id"`
	Sale         *Sale           `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	ProductID    uuid.UUID       `gorm:"type:char(36);not null;index" json:"product_id"`
	ProcessedBy  uuid.UUID       `gorm:"type:char(36);not null" json:"processed_by"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Reason       string          `gorm:"type:text;not null" json:"reason"`
	RefundAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"refund_amount"`
	Status       string          `gorm:"type:varchar(30)" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ReturnStatusPending is assigned when a return is created without a status.
const ReturnStatusPending = "pending"
