package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionVoid   = "VOID"

	ActionResetPassword = "RESET_PASSWORD"
)

// Audited tables
const (
	TableSales                 = "sales"
	TablePurchases             = "purchases"
	TableReturns               = "returns"
	TableInventoryCounts       = "inventory_counts"
	TableInventoryTransactions = "inventory_transactions"
	TableProducts              = "products"
	TableCustomers             = "customers"
	TableProfiles              = "profiles"
	TableRoles                 = "roles"
	TableSystemSettings        = "system_settings"
	TablePromotions            = "promotions"
)

// AuditLog tracks who changed what, with before/after snapshots
type AuditLog struct {
	Identity
	UserID    uuid.UUID      `gorm:"type:char(36);not null;index" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action    string         `gorm:"type:varchar(50);not null;index" json:"action"`
	Table     string         `gorm:"column:table_name;type:varchar(100);not null;index" json:"table_name"`
	RecordID  *uuid.UUID     `gorm:"type:char(36);index" json:"record_id"`
	OldValues map[string]any `gorm:"type:text;serializer:json" json:"old_values"`
	NewValues map[string]any `gorm:"type:text;serializer:json" json:"new_values"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
