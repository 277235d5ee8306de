package model

import (
	"time"
)

// Role is a custom role whose permission codes act as that role's default grants.
// The built-in roles are not stored here.
type Role struct {
	Identity
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission is a capability code that can be attached to a custom role
type Permission struct {
	Identity
	Code  string `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"` // e.g. "inventory.count" or "reports.*"
	Group string `gorm:"type:varchar(50);not null;index" json:"group"`
}
