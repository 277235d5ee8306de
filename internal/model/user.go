package model

import (
	"time"
)

// Built-in roles
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User is an authenticated actor (table "profiles").
// Permissions holds the raw {"allow": [...], "deny": [...]} override document.
type User struct {
	Identity
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName       string    `gorm:"type:varchar(255)" json:"full_name"`
	Phone          string    `gorm:"type:varchar(30)" json:"phone"`
	Role           string    `gorm:"type:varchar(50);index" json:"role"`
	StoreName      string    `gorm:"type:varchar(255)" json:"store_name"`
	HashedPassword string    `gorm:"type:varchar(255);not null" json:"-"`
	Disabled       bool      `gorm:"not null;default:false" json:"disabled"`
	Permissions    string    `gorm:"type:text" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (User) TableName() string { return "profiles" }
