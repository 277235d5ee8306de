package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity carries the UUID primary key shared by every entity.
// IDs are generated client-side so the same schema works on postgres, mysql and sqlite.
type Identity struct {
	ID uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
}

// BeforeCreate assigns a fresh UUID unless the caller already chose one.
func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
