package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.SystemSetting, error)
	Upsert(ctx context.Context, setting *model.SystemSetting) error
	List(ctx context.Context) ([]model.SystemSetting, error)
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	var setting model.SystemSetting
	if err := GetDB(ctx, r.db).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, mapError(err, "setting "+key)
	}
	return &setting, nil
}

// Upsert saves a loaded setting in place; a new one is inserted and merged
// into any row created concurrently under the same key.
func (r *settingRepository) Upsert(ctx context.Context, setting *model.SystemSetting) error {
	db := GetDB(ctx, r.db)
	if setting.ID != uuid.Nil {
		return mapError(db.Save(setting).Error, "setting")
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "description", "updated_at"}),
	}).Create(setting).Error
	return mapError(err, "setting")
}

func (r *settingRepository) List(ctx context.Context) ([]model.SystemSetting, error) {
	var settings []model.SystemSetting
	err := GetDB(ctx, r.db).Order("setting_key asc").Find(&settings).Error
	return settings, mapError(err, "settings")
}
