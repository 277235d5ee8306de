package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromotionRepository interface {
	Create(ctx context.Context, promo *model.Promotion) error
	Update(ctx context.Context, promo *model.Promotion) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	List(ctx context.Context) ([]model.Promotion, error)
}

type promotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) Create(ctx context.Context, promo *model.Promotion) error {
	return mapError(GetDB(ctx, r.db).Create(promo).Error, "promotion")
}

func (r *promotionRepository) Update(ctx context.Context, promo *model.Promotion) error {
	return mapError(GetDB(ctx, r.db).Save(promo).Error, "promotion")
}

func (r *promotionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	var promo model.Promotion
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&promo, "id = ?", id).Error
	if err != nil {
		return nil, mapError(err, "promotion")
	}
	return &promo, nil
}

// List returns every promotion, newest first.
func (r *promotionRepository) List(ctx context.Context) ([]model.Promotion, error) {
	var promos []model.Promotion
	err := GetDB(ctx, r.db).Order("created_at desc").Find(&promos).Error
	return promos, mapError(err, "promotions")
}
