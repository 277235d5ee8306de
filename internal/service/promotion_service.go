package service

import (
	"context"
	"time"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePromotionRequest struct {
	Name              string           `json:"name" validate:"required,max=255"`
	Type              string           `json:"type" validate:"required,max=50"`
	Value             decimal.Decimal  `json:"value" validate:"money_gte0"`
	StartDate         time.Time        `json:"start_date" validate:"required"`
	EndDate           time.Time        `json:"end_date" validate:"required"`
	MaxUses           *int             `json:"max_uses" validate:"omitempty,gte=0"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount" validate:"money_gte0"`
	IsActive          *bool            `json:"is_active"`
}

// UpdatePromotionRequest is a partial update; nil fields are left alone.
type UpdatePromotionRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Type              *string          `json:"type" validate:"omitempty,min=1,max=50"`
	Value             *decimal.Decimal `json:"value" validate:"money_gte0"`
	StartDate         *time.Time       `json:"start_date"`
	EndDate           *time.Time       `json:"end_date"`
	CurrentUses       *int             `json:"current_uses" validate:"omitempty,gte=0"`
	MaxUses           *int             `json:"max_uses" validate:"omitempty,gte=0"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount" validate:"money_gte0"`
	IsActive          *bool            `json:"is_active"`
}

type PromotionService struct {
	promotions repository.PromotionRepository
	audit      *AuditRecorder
	txManager  repository.TransactionManager
}

func NewPromotionService(promotions repository.PromotionRepository, audit *AuditRecorder, txManager repository.TransactionManager) *PromotionService {
	return &PromotionService{promotions: promotions, audit: audit, txManager: txManager}
}

func (s *PromotionService) ListPromotions(ctx context.Context) ([]model.Promotion, error) {
	return s.promotions.List(ctx)
}

func (s *PromotionService) CreatePromotion(ctx context.Context, actor uuid.UUID, req CreatePromotionRequest) (*model.Promotion, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, apperror.InvalidInput("end_date must not be before start_date")
	}
	promo := &model.Promotion{
		Name:              req.Name,
		Type:              req.Type,
		Value:             req.Value,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		MaxUses:           req.MaxUses,
		MinPurchaseAmount: req.MinPurchaseAmount,
		IsActive:          req.IsActive == nil || *req.IsActive,
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.promotions.Create(txCtx, promo); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionCreate, model.TablePromotions, promo.ID, nil, map[string]any{
			"name": promo.Name,
			"type": promo.Type,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promo, nil
}

func (s *PromotionService) UpdatePromotion(ctx context.Context, actor, promotionID uuid.UUID, req UpdatePromotionRequest) (*model.Promotion, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	var promo *model.Promotion
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		promo, err = s.promotions.FindByIDForUpdate(txCtx, promotionID)
		if err != nil {
			return err
		}
		oldValues := map[string]any{
			"name":      promo.Name,
			"type":      promo.Type,
			"value":     promo.Value.String(),
			"is_active": promo.IsActive,
		}
		newValues := applyPromotionUpdate(promo, req)
		if promo.EndDate.Before(promo.StartDate) {
			return apperror.InvalidInput("end_date must not be before start_date")
		}
		if err := s.promotions.Update(txCtx, promo); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TablePromotions, promo.ID, oldValues, newValues)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promo, nil
}

func applyPromotionUpdate(p *model.Promotion, req UpdatePromotionRequest) map[string]any {
	changed := map[string]any{}
	if req.Name != nil {
		p.Name = *req.Name
		changed["name"] = *req.Name
	}
	if req.Type != nil {
		p.Type = *req.Type
		changed["type"] = *req.Type
	}
	if req.Value != nil {
		p.Value = *req.Value
		changed["value"] = req.Value.String()
	}
	if req.StartDate != nil {
		p.StartDate = *req.StartDate
		changed["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = *req.EndDate
		changed["end_date"] = *req.EndDate
	}
	if req.CurrentUses != nil {
		p.CurrentUses = req.CurrentUses
		changed["current_uses"] = *req.CurrentUses
	}
	if req.MaxUses != nil {
		p.MaxUses = req.MaxUses
		changed["max_uses"] = *req.MaxUses
	}
	if req.MinPurchaseAmount != nil {
		p.MinPurchaseAmount = req.MinPurchaseAmount
		changed["min_purchase_amount"] = req.MinPurchaseAmount.String()
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
		changed["is_active"] = *req.IsActive
	}
	return changed
}
