package service

import (
	"context"
	"strings"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoyaltySettings is the resolved loyalty_program setting. A nil
// *LoyaltySettings means the program is off.
type LoyaltySettings struct {
	Enabled           bool            `json:"enabled"`
	PointsPerCurrency decimal.Decimal `json:"points_per_currency"`
	RedemptionRate    decimal.Decimal `json:"redemption_rate"`
}

var (
	defaultPointsPerCurrency = decimal.NewFromInt(1)
	defaultRedemptionRate    = decimal.RequireFromString("0.01")
)

type UpsertSettingRequest struct {
	SettingValue map[string]any `json:"setting_value"`
	Description  *string        `json:"description"`
}

type SettingsService struct {
	repo      repository.SettingRepository
	txManager repository.TransactionManager
	audit     *AuditRecorder
}

func NewSettingsService(repo repository.SettingRepository, txManager repository.TransactionManager, audit *AuditRecorder) *SettingsService {
	return &SettingsService{repo: repo, txManager: txManager, audit: audit}
}

func (s *SettingsService) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	return s.repo.Get(ctx, key)
}

func (s *SettingsService) List(ctx context.Context) ([]model.SystemSetting, error) {
	return s.repo.List(ctx)
}

// Upsert creates the setting or updates only the fields present in req.
func (s *SettingsService) Upsert(ctx context.Context, actor uuid.UUID, key string, req UpsertSettingRequest) (*model.SystemSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperror.InvalidInput("setting key is required")
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		action := model.ActionUpdate
		setting, err := s.repo.Get(txCtx, key)
		if apperror.Is(err, apperror.KindNotFound) {
			action = model.ActionCreate
			setting = &model.SystemSetting{SettingKey: key, SettingValue: map[string]any{}}
		} else if err != nil {
			return err
		}

		newValues := map[string]any{}
		if req.SettingValue != nil {
			setting.SettingValue = req.SettingValue
			newValues["setting_value"] = req.SettingValue
		}
		if req.Description != nil {
			setting.Description = *req.Description
			newValues["description"] = *req.Description
		}

		if err := s.repo.Upsert(txCtx, setting); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, action, model.TableSystemSettings, setting.ID, nil, newValues)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, key)
}

// Loyalty resolves the loyalty program. It returns nil when the setting is
// missing, disabled or malformed.
func (s *SettingsService) Loyalty(ctx context.Context) (*LoyaltySettings, error) {
	setting, err := s.repo.Get(ctx, model.LoyaltySettingKey)
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseLoyalty(setting.SettingValue), nil
}

// ParseLoyalty interprets a loyalty_program document.
func ParseLoyalty(v map[string]any) *LoyaltySettings {
	enabled, _ := v["enabled"].(bool)
	if !enabled {
		return nil
	}
	ppc, ok := decimalField(v, "points_per_currency", defaultPointsPerCurrency)
	if !ok || ppc.IsNegative() {
		return nil
	}
	rate, ok := decimalField(v, "redemption_rate", defaultRedemptionRate)
	if !ok || rate.IsNegative() {
		return nil
	}
	return &LoyaltySettings{Enabled: true, PointsPerCurrency: ppc, RedemptionRate: rate}
}

func decimalField(v map[string]any, key string, def decimal.Decimal) (decimal.Decimal, bool) {
	raw, present := v[key]
	if !present || raw == nil {
		return def, true
	}
	switch n := raw.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	}
	return decimal.Zero, false
}

// PointsFor returns floor(amount * points_per_currency).
func (l *LoyaltySettings) PointsFor(amount decimal.Decimal) int {
	return int(amount.Mul(l.PointsPerCurrency).Floor().IntPart())
}
