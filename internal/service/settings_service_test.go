package service

import (
	"context"
	"testing"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
)

func TestParseLoyalty(t *testing.T) {
	cases := []struct {
		name string
		doc  map[string]any
		want bool
	}{
		{"disabled", map[string]any{"enabled": false}, false},
		{"missing flag", map[string]any{}, false},
		{"defaults", map[string]any{"enabled": true}, true},
		{"string rate", map[string]any{"enabled": true, "points_per_currency": "2"}, true},
		{"negative rate", map[string]any{"enabled": true, "points_per_currency": -1.0}, false},
		{"garbage rate", map[string]any{"enabled": true, "redemption_rate": []any{1}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseLoyalty(tc.doc) != nil; got != tc.want {
				t.Errorf("ParseLoyalty(%v) enabled = %v, want %v", tc.doc, got, tc.want)
			}
		})
	}
}

func TestPointsForFloors(t *testing.T) {
	l := &LoyaltySettings{Enabled: true, PointsPerCurrency: dec("1.5")}
	if got := l.PointsFor(dec("9.99")); got != 14 {
		t.Errorf("PointsFor = %d, want 14", got)
	}
}

func TestUpsertSetting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if loyalty, err := env.settings.Loyalty(ctx); err != nil || loyalty != nil {
		t.Fatalf("missing setting = %v, %v", loyalty, err)
	}

	desc := "store hours"
	created, err := env.settings.Upsert(ctx, env.actor, "hours", UpsertSettingRequest{
		SettingValue: map[string]any{"open": "08:00"},
		Description:  &desc,
	})
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}
	updated, err := env.settings.Upsert(ctx, env.actor, "hours", UpsertSettingRequest{
		SettingValue: map[string]any{"open": "09:00"},
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != created.ID || updated.SettingValue["open"] != "09:00" || updated.Description != desc {
		t.Errorf("updated = %+v", updated)
	}
	if n, _ := env.auditRepo.CountByRecord(ctx, model.TableSystemSettings, created.ID); n != 2 {
		t.Errorf("audit entries = %d, want 2", n)
	}

	_, err = env.settings.Upsert(ctx, env.actor, "  ", UpsertSettingRequest{})
	wantKind(t, err, apperror.KindInvalidInput)
}
