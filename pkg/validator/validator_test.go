package validator

import (
	"testing"

	"smartpos/internal/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type line struct {
	ProductID uuid.UUID        `validate:"uuid_required"`
	Quantity  int              `validate:"gt=0"`
	Price     decimal.Decimal  `validate:"money_gte0"`
	Discount  *decimal.Decimal `validate:"money_gte0"`
	Method    string           `validate:"oneof=cash card"`
}

func TestCheck(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	tests := []struct {
		name    string
		in      line
		wantTag string
	}{
		{"valid", line{uuid.New(), 1, decimal.NewFromInt(5), nil, "cash"}, ""},
		{"nil uuid", line{uuid.Nil, 1, decimal.Zero, nil, "cash"}, "uuid_required"},
		{"zero quantity", line{uuid.New(), 0, decimal.Zero, nil, "card"}, "gt"},
		{"negative price", line{uuid.New(), 1, neg, nil, "cash"}, "money_gte0"},
		{"negative discount", line{uuid.New(), 1, decimal.Zero, &neg, "cash"}, "money_gte0"},
		{"bad enum", line{uuid.New(), 1, decimal.Zero, nil, "cheque"}, "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(tt.in)
			if tt.wantTag == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected errors: %+v", errs[0])
				}
				if err := Check(tt.in); err != nil {
					t.Fatalf("Check: %v", err)
				}
				return
			}
			if len(errs) != 1 || errs[0].Tag != tt.wantTag {
				t.Fatalf("want single %s failure, got %+v", tt.wantTag, errs)
			}
			if err := Check(tt.in); !apperror.Is(err, apperror.KindInvalidInput) {
				t.Fatalf("Check: want InvalidInput, got %v", err)
			}
		})
	}
}
