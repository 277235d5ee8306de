package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"smartpos/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

var (
	validate *validator.Validate
	once     sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
			if id, ok := fl.Field().Interface().(uuid.UUID); ok {
				return id != uuid.Nil
			}
			return false
		})
		// money_gte0 accepts a non-negative decimal.Decimal (or a nil *decimal.Decimal).
		_ = validate.RegisterValidation("money_gte0", func(fl validator.FieldLevel) bool {
			switch v := fl.Field().Interface().(type) {
			case decimal.Decimal:
				return !v.IsNegative()
			case *decimal.Decimal:
				return v == nil || !v.IsNegative()
			}
			return false
		}, true)
	})
	return validate
}

func ValidateStruct(data any) []*ErrorResponse {
	var out []*ErrorResponse
	err := instance().Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
	}
	for _, e := range verrs {
		out = append(out, &ErrorResponse{
			FailedField: e.StructNamespace(),
			Tag:         e.Tag(),
			Value:       e.Param(),
		})
	}
	return out
}

// Check validates data and folds any failures into one InvalidInput error.
func Check(data any) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Value != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", e.FailedField, e.Tag, e.Value))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", e.FailedField, e.Tag))
		}
	}
	return apperror.InvalidInput("%s", strings.Join(parts, "; "))
}
