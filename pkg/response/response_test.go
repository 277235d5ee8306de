package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"smartpos/internal/apperror"
)

func TestFromErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperror.InvalidInput("bad"), http.StatusBadRequest},
		{apperror.InsufficientStock("short"), http.StatusBadRequest},
		{apperror.InsufficientPoints("short"), http.StatusBadRequest},
		{apperror.Unauthenticated("who"), http.StatusUnauthorized},
		{apperror.Forbidden("no"), http.StatusForbidden},
		{apperror.NotFound("gone"), http.StatusNotFound},
		{apperror.Conflict("dup"), http.StatusConflict},
		{apperror.InvalidState("voided"), http.StatusBadRequest},
		{apperror.Wrap(apperror.KindContention, errors.New("deadlock"), "busy"), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", apperror.NotFound("sale")), http.StatusNotFound},
	}
	for _, tt := range tests {
		r := FromError(tt.err)
		if r.StatusCode != tt.want {
			t.Errorf("FromError(%v) = %d, want %d", tt.err, r.StatusCode, tt.want)
		}
		if r.Status != "error" {
			t.Errorf("status = %q", r.Status)
		}
	}
}

func TestFromErrorHidesInternalDetail(t *testing.T) {
	r := FromError(errors.New("pq: password authentication failed"))
	if r.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", r.StatusCode)
	}
	if r.Error != "Internal Server Error" {
		t.Fatalf("internal error leaked: %q", r.Error)
	}
}

func TestPaginatedCarriesMeta(t *testing.T) {
	r := Paginated([]int{1, 2}, 2, 10, 12)
	if r.Meta == nil || r.Meta.Page != 2 || r.Meta.Total != 12 {
		t.Fatalf("unexpected meta %+v", r.Meta)
	}
}
