package service

import (
	"context"
	"strings"
	"testing"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
)

func TestCreateReturnRestocksWithoutCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 10)
	sale, err := env.sale.CreateSale(ctx, env.actor, sellRequest(line(cola, 2)), nil)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	// More than was sold is accepted.
	ret, err := env.returns.CreateReturn(ctx, env.actor, CreateReturnRequest{
		SaleID:       sale.ID,
		ProductID:    cola.ID,
		Quantity:     5,
		Reason:       "damaged",
		RefundAmount: dec("50"),
	})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if ret.Status != model.ReturnStatusPending {
		t.Errorf("status = %q, want pending", ret.Status)
	}
	if got := env.stockOf(t, cola.ID); got != 13 {
		t.Errorf("stock = %d, want 13", got)
	}
	env.assertLedgerBalanced(t, cola.ID)

	approved := "approved"
	updated, err := env.returns.UpdateReturn(ctx, env.actor, ret.ID, UpdateReturnRequest{Status: &approved})
	if err != nil {
		t.Fatalf("UpdateReturn: %v", err)
	}
	if updated.Status != approved {
		t.Errorf("status = %q, want approved", updated.Status)
	}
	if got := env.stockOf(t, cola.ID); got != 13 {
		t.Errorf("status change moved stock to %d", got)
	}
}

func TestCreateReturnValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 10)
	chips := env.newProduct(t, "chips", 10)
	sale, err := env.sale.CreateSale(ctx, env.actor, sellRequest(line(cola, 1)), nil)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	cases := []struct {
		name    string
		req     CreateReturnRequest
		message string
	}{
		{"product not in sale", CreateReturnRequest{SaleID: sale.ID, ProductID: chips.ID, Quantity: 1}, "product not in sale"},
		{"unknown sale", CreateReturnRequest{SaleID: chips.ID, ProductID: cola.ID, Quantity: 1}, "sale not found"},
		{"unknown sale before bad quantity", CreateReturnRequest{SaleID: chips.ID, ProductID: cola.ID}, "sale not found"},
		{"sale line before bad quantity", CreateReturnRequest{SaleID: sale.ID, ProductID: chips.ID}, "product not in sale"},
		{"zero quantity", CreateReturnRequest{SaleID: sale.ID, ProductID: cola.ID, Quantity: 0}, "Quantity"},
		{"negative refund", CreateReturnRequest{SaleID: sale.ID, ProductID: cola.ID, Quantity: 1, RefundAmount: dec("-1")}, "RefundAmount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.returns.CreateReturn(ctx, env.actor, tc.req)
			wantKind(t, err, apperror.KindInvalidInput)
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("error %q does not mention %q", err, tc.message)
			}
		})
	}
	if got := env.stockOf(t, chips.ID); got != 10 {
		t.Errorf("chips stock = %d, want 10", got)
	}
	if got := env.stockOf(t, cola.ID); got != 9 {
		t.Errorf("cola stock = %d, want 9", got)
	}
}
