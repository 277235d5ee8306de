package service

import (
	"context"
	"testing"

	"smartpos/internal/apperror"
	"smartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func purchaseLine(id uuid.UUID, qty int) PurchaseItemRequest {
	return PurchaseItemRequest{ProductID: id, Quantity: qty, UnitPrice: dec("2"), TotalPrice: dec("2").Mul(decimal.NewFromInt(int64(qty)))}
}

func TestCreatePurchaseAddsStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.newProduct(t, "flour", 1)

	purchase, err := env.purchase.CreatePurchase(ctx, env.actor, CreatePurchaseRequest{
		SupplierName: "Mill Co",
		TotalAmount:  dec("20"),
		Status:       "received",
		Items:        []PurchaseItemRequest{purchaseLine(flour.ID, 10)},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if len(purchase.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(purchase.Items))
	}
	if got := env.stockOf(t, flour.ID); got != 11 {
		t.Errorf("stock = %d, want 11", got)
	}
	env.assertLedgerBalanced(t, flour.ID)
}

func TestCreatePurchaseUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.purchase.CreatePurchase(context.Background(), env.actor, CreatePurchaseRequest{
		SupplierName: "Mill Co",
		Status:       "received",
		Items:        []PurchaseItemRequest{purchaseLine(uuid.New(), 1)},
	})
	wantKind(t, err, apperror.KindInvalidInput)
}

func TestUpdatePurchaseAppliesNetDelta(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.newProduct(t, "flour", 0)
	sugar := env.newProduct(t, "sugar", 0)
	salt := env.newProduct(t, "salt", 0)

	purchase, err := env.purchase.CreatePurchase(ctx, env.actor, CreatePurchaseRequest{
		SupplierName: "Mill Co",
		TotalAmount:  dec("30"),
		Status:       "received",
		Items: []PurchaseItemRequest{
			purchaseLine(flour.ID, 10),
			purchaseLine(sugar.ID, 5),
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	// flour 10 -> 4, sugar unchanged, salt added.
	items := []PurchaseItemRequest{
		purchaseLine(flour.ID, 4),
		purchaseLine(sugar.ID, 5),
		purchaseLine(salt.ID, 7),
	}
	status := "corrected"
	updated, err := env.purchase.UpdatePurchase(ctx, env.actor, purchase.ID, UpdatePurchaseRequest{Status: &status, Items: &items})
	if err != nil {
		t.Fatalf("UpdatePurchase: %v", err)
	}

	want := map[uuid.UUID]int{flour.ID: 4, sugar.ID: 5, salt.ID: 7}
	for id, qty := range want {
		if got := env.stockOf(t, id); got != qty {
			t.Errorf("stock of %s = %d, want %d", id, got, qty)
		}
		env.assertLedgerBalanced(t, id)
	}
	if updated.Status != "corrected" {
		t.Errorf("status = %q", updated.Status)
	}
	if !updated.TotalAmount.Equal(dec("32")) {
		t.Errorf("total = %s, want 32", updated.TotalAmount)
	}
	if len(updated.Items) != 3 {
		t.Errorf("items = %d, want 3", len(updated.Items))
	}

	adjustments, err := env.txs.ListByReference(ctx, *model.PurchaseRef(purchase.ID))
	if err != nil {
		t.Fatalf("ListByReference: %v", err)
	}
	// two purchase receipts plus flour and salt adjustments; sugar nets to zero.
	if len(adjustments) != 4 {
		t.Errorf("movements = %d, want 4", len(adjustments))
	}
}

func TestUpdatePurchaseHeaderOnlyLeavesStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flour := env.newProduct(t, "flour", 0)
	purchase, err := env.purchase.CreatePurchase(ctx, env.actor, CreatePurchaseRequest{
		SupplierName: "Mill Co",
		TotalAmount:  dec("6"),
		Status:       "received",
		Items:        []PurchaseItemRequest{purchaseLine(flour.ID, 3)},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	notes := "late delivery"
	updated, err := env.purchase.UpdatePurchase(ctx, env.actor, purchase.ID, UpdatePurchaseRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("UpdatePurchase: %v", err)
	}
	if updated.Notes != notes || !updated.TotalAmount.Equal(dec("6")) {
		t.Errorf("header = %q / %s", updated.Notes, updated.TotalAmount)
	}
	if got := env.stockOf(t, flour.ID); got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}
}
