package service

import (
	"context"
	"testing"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
)

func TestCreateCountReconcilesStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 10)

	count, err := env.inventory.CreateCount(ctx, env.actor, CreateCountRequest{
		ProductID:     &cola.ID,
		PhysicalCount: 7,
		SystemCount:   10,
		Status:        "completed",
	})
	if err != nil {
		t.Fatalf("CreateCount: %v", err)
	}
	if count.Difference != -3 {
		t.Errorf("difference = %d, want -3", count.Difference)
	}
	if got := env.stockOf(t, cola.ID); got != 7 {
		t.Errorf("stock = %d, want 7", got)
	}
	env.assertLedgerBalanced(t, cola.ID)

	movements, err := env.txs.ListByReference(ctx, *model.InventoryCountRef(count.ID))
	if err != nil {
		t.Fatalf("ListByReference: %v", err)
	}
	if len(movements) != 1 || movements[0].QuantityChange != -3 || movements[0].TransactionType != model.TxTypeStockAdjustment {
		t.Errorf("unexpected reconciliation movements: %+v", movements)
	}
}

func TestCreateCountMatchingStockBooksNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 4)

	diff := 99
	count, err := env.inventory.CreateCount(ctx, env.actor, CreateCountRequest{
		ProductID:     &cola.ID,
		PhysicalCount: 4,
		SystemCount:   4,
		Difference:    &diff,
		Status:        "completed",
	})
	if err != nil {
		t.Fatalf("CreateCount: %v", err)
	}
	if count.Difference != 99 {
		t.Errorf("explicit difference overwritten: %d", count.Difference)
	}
	movements, _ := env.txs.ListByReference(ctx, *model.InventoryCountRef(count.ID))
	if len(movements) != 0 {
		t.Errorf("movements = %d, want 0", len(movements))
	}
}

func TestUpdateCountRecomputesDifferenceOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 10)
	count, err := env.inventory.CreateCount(ctx, env.actor, CreateCountRequest{
		ProductID: &cola.ID, PhysicalCount: 8, SystemCount: 10, Status: "draft",
	})
	if err != nil {
		t.Fatalf("CreateCount: %v", err)
	}

	physical := 12
	updated, err := env.inventory.UpdateCount(ctx, env.actor, count.ID, UpdateCountRequest{PhysicalCount: &physical})
	if err != nil {
		t.Fatalf("UpdateCount: %v", err)
	}
	if updated.Difference != 2 {
		t.Errorf("difference = %d, want 2", updated.Difference)
	}
	// The stock stays at the value reconciled on creation.
	if got := env.stockOf(t, cola.ID); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}

	if err := env.inventory.DeleteCount(ctx, env.actor, count.ID); err != nil {
		t.Fatalf("DeleteCount: %v", err)
	}
	_, err = env.inventory.UpdateCount(ctx, env.actor, count.ID, UpdateCountRequest{PhysicalCount: &physical})
	wantKind(t, err, apperror.KindNotFound)
}

func TestCreateTransaction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 5)

	tx, err := env.inventory.CreateTransaction(ctx, env.actor, CreateTransactionRequest{
		ProductID:      cola.ID,
		QuantityChange: -2,
		Notes:          "breakage",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.TransactionType != model.TxTypeManual || tx.StockAfter != 3 {
		t.Errorf("tx = %+v", tx)
	}
	env.assertLedgerBalanced(t, cola.ID)

	_, err = env.inventory.CreateTransaction(ctx, env.actor, CreateTransactionRequest{ProductID: cola.ID})
	wantKind(t, err, apperror.KindInvalidInput)

	_, err = env.inventory.CreateTransaction(ctx, env.actor, CreateTransactionRequest{
		ProductID: cola.ID, QuantityChange: 1, TransactionType: "teleport",
	})
	wantKind(t, err, apperror.KindInvalidInput)

	listed, err := env.inventory.ListTransactions(ctx, &cola.ID, 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("transactions = %d, want 2 (initial stock and manual)", len(listed))
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct{ in, want int }{{0, 200}, {-5, 200}, {30, 30}, {900, 500}}
	for _, tc := range cases {
		if got := clampLimit(tc.in, 200, 500); got != tc.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
