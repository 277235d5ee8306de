package service

import (
	"context"
	"testing"

	"smartpos/internal/model"
)

func TestCreateProductBooksInitialStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 12)

	if cola.StockQuantity != 12 {
		t.Errorf("stock = %d, want 12", cola.StockQuantity)
	}
	env.assertLedgerBalanced(t, cola.ID)

	movements, err := env.txs.List(ctx, &cola.ID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(movements) != 1 || movements[0].TransactionType != model.TxTypeStockAdjustment || movements[0].QuantityChange != 12 {
		t.Errorf("unexpected opening movements: %+v", movements)
	}

	if n := env.notifier.count(EventStockUpdated); n != 1 {
		t.Errorf("stock.updated events after opening stock = %d, want 1", n)
	}

	empty := env.newProduct(t, "empty", 0)
	if movements, _ := env.txs.List(ctx, &empty.ID, 10); len(movements) != 0 {
		t.Errorf("zero opening stock booked %d movements", len(movements))
	}
	if n := env.notifier.count(EventStockUpdated); n != 1 {
		t.Errorf("zero opening stock published an event, total %d", n)
	}
}

func TestUpdateProductStockGoesThroughLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 10)

	stock := 4
	price := dec("12.50")
	updated, err := env.product.UpdateProduct(ctx, env.actor, cola.ID, UpdateProductRequest{StockQuantity: &stock, Price: &price})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.StockQuantity != 4 || !updated.Price.Equal(price) {
		t.Errorf("updated = stock %d price %s", updated.StockQuantity, updated.Price)
	}
	env.assertLedgerBalanced(t, cola.ID)

	name := "cola zero"
	if _, err := env.product.UpdateProduct(ctx, env.actor, cola.ID, UpdateProductRequest{Name: &name}); err != nil {
		t.Fatalf("UpdateProduct name: %v", err)
	}
	if got := env.stockOf(t, cola.ID); got != 4 {
		t.Errorf("metadata update changed stock to %d", got)
	}
	if n, _ := env.auditRepo.CountByRecord(ctx, model.TableProducts, cola.ID); n != 3 {
		t.Errorf("product audit entries = %d, want 3", n)
	}
}

func TestDeleteProductDeactivates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 3)
	env.newProduct(t, "chips", 3)

	if err := env.product.DeleteProduct(ctx, env.actor, cola.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	got, err := env.product.GetProduct(ctx, cola.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.IsActive {
		t.Errorf("product still active")
	}
	list, total, err := env.product.ListProducts(ctx, 1, 0, "")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].Name != "chips" {
		t.Errorf("list = %d items (total %d)", len(list), total)
	}
}

func TestLowStockReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	min := 5
	low, err := env.product.CreateProduct(ctx, env.actor, CreateProductRequest{
		Name: "milk", Price: dec("1"), StockQuantity: 3, MinStockLevel: &min,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	env.newProduct(t, "salt", 50)

	products, err := env.reports.LowStock(ctx)
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(products) != 1 || products[0].ID != low.ID {
		t.Errorf("low stock = %+v", products)
	}
	if env.notifier.count(EventStockUpdated) == 0 {
		t.Errorf("no stock.updated events published")
	}
}
