package service

import (
	"context"
	"testing"

	"smartpos/internal/apperror"
)

func TestCustomerHistoryIncludesVoided(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 10)
	ada, err := env.customer.CreateCustomer(ctx, env.actor, CreateCustomerRequest{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	req := sellRequest(line(cola, 1))
	req.CustomerID = &ada.ID
	first, err := env.sale.CreateSale(ctx, env.actor, req, nil)
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if _, err := env.sale.CreateSale(ctx, env.actor, req, nil); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if _, err := env.sale.VoidSale(ctx, env.actor, first.ID); err != nil {
		t.Fatalf("VoidSale: %v", err)
	}

	history, err := env.customer.History(ctx, ada.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history = %d sales, want 2", len(history))
	}
}

func TestUpdateCustomerKeepsAggregates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cola := env.newProduct(t, "cola", 10)
	ada, err := env.customer.CreateCustomer(ctx, env.actor, CreateCustomerRequest{Name: "Ada"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	req := sellRequest(line(cola, 2))
	req.CustomerID = &ada.ID
	if _, err := env.sale.CreateSale(ctx, env.actor, req, nil); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	phone := "555-0100"
	updated, err := env.customer.UpdateCustomer(ctx, env.actor, ada.ID, UpdateCustomerRequest{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.Phone != phone || !updated.TotalPurchases.Equal(dec("20")) {
		t.Errorf("updated = phone %q total %s", updated.Phone, updated.TotalPurchases)
	}

	bad := "not-an-email"
	_, err = env.customer.UpdateCustomer(ctx, env.actor, ada.ID, UpdateCustomerRequest{Email: &bad})
	wantKind(t, err, apperror.KindInvalidInput)
}
