package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"smartpos/internal/apperror"
	"smartpos/internal/auth"
	"smartpos/internal/database"
	"smartpos/internal/logger"
	"smartpos/internal/model"
	"smartpos/internal/permission"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordedEvent struct {
	name string
	data any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{name: event, data: data})
}

func (n *recordingNotifier) count(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.name == name {
			c++
		}
	}
	return c
}

// testEnv wires every service against a throwaway SQLite database.
type testEnv struct {
	db        *gorm.DB
	actor     uuid.UUID
	notifier  *recordingNotifier
	evaluator *permission.Evaluator

	products  repository.ProductRepository
	txs       repository.InventoryTxRepository
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	auditRepo repository.AuditRepository

	ledger    *StockLedger
	audit     *AuditRecorder
	settings  *SettingsService
	sale      *SaleService
	purchase  *PurchaseService
	returns   *ReturnService
	inventory *InventoryService
	product   *ProductService
	customer  *CustomerService
	users     UserService
	roles     RoleService
	reports   ReportService
	promos    *PromotionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()
	db, err := database.NewConnection("sqlite", filepath.Join(t.TempDir(), "pos.db"), log)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{db: db, notifier: &recordingNotifier{}}
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	env.products = repository.NewProductRepository(db)
	env.txs = repository.NewInventoryTxRepository(db)
	env.customers = repository.NewCustomerRepository(db)
	env.sales = repository.NewSaleRepository(db)
	env.auditRepo = repository.NewAuditRepository(db)

	env.evaluator = permission.NewEvaluator(roleRepo, time.Minute)
	tokens := auth.NewTokenService("test-secret", time.Minute, time.Hour)

	env.audit = NewAuditRecorder(env.auditRepo, log)
	env.ledger = NewStockLedger(env.products, env.txs, env.notifier, log)
	env.settings = NewSettingsService(repository.NewSettingRepository(db), txManager, env.audit)
	env.sale = NewSaleService(env.sales, env.customers, env.ledger, env.audit, txManager, env.notifier, log)
	env.purchase = NewPurchaseService(repository.NewPurchaseRepository(db), env.ledger, env.audit, txManager)
	env.returns = NewReturnService(repository.NewReturnRepository(db), env.sales, env.ledger, env.audit, txManager)
	env.inventory = NewInventoryService(repository.NewInventoryCountRepository(db), env.txs, env.ledger, env.audit, txManager)
	env.product = NewProductService(env.products, env.ledger, env.audit, txManager)
	env.customer = NewCustomerService(env.customers, env.sales, env.audit, txManager)
	env.users = NewUserService(userRepo, tokens, env.audit, txManager)
	env.roles = NewRoleService(roleRepo, env.evaluator, env.audit, txManager)
	env.promos = NewPromotionService(repository.NewPromotionRepository(db), env.audit, txManager)
	env.reports = NewReportService(repository.NewReportRepository(db), env.products, env.customers, txManager, log)

	admin, err := env.users.Register(context.Background(), RegisterRequest{
		Email:    "admin@example.com",
		Password: "correct-horse",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register actor: %v", err)
	}
	env.actor = admin.ID
	return env
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *testEnv) newProduct(t *testing.T, name string, stock int) *model.Product {
	t.Helper()
	p, err := e.product.CreateProduct(context.Background(), e.actor, CreateProductRequest{
		Name:          name,
		SKU:           name + "-sku",
		Price:         dec("10.00"),
		StockQuantity: stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.StockQuantity
}

// assertLedgerBalanced checks that stock equals the sum of recorded movements.
func (e *testEnv) assertLedgerBalanced(t *testing.T, id uuid.UUID) {
	t.Helper()
	sum, err := e.txs.SumByProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("sum ledger: %v", err)
	}
	if stock := e.stockOf(t, id); stock != sum {
		t.Fatalf("stock %d does not match ledger sum %d", stock, sum)
	}
}

func (e *testEnv) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func sellRequest(items ...SaleItemRequest) CreateSaleRequest {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return CreateSaleRequest{
		Subtotal:      total,
		TotalAmount:   total,
		PaymentMethod: model.PaymentCash,
		Items:         items,
	}
}

func line(p *model.Product, qty int) SaleItemRequest {
	total := p.Price.Mul(decimal.NewFromInt(int64(qty)))
	return SaleItemRequest{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price, TotalPrice: total}
}

func wantKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}
