package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartpos/internal/auth"
	"smartpos/internal/database"
	"smartpos/internal/logger"
	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/permission"
	"smartpos/internal/repository"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Kind       string          `json:"kind"`
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	db, err := database.NewConnection("sqlite", filepath.Join(t.TempDir(), "api.db"), log)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	txManager := repository.NewTransactionManager(db)
	roleRepo := repository.NewRoleRepository(db)
	productRepo := repository.NewProductRepository(db)
	txRepo := repository.NewInventoryTxRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	evaluator := permission.NewEvaluator(roleRepo, time.Minute)
	tokens := auth.NewTokenService("handler-secret", time.Minute, time.Hour)
	audit := service.NewAuditRecorder(repository.NewAuditRepository(db), log)
	ledger := service.NewStockLedger(productRepo, txRepo, nopNotifier{}, log)
	settings := service.NewSettingsService(repository.NewSettingRepository(db), txManager, audit)
	users := service.NewUserService(repository.NewUserRepository(db), tokens, audit, txManager)

	r := gin.New()
	api := r.Group("/api")
	g := Guards{Authenticate: middleware.Authenticate(users), Evaluator: evaluator}
	NewUserHandler(users, evaluator, middleware.CookieOptions{AccessTTL: time.Minute, RefreshTTL: time.Hour}).RegisterRoutes(api, g)
	NewProductHandler(service.NewProductService(productRepo, ledger, audit, txManager)).RegisterRoutes(api, g)
	NewPromotionHandler(service.NewPromotionService(repository.NewPromotionRepository(db), audit, txManager)).RegisterRoutes(api, g)
	NewSaleHandler(service.NewSaleService(saleRepo, customerRepo, ledger, audit, txManager, nopNotifier{}, log), settings).RegisterRoutes(api, g)
	return r
}

func call(t *testing.T, r http.Handler, method, path, token string, body any, headers ...string) (int, envelope, http.Header) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env, w.Header()
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func register(t *testing.T, r http.Handler, email, role string) string {
	t.Helper()
	code, env, _ := call(t, r, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "password123", "role": role,
	})
	if code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, code, env.Error)
	}
	code, env, _ = call(t, r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": email, "password": "password123",
	})
	if code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, code, env.Error)
	}
	var pair auth.TokenPair
	decodeData(t, env, &pair)
	return pair.AccessToken
}

func TestLoginAcceptsPasswordForm(t *testing.T) {
	r := newTestServer(t)
	register(t, r, "cashier@example.com", model.RoleEmployee)

	form := url.Values{"username": {"cashier@example.com"}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("form login = %d %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Errorf("login set no cookies")
	}
}

func TestMissingTokenChallenges(t *testing.T) {
	r := newTestServer(t)
	code, env, header := call(t, r, http.MethodGet, "/api/products", "", nil)
	if code != http.StatusUnauthorized || env.Kind != "unauthenticated" {
		t.Fatalf("got %d %+v", code, env)
	}
	if header.Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("WWW-Authenticate = %q", header.Get("WWW-Authenticate"))
	}
}

func TestCheckoutOverHTTP(t *testing.T) {
	r := newTestServer(t)
	admin := register(t, r, "owner@example.com", model.RoleAdmin)
	cashier := register(t, r, "cashier@example.com", model.RoleEmployee)

	productBody := map[string]any{"name": "cola", "price": "2.50", "stock_quantity": 4}
	if code, _, _ := call(t, r, http.MethodPost, "/api/products", cashier, productBody); code != http.StatusForbidden {
		t.Fatalf("employee create product = %d, want 403", code)
	}
	code, env, _ := call(t, r, http.MethodPost, "/api/products", admin, productBody)
	if code != http.StatusCreated {
		t.Fatalf("create product = %d %s", code, env.Error)
	}
	var product model.Product
	decodeData(t, env, &product)

	sale := map[string]any{
		"subtotal":       "5.00",
		"total_amount":   "5.00",
		"payment_method": model.PaymentCash,
		"items": []map[string]any{{
			"product_id": product.ID, "quantity": 2, "unit_price": "2.50", "total_price": "5.00",
		}},
	}
	var first, replay model.Sale
	code, env, _ = call(t, r, http.MethodPost, "/api/sales", cashier, sale, IdempotencyHeader, "till-1-0001")
	if code != http.StatusCreated {
		t.Fatalf("create sale = %d %s", code, env.Error)
	}
	decodeData(t, env, &first)
	code, env, _ = call(t, r, http.MethodPost, "/api/sales", cashier, sale, IdempotencyHeader, "till-1-0001")
	if code != http.StatusCreated {
		t.Fatalf("replay sale = %d %s", code, env.Error)
	}
	decodeData(t, env, &replay)
	if replay.ID != first.ID {
		t.Errorf("replay created sale %s, want %s", replay.ID, first.ID)
	}

	code, env, _ = call(t, r, http.MethodPost, "/api/sales", cashier, map[string]any{
		"subtotal": "12.50", "total_amount": "12.50", "payment_method": model.PaymentCash,
		"items": []map[string]any{{
			"product_id": product.ID, "quantity": 5, "unit_price": "2.50", "total_price": "12.50",
		}},
	})
	if code != http.StatusBadRequest || env.Kind != "insufficient_stock" {
		t.Errorf("oversell = %d %+v", code, env)
	}

	voidPath := "/api/sales/" + first.ID.String() + "/void"
	if code, _, _ := call(t, r, http.MethodPatch, voidPath, cashier, nil); code != http.StatusForbidden {
		t.Errorf("employee void = %d, want 403", code)
	}
	if code, env, _ := call(t, r, http.MethodPatch, voidPath, admin, nil); code != http.StatusOK {
		t.Fatalf("void = %d %s", code, env.Error)
	}
	if code, env, _ := call(t, r, http.MethodPatch, voidPath, admin, nil); code != http.StatusBadRequest || env.Kind != "invalid_state" {
		t.Errorf("second void = %d %+v", code, env)
	}

	code, env, _ = call(t, r, http.MethodGet, "/api/products/"+product.ID.String(), cashier, nil)
	if code != http.StatusOK {
		t.Fatalf("get product = %d %s", code, env.Error)
	}
	decodeData(t, env, &product)
	if product.StockQuantity != 4 {
		t.Errorf("stock after void = %d, want 4", product.StockQuantity)
	}
}

func TestBadPathIDIsInvalidInput(t *testing.T) {
	r := newTestServer(t)
	admin := register(t, r, "owner@example.com", model.RoleAdmin)
	code, env, _ := call(t, r, http.MethodGet, "/api/sales/not-a-uuid", admin, nil)
	if code != http.StatusBadRequest || env.Kind != "invalid_input" {
		t.Errorf("got %d %+v", code, env)
	}
}

func TestPromotionRoutesAreGuarded(t *testing.T) {
	r := newTestServer(t)
	admin := register(t, r, "owner@example.com", model.RoleAdmin)
	cashier := register(t, r, "cashier@example.com", model.RoleEmployee)

	body := map[string]any{
		"name": "Weekend", "type": "percentage", "value": "10",
		"start_date": "2024-06-01T00:00:00Z", "end_date": "2024-06-03T00:00:00Z",
	}
	if code, _, _ := call(t, r, http.MethodPost, "/api/promotions", cashier, body); code != http.StatusForbidden {
		t.Errorf("employee create promotion = %d, want 403", code)
	}
	code, env, _ := call(t, r, http.MethodPost, "/api/promotions", admin, body)
	if code != http.StatusCreated {
		t.Fatalf("create promotion = %d %s", code, env.Error)
	}
	var promo model.Promotion
	decodeData(t, env, &promo)

	if code, _, _ := call(t, r, http.MethodPatch, "/api/promotions/"+promo.ID.String(), cashier, map[string]any{"is_active": false}); code != http.StatusForbidden {
		t.Errorf("employee update promotion = %d, want 403", code)
	}
	code, env, _ = call(t, r, http.MethodGet, "/api/promotions", cashier, nil)
	if code != http.StatusOK {
		t.Fatalf("employee list promotions = %d %s", code, env.Error)
	}
	var promos []model.Promotion
	decodeData(t, env, &promos)
	if len(promos) != 1 || promos[0].Name != "Weekend" {
		t.Errorf("promotions = %+v", promos)
	}
}

func TestForgotPasswordAnswersUniformly(t *testing.T) {
	r := newTestServer(t)
	register(t, r, "cashier@example.com", model.RoleEmployee)

	var bodies []string
	for _, email := range []string{"cashier@example.com", "stranger@example.com"} {
		code, env, _ := call(t, r, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": email})
		if code != http.StatusOK {
			t.Fatalf("forgot-password %s = %d %s", email, code, env.Error)
		}
		bodies = append(bodies, string(env.Data))
	}
	if bodies[0] != bodies[1] {
		t.Errorf("responses differ: %s vs %s", bodies[0], bodies[1])
	}
	if !strings.Contains(bodies[0], ForgotPasswordMessage) {
		t.Errorf("response %s lacks the generic message", bodies[0])
	}

	if code, _, _ := call(t, r, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": "nope"}); code != http.StatusBadRequest {
		t.Errorf("malformed email = %d, want 400", code)
	}
}

func TestParseDate(t *testing.T) {
	day, err := parseDate("2024-03-01", true)
	if err != nil {
		t.Fatalf("parseDate: %v", err)
	}
	if want := time.Date(2024, 3, 1, 23, 59, 59, 999999999, time.UTC); !day.Equal(want) {
		t.Errorf("end of day = %v, want %v", day, want)
	}
	if got, err := parseDate("  ", false); got != nil || err != nil {
		t.Errorf("blank = %v, %v", got, err)
	}
	if _, err := parseDate("01/03/2024", false); err == nil {
		t.Errorf("expected error for unsupported layout")
	}
}
