package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// totalTolerance is the allowed gap between the header total and the sum of line totals.
var totalTolerance = decimal.RequireFromString("0.01")

type SaleItemRequest struct {
	ProductID      uuid.UUID        `json:"product_id" validate:"uuid_required"`
	Quantity       int              `json:"quantity" validate:"gt=0"`
	UnitPrice      decimal.Decimal  `json:"unit_price" validate:"money_gte0"`
	DiscountAmount *decimal.Decimal `json:"discount_amount" validate:"money_gte0"`
	TotalPrice     decimal.Decimal  `json:"total_price" validate:"money_gte0"`
}

type CreateSaleRequest struct {
	CustomerID     *uuid.UUID        `json:"customer_id"`
	Subtotal       decimal.Decimal   `json:"subtotal" validate:"money_gte0"`
	TaxAmount      *decimal.Decimal  `json:"tax_amount" validate:"money_gte0"`
	DiscountAmount *decimal.Decimal  `json:"discount_amount" validate:"money_gte0"`
	TotalAmount    decimal.Decimal   `json:"total_amount" validate:"money_gte0"`
	PaymentMethod  string            `json:"payment_method" validate:"oneof=cash card mobile other"`
	PaymentStatus  *string           `json:"payment_status" validate:"omitempty,oneof=paid pending refunded"`
	PointsRedeemed int               `json:"points_redeemed" validate:"gte=0"`
	Notes          string            `json:"notes"`
	IdempotencyKey *string           `json:"idempotency_key" validate:"omitempty,max=128"`
	Items          []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SaleService struct {
	sales     repository.SaleRepository
	customers repository.CustomerRepository
	ledger    *StockLedger
	audit     *AuditRecorder
	txManager repository.TransactionManager
	notifier  Notifier
	log       *logrus.Logger
	now       func() time.Time
}

func NewSaleService(
	sales repository.SaleRepository,
	customers repository.CustomerRepository,
	ledger *StockLedger,
	audit *AuditRecorder,
	txManager repository.TransactionManager,
	notifier Notifier,
	log *logrus.Logger,
) *SaleService {
	return &SaleService{
		sales:     sales,
		customers: customers,
		ledger:    ledger,
		audit:     audit,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
		log:       log,
		now:       time.Now,
	}
}

// CreateSale records a checkout in one unit of work: stock, audit, customer
// aggregates and loyalty points commit together or not at all. A request
// whose idempotency key already exists returns the stored sale unchanged.
// loyalty is the resolved program, nil when disabled.
func (s *SaleService) CreateSale(ctx context.Context, actor uuid.UUID, req CreateSaleRequest, loyalty *LoyaltySettings) (*model.Sale, error) {
	key := normalizeKey(req.IdempotencyKey)

	var (
		saleID  uuid.UUID
		replay  bool
		touched []*model.Product
	)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if key != nil {
			existing, err := s.sales.FindByIdempotencyKey(txCtx, *key)
			if err == nil {
				saleID, replay = existing.ID, true
				return nil
			}
			if !apperror.Is(err, apperror.KindNotFound) {
				return err
			}
		}

		if err := s.checkStock(txCtx, req.Items); err != nil {
			return err
		}
		if err := validateSale(req); err != nil {
			return err
		}

		var customer *model.Customer
		if req.CustomerID != nil {
			c, err := s.customers.FindByIDForUpdate(txCtx, *req.CustomerID)
			if apperror.Is(err, apperror.KindNotFound) {
				return apperror.InvalidInput("customer %s not found", *req.CustomerID)
			}
			if err != nil {
				return err
			}
			customer = c
		}

		sale := s.buildSale(actor, key, req, loyalty != nil && customer != nil)
		if err := s.sales.Create(txCtx, sale); err != nil {
			return err
		}
		saleID = sale.ID

		for _, item := range sale.Items {
			product, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
				ProductID: item.ProductID,
				Delta:     -item.Quantity,
				Type:      model.TxTypeSale,
				Actor:     actor,
				Reference: model.SaleRef(sale.ID),
			})
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}

		s.audit.Record(txCtx, actor, model.ActionCreate, model.TableSales, sale.ID, nil, saleAuditValues(sale))

		if customer != nil {
			return s.applyCustomerPurchase(txCtx, customer, sale, loyalty)
		}
		return nil
	})
	if err != nil {
		if key != nil && apperror.Is(err, apperror.KindConflict) {
			// A concurrent request with the same key won the insert.
			if existing, findErr := s.sales.FindByIdempotencyKey(ctx, *key); findErr == nil {
				return s.sales.FindByID(ctx, existing.ID)
			}
		}
		return nil, err
	}

	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if replay {
		s.log.WithFields(logrus.Fields{"sale_id": sale.ID, "idempotency_key": *key}).Info("idempotent sale replayed")
		return sale, nil
	}

	s.ledger.Announce(touched)
	s.notifier.Publish(EventSaleCreated, map[string]any{
		"sale_id":      sale.ID,
		"sale_number":  sale.SaleNumber,
		"total_amount": sale.TotalAmount,
	})
	return sale, nil
}

// checkStock locks every referenced product in id order and verifies that
// the summed quantity per product is available.
func (s *SaleService) checkStock(ctx context.Context, items []SaleItemRequest) error {
	ids := make([]uuid.UUID, 0, len(items))
	required := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
		required[item.ProductID] += item.Quantity
	}

	locked, err := s.ledger.LockProducts(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range repository.SortedUniqueIDs(ids) {
		product, ok := locked[id]
		if !ok {
			return apperror.InvalidInput("product %s not found", id)
		}
		if product.StockQuantity < required[id] {
			return apperror.InsufficientStock("insufficient stock for product %s", product.Name)
		}
	}
	return nil
}

func validateSale(req CreateSaleRequest) error {
	var sum decimal.Decimal
	for _, item := range req.Items {
		sum = sum.Add(item.TotalPrice)
	}
	if sum.Sub(req.TotalAmount).Abs().GreaterThan(totalTolerance) {
		return apperror.InvalidInput("total amount does not match sum of item totals")
	}
	return validator.Check(req)
}

func (s *SaleService) buildSale(actor uuid.UUID, key *string, req CreateSaleRequest, redeem bool) *model.Sale {
	now := s.now().UTC()
	sale := &model.Sale{
		SaleNumber:     generateSaleNumber(now),
		IdempotencyKey: key,
		CashierID:      actor,
		CustomerID:     req.CustomerID,
		Subtotal:       req.Subtotal,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		TotalAmount:    req.TotalAmount,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  req.PaymentStatus,
		Status:         model.SaleStatusCompleted,
		Notes:          req.Notes,
		SaleDate:       now,
		Items:          make([]model.SaleItem, 0, len(req.Items)),
	}
	if redeem {
		sale.PointsRedeemed = req.PointsRedeemed
	}
	for _, item := range req.Items {
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.DiscountAmount,
			TotalPrice:     item.TotalPrice,
		})
	}
	return sale
}

// applyCustomerPurchase adds the sale to the customer's aggregates. Points are
// redeemed before accrual, and accrual uses the subtotal so discounts and tax
// do not earn points.
func (s *SaleService) applyCustomerPurchase(ctx context.Context, customer *model.Customer, sale *model.Sale, loyalty *LoyaltySettings) error {
	customer.TotalPurchases = customer.TotalPurchases.Add(sale.TotalAmount)
	purchasedAt := sale.SaleDate
	customer.LastPurchaseDate = &purchasedAt

	if loyalty != nil {
		if sale.PointsRedeemed > 0 {
			if customer.LoyaltyPoints < sale.PointsRedeemed {
				return apperror.InsufficientPoints("insufficient loyalty points, available: %d", customer.LoyaltyPoints)
			}
			customer.LoyaltyPoints -= sale.PointsRedeemed
		}
		customer.LoyaltyPoints += loyalty.PointsFor(sale.Subtotal)
	}
	return s.customers.SaveAggregates(ctx, customer)
}

// VoidSale reverses a completed sale. Loyalty points are left as they are;
// only the customer's total_purchases is reversed.
func (s *SaleService) VoidSale(ctx context.Context, actor, saleID uuid.UUID) (*model.Sale, error) {
	var touched []*model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.sales.FindByIDForUpdate(txCtx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == model.SaleStatusVoided {
			return apperror.InvalidState("sale already voided")
		}
		if err := s.sales.UpdateStatus(txCtx, sale.ID, model.SaleStatusVoided); err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(sale.Items))
		for _, item := range sale.Items {
			ids = append(ids, item.ProductID)
		}
		if _, err := s.ledger.LockProducts(txCtx, ids); err != nil {
			return err
		}
		for _, item := range sale.Items {
			product, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
				ProductID: item.ProductID,
				Delta:     item.Quantity,
				Type:      model.TxTypeSaleVoid,
				Actor:     actor,
				Reference: model.SaleRef(sale.ID),
				Notes:     "Voiding sale " + sale.SaleNumber,
			})
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}

		s.audit.Record(txCtx, actor, model.ActionVoid, model.TableSales, sale.ID, nil, map[string]any{
			"status":      model.SaleStatusVoided,
			"sale_number": sale.SaleNumber,
		})

		if sale.CustomerID == nil {
			return nil
		}
		customer, err := s.customers.FindByIDForUpdate(txCtx, *sale.CustomerID)
		if apperror.Is(err, apperror.KindNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		customer.TotalPurchases = customer.TotalPurchases.Sub(sale.TotalAmount)
		return s.customers.SaveAggregates(txCtx, customer)
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.ledger.Announce(touched)
	s.notifier.Publish(EventSaleVoided, map[string]any{"sale_id": sale.ID, "sale_number": sale.SaleNumber})
	return sale, nil
}

func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return s.sales.FindByID(ctx, id)
}

// ListSales returns the newest sales first; limit is clamped to [1, 200].
func (s *SaleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = 50
	case filter.Limit > 200:
		filter.Limit = 200
	}
	return s.sales.List(ctx, filter)
}

// generateSaleNumber renders SALE-YYYYMMDD-HHMMSS-XXXXXX.
func generateSaleNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("SALE-%s-%s", at.UTC().Format("20060102-150405"), suffix)
}

func normalizeKey(key *string) *string {
	if key == nil {
		return nil
	}
	k := strings.TrimSpace(*key)
	if k == "" {
		return nil
	}
	return &k
}

func saleAuditValues(sale *model.Sale) map[string]any {
	items := make([]map[string]any, 0, len(sale.Items))
	for _, item := range sale.Items {
		total, _ := item.TotalPrice.Float64()
		items = append(items, map[string]any{
			"product_id": item.ProductID.String(),
			"qty":        item.Quantity,
			"total":      total,
		})
	}
	return map[string]any{
		"sale_number":  sale.SaleNumber,
		"total_amount": sale.TotalAmount.String(),
		"items":        items,
	}
}
