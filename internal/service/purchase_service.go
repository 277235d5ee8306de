package service

import (
	"context"
	"time"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseItemRequest struct {
	ProductID  uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity   int             `json:"quantity" validate:"gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"money_gte0"`
	TotalPrice decimal.Decimal `json:"total_price" validate:"money_gte0"`
}

type CreatePurchaseRequest struct {
	SupplierName string                `json:"supplier_name" validate:"required"`
	TotalAmount  decimal.Decimal       `json:"total_amount" validate:"money_gte0"`
	PurchaseDate *time.Time            `json:"purchase_date"`
	Status       string                `json:"status" validate:"required"`
	Notes        string                `json:"notes"`
	Items        []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdatePurchaseRequest changes only the fields that are set. A non-nil Items
// replaces every line of the purchase.
type UpdatePurchaseRequest struct {
	Status *string                `json:"status"`
	Notes  *string                `json:"notes"`
	Items  *[]PurchaseItemRequest `json:"items" validate:"omitempty,dive"`
}

type PurchaseService struct {
	purchases repository.PurchaseRepository
	ledger    *StockLedger
	audit     *AuditRecorder
	txManager repository.TransactionManager
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	ledger *StockLedger,
	audit *AuditRecorder,
	txManager repository.TransactionManager,
) *PurchaseService {
	return &PurchaseService{purchases: purchases, ledger: ledger, audit: audit, txManager: txManager}
}

func (s *PurchaseService) CreatePurchase(ctx context.Context, actor uuid.UUID, req CreatePurchaseRequest) (*model.Purchase, error) {
	var (
		purchaseID uuid.UUID
		touched    []*model.Product
	)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.lockAll(txCtx, purchaseProductIDs(req.Items)); err != nil {
			return err
		}
		if err := validator.Check(req); err != nil {
			return err
		}

		purchase := &model.Purchase{
			SupplierName: req.SupplierName,
			TotalAmount:  req.TotalAmount,
			PurchaseDate: req.PurchaseDate,
			Status:       req.Status,
			Notes:        req.Notes,
			Items:        toPurchaseItems(req.Items),
		}
		if err := s.purchases.Create(txCtx, purchase); err != nil {
			return err
		}
		purchaseID = purchase.ID

		for _, item := range purchase.Items {
			product, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
				ProductID: item.ProductID,
				Delta:     item.Quantity,
				Type:      model.TxTypePurchase,
				Actor:     actor,
				Reference: model.PurchaseRef(purchase.ID),
			})
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}

		s.audit.Record(txCtx, actor, model.ActionCreate, model.TablePurchases, purchase.ID, nil, map[string]any{
			"supplier":     purchase.SupplierName,
			"total_amount": purchase.TotalAmount.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Announce(touched)
	return s.purchases.FindByID(ctx, purchaseID)
}

// UpdatePurchase applies a partial update. When lines are replaced the stock
// moves by the net per-product difference between old and new lines, and the
// header total becomes the sum of the new line totals.
func (s *PurchaseService) UpdatePurchase(ctx context.Context, actor, purchaseID uuid.UUID, req UpdatePurchaseRequest) (*model.Purchase, error) {
	var touched []*model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, err := s.purchases.FindByIDForUpdate(txCtx, purchaseID)
		if err != nil {
			return err
		}
		oldValues := map[string]any{
			"status":       purchase.Status,
			"notes":        purchase.Notes,
			"total_amount": purchase.TotalAmount.String(),
		}

		if req.Status != nil {
			purchase.Status = *req.Status
		}
		if req.Notes != nil {
			purchase.Notes = *req.Notes
		}

		if req.Items != nil {
			newItems := *req.Items
			if err := validator.Check(req); err != nil {
				return err
			}

			deltas := make(map[uuid.UUID]int)
			ids := make([]uuid.UUID, 0, len(purchase.Items)+len(newItems))
			for _, item := range purchase.Items {
				deltas[item.ProductID] -= item.Quantity
				ids = append(ids, item.ProductID)
			}
			total := decimal.Zero
			for _, item := range newItems {
				deltas[item.ProductID] += item.Quantity
				ids = append(ids, item.ProductID)
				total = total.Add(item.TotalPrice)
			}
			if err := s.lockAll(txCtx, ids); err != nil {
				return err
			}

			if err := s.purchases.ReplaceItems(txCtx, purchase.ID, toPurchaseItems(newItems)); err != nil {
				return err
			}
			purchase.TotalAmount = total

			for _, id := range repository.SortedUniqueIDs(ids) {
				delta := deltas[id]
				if delta == 0 {
					continue
				}
				product, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
					ProductID: id,
					Delta:     delta,
					Type:      model.TxTypePurchaseAdjustment,
					Actor:     actor,
					Reference: model.PurchaseRef(purchase.ID),
					Notes:     "Purchase update",
				})
				if err != nil {
					return err
				}
				touched = append(touched, product)
			}
		}

		if err := s.purchases.UpdateHeader(txCtx, purchase); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TablePurchases, purchase.ID, oldValues, map[string]any{
			"status":        purchase.Status,
			"notes":         purchase.Notes,
			"total_amount":  purchase.TotalAmount.String(),
			"items_updated": req.Items != nil,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Announce(touched)
	return s.purchases.FindByID(ctx, purchaseID)
}

func (s *PurchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return s.purchases.FindByID(ctx, id)
}

func (s *PurchaseService) ListPurchases(ctx context.Context) ([]model.Purchase, error) {
	return s.purchases.List(ctx, 200)
}

// lockAll locks ids in order and fails with InvalidInput when one is unknown.
func (s *PurchaseService) lockAll(ctx context.Context, ids []uuid.UUID) error {
	locked, err := s.ledger.LockProducts(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range repository.SortedUniqueIDs(ids) {
		if _, ok := locked[id]; !ok {
			return apperror.InvalidInput("product %s not found", id)
		}
	}
	return nil
}

func purchaseProductIDs(items []PurchaseItemRequest) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func toPurchaseItems(items []PurchaseItemRequest) []model.PurchaseItem {
	out := make([]model.PurchaseItem, 0, len(items))
	for _, item := range items {
		out = append(out, model.PurchaseItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return out
}
