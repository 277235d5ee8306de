package service

import (
	"context"
	"time"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
)

type CreateCountRequest struct {
	ProductID     *uuid.UUID `json:"product_id"`
	PhysicalCount int        `json:"physical_count"`
	SystemCount   int        `json:"system_count"`
	Difference    *int       `json:"difference"`
	Status        string     `json:"status" binding:"required"`
	CountDate     *time.Time `json:"count_date"`
}

type UpdateCountRequest struct {
	PhysicalCount *int       `json:"physical_count"`
	SystemCount   *int       `json:"system_count"`
	Difference    *int       `json:"difference"`
	Status        *string    `json:"status"`
	CountDate     *time.Time `json:"count_date"`
}

type CreateTransactionRequest struct {
	ProductID       uuid.UUID  `json:"product_id" binding:"required"`
	QuantityChange  int        `json:"quantity_change"`
	TransactionType string     `json:"transaction_type"`
	ReferenceID     *uuid.UUID `json:"reference_id"`
	ReferenceType   *string    `json:"reference_type"`
	Notes           string     `json:"notes"`
}

var manualTxTypes = map[string]bool{
	model.TxTypeManual:             true,
	model.TxTypeStockAdjustment:    true,
	model.TxTypePurchase:           true,
	model.TxTypePurchaseAdjustment: true,
	model.TxTypeReturn:             true,
	model.TxTypeSale:               true,
	model.TxTypeSaleVoid:           true,
}

// InventoryService owns stock-takes and manual ledger entries.
type InventoryService struct {
	counts    repository.InventoryCountRepository
	txs       repository.InventoryTxRepository
	ledger    *StockLedger
	audit     *AuditRecorder
	txManager repository.TransactionManager
}

func NewInventoryService(
	counts repository.InventoryCountRepository,
	txs repository.InventoryTxRepository,
	ledger *StockLedger,
	audit *AuditRecorder,
	txManager repository.TransactionManager,
) *InventoryService {
	return &InventoryService{counts: counts, txs: txs, ledger: ledger, audit: audit, txManager: txManager}
}

// CreateCount records a stock-take. When a product is linked its stock is
// reconciled to the physical count through a stock_adjustment.
func (s *InventoryService) CreateCount(ctx context.Context, actor uuid.UUID, req CreateCountRequest) (*model.InventoryCount, error) {
	if req.Status == "" {
		return nil, apperror.InvalidInput("status is required")
	}
	count := &model.InventoryCount{
		Identity:      model.Identity{ID: uuid.New()},
		ProductID:     req.ProductID,
		PhysicalCount: req.PhysicalCount,
		SystemCount:   req.SystemCount,
		Status:        req.Status,
		CountDate:     req.CountDate,
	}
	if req.Difference != nil {
		count.Difference = *req.Difference
	} else {
		count.Difference = req.PhysicalCount - req.SystemCount
	}

	var touched *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.ProductID != nil {
			locked, err := s.ledger.LockProducts(txCtx, []uuid.UUID{*req.ProductID})
			if err != nil {
				return err
			}
			product, ok := locked[*req.ProductID]
			if !ok {
				return apperror.InvalidInput("product not found")
			}
			if delta := req.PhysicalCount - product.StockQuantity; delta != 0 {
				adjusted, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
					ProductID: product.ID,
					Delta:     delta,
					Type:      model.TxTypeStockAdjustment,
					Actor:     actor,
					Reference: model.InventoryCountRef(count.ID),
					Notes:     "Reconciliation",
				})
				if err != nil {
					return err
				}
				touched = adjusted
			}
		}

		if err := s.counts.Create(txCtx, count); err != nil {
			return err
		}

		var productID any
		if req.ProductID != nil {
			productID = req.ProductID.String()
		}
		s.audit.Record(txCtx, actor, model.ActionCreate, model.TableInventoryCounts, count.ID, nil, map[string]any{
			"product_id": productID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if touched != nil {
		s.ledger.Announce([]*model.Product{touched})
	}
	return count, nil
}

// UpdateCount edits a stock-take. Difference is recomputed when either count
// changes; stock is not adjusted again.
func (s *InventoryService) UpdateCount(ctx context.Context, actor, countID uuid.UUID, req UpdateCountRequest) (*model.InventoryCount, error) {
	var count *model.InventoryCount
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		count, err = s.counts.FindByID(txCtx, countID)
		if err != nil {
			return err
		}
		oldValues := map[string]any{"physical_count": count.PhysicalCount, "status": count.Status}
		newValues := map[string]any{}

		if req.PhysicalCount != nil {
			count.PhysicalCount = *req.PhysicalCount
			newValues["physical_count"] = *req.PhysicalCount
		}
		if req.SystemCount != nil {
			count.SystemCount = *req.SystemCount
			newValues["system_count"] = *req.SystemCount
		}
		if req.Difference != nil {
			count.Difference = *req.Difference
			newValues["difference"] = *req.Difference
		}
		if req.Status != nil {
			count.Status = *req.Status
			newValues["status"] = *req.Status
		}
		if req.CountDate != nil {
			count.CountDate = req.CountDate
			newValues["count_date"] = *req.CountDate
		}
		if req.PhysicalCount != nil || req.SystemCount != nil {
			count.Difference = count.PhysicalCount - count.SystemCount
		}

		if err := s.counts.Update(txCtx, count); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableInventoryCounts, count.ID, oldValues, newValues)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return count, nil
}

func (s *InventoryService) DeleteCount(ctx context.Context, actor, countID uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		count, err := s.counts.FindByID(txCtx, countID)
		if err != nil {
			return err
		}
		productID := "None"
		if count.ProductID != nil {
			productID = count.ProductID.String()
		}
		s.audit.Record(txCtx, actor, model.ActionDelete, model.TableInventoryCounts, count.ID,
			map[string]any{"product_id": productID, "status": count.Status}, nil)
		return s.counts.Delete(txCtx, count.ID)
	})
}

func (s *InventoryService) ListCounts(ctx context.Context, limit int) ([]model.InventoryCount, error) {
	return s.counts.List(ctx, clampLimit(limit, 200, 500))
}

// CreateTransaction applies a manual stock movement.
func (s *InventoryService) CreateTransaction(ctx context.Context, actor uuid.UUID, req CreateTransactionRequest) (*model.InventoryTransaction, error) {
	txType := req.TransactionType
	if txType == "" {
		txType = model.TxTypeManual
	}
	if !manualTxTypes[txType] {
		return nil, apperror.InvalidInput("unknown transaction type %q", txType)
	}

	var ref *model.Reference
	if req.ReferenceID != nil {
		kind := model.RefManual
		if req.ReferenceType != nil {
			kind = model.ReferenceKind(*req.ReferenceType)
		}
		if !kind.Valid() {
			return nil, apperror.InvalidInput("unknown reference type %q", kind)
		}
		ref = &model.Reference{Kind: kind, ID: *req.ReferenceID}
	}

	var (
		tx      *model.InventoryTransaction
		touched *model.Product
	)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		locked, err := s.ledger.LockProducts(txCtx, []uuid.UUID{req.ProductID})
		if err != nil {
			return err
		}
		if _, ok := locked[req.ProductID]; !ok {
			return apperror.InvalidInput("product not found")
		}
		if req.QuantityChange == 0 {
			return apperror.InvalidInput("quantity change cannot be zero")
		}

		touched, tx, err = s.ledger.AdjustStock(txCtx, AdjustStockInput{
			ProductID: req.ProductID,
			Delta:     req.QuantityChange,
			Type:      txType,
			Actor:     actor,
			Reference: ref,
			Notes:     req.Notes,
		})
		if err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionCreate, model.TableInventoryTransactions, tx.ID, nil, map[string]any{
			"delta": req.QuantityChange,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Announce([]*model.Product{touched})
	return tx, nil
}

func (s *InventoryService) ListTransactions(ctx context.Context, productID *uuid.UUID, limit int) ([]model.InventoryTransaction, error) {
	return s.txs.List(ctx, productID, clampLimit(limit, 200, 500))
}

// clampLimit maps limit into [1, max], using def when limit is unset.
func clampLimit(limit, def, max int) int {
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	}
	return limit
}
