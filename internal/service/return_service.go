package service

import (
	"context"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateReturnRequest struct {
	SaleID       uuid.UUID       `json:"sale_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int             `json:"quantity" validate:"gt=0"`
	Reason       string          `json:"reason"`
	RefundAmount decimal.Decimal `json:"refund_amount" validate:"money_gte0"`
	Status       *string         `json:"status" validate:"omitempty,max=50"`
}

type UpdateReturnRequest struct {
	Status *string `json:"status"`
}

type ReturnService struct {
	returns   repository.ReturnRepository
	sales     repository.SaleRepository
	ledger    *StockLedger
	audit     *AuditRecorder
	txManager repository.TransactionManager
}

func NewReturnService(
	returns repository.ReturnRepository,
	sales repository.SaleRepository,
	ledger *StockLedger,
	audit *AuditRecorder,
	txManager repository.TransactionManager,
) *ReturnService {
	return &ReturnService{returns: returns, sales: sales, ledger: ledger, audit: audit, txManager: txManager}
}

// CreateReturn puts goods back on the shelf against a sale line. The quantity
// is not capped by the quantity originally sold.
func (s *ReturnService) CreateReturn(ctx context.Context, actor uuid.UUID, req CreateReturnRequest) (*model.Return, error) {
	var (
		ret     *model.Return
		touched *model.Product
	)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.sales.FindByID(txCtx, req.SaleID); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return apperror.InvalidInput("sale not found")
			}
			return err
		}
		locked, err := s.ledger.LockProducts(txCtx, []uuid.UUID{req.ProductID})
		if err != nil {
			return err
		}
		if _, ok := locked[req.ProductID]; !ok {
			return apperror.InvalidInput("product not found")
		}
		sold, err := s.sales.HasItem(txCtx, req.SaleID, req.ProductID)
		if err != nil {
			return err
		}
		if !sold {
			return apperror.InvalidInput("product not in sale")
		}
		// Field checks run after the reference checks.
		if err := validator.Check(req); err != nil {
			return err
		}

		status := model.ReturnStatusPending
		if req.Status != nil && *req.Status != "" {
			status = *req.Status
		}
		ret = &model.Return{
			SaleID:       req.SaleID,
			ProductID:    req.ProductID,
			ProcessedBy:  actor,
			Quantity:     req.Quantity,
			Reason:       req.Reason,
			RefundAmount: req.RefundAmount,
			Status:       status,
		}
		if err := s.returns.Create(txCtx, ret); err != nil {
			return err
		}

		product, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
			ProductID: req.ProductID,
			Delta:     req.Quantity,
			Type:      model.TxTypeReturn,
			Actor:     actor,
			Reference: model.ReturnRef(ret.ID),
		})
		if err != nil {
			return err
		}
		touched = product

		s.audit.Record(txCtx, actor, model.ActionCreate, model.TableReturns, ret.ID, nil, map[string]any{
			"sale_id":    req.SaleID.String(),
			"product_id": req.ProductID.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.ledger.Announce([]*model.Product{touched})
	return ret, nil
}

// UpdateReturn changes the free-form status only.
func (s *ReturnService) UpdateReturn(ctx context.Context, actor, returnID uuid.UUID, req UpdateReturnRequest) (*model.Return, error) {
	var ret *model.Return
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		ret, err = s.returns.FindByID(txCtx, returnID)
		if err != nil {
			return err
		}
		oldStatus := ret.Status
		if req.Status != nil {
			ret.Status = *req.Status
			if err := s.returns.UpdateStatus(txCtx, ret.ID, ret.Status); err != nil {
				return err
			}
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableReturns, ret.ID,
			map[string]any{"status": oldStatus},
			map[string]any{"status": ret.Status})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*model.Return, error) {
	return s.returns.FindByID(ctx, id)
}

func (s *ReturnService) ListReturns(ctx context.Context) ([]model.Return, error) {
	return s.returns.List(ctx, 200)
}
