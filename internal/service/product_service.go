package service

import (
	"context"
	"time"

	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Description    string           `json:"description"`
	SKU            string           `json:"sku" validate:"max=100"`
	Barcode        string           `json:"barcode" validate:"max=100"`
	Category       string           `json:"category"`
	Price          decimal.Decimal  `json:"price" validate:"money_gte0"`
	Cost           *decimal.Decimal `json:"cost" validate:"money_gte0"`
	StockQuantity  int              `json:"stock_quantity" validate:"gte=0"`
	MinStockLevel  *int             `json:"min_stock_level" validate:"omitempty,gte=0"`
	Unit           string           `json:"unit"`
	ExpirationDate *time.Time       `json:"expiration_date"`
}

// UpdateProductRequest is a partial update; nil fields are left alone.
// A new StockQuantity is applied as a stock_adjustment through the ledger.
type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description    *string          `json:"description"`
	SKU            *string          `json:"sku" validate:"omitempty,max=100"`
	Barcode        *string          `json:"barcode" validate:"omitempty,max=100"`
	Category       *string          `json:"category"`
	Price          *decimal.Decimal `json:"price" validate:"money_gte0"`
	Cost           *decimal.Decimal `json:"cost" validate:"money_gte0"`
	StockQuantity  *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	MinStockLevel  *int             `json:"min_stock_level" validate:"omitempty,gte=0"`
	Unit           *string          `json:"unit"`
	IsActive       *bool            `json:"is_active"`
	ExpirationDate *time.Time       `json:"expiration_date"`
}

type ProductService struct {
	products  repository.ProductRepository
	ledger    *StockLedger
	audit     *AuditRecorder
	txManager repository.TransactionManager
}

func NewProductService(
	products repository.ProductRepository,
	ledger *StockLedger,
	audit *AuditRecorder,
	txManager repository.TransactionManager,
) *ProductService {
	return &ProductService{products: products, ledger: ledger, audit: audit, txManager: txManager}
}

// CreateProduct stores the product with zero stock and books any opening
// quantity as a stock_adjustment, so the ledger always sums to the stock.
func (s *ProductService) CreateProduct(ctx context.Context, actor uuid.UUID, req CreateProductRequest) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:           req.Name,
		Description:    req.Description,
		SKU:            req.SKU,
		Barcode:        req.Barcode,
		Category:       req.Category,
		Price:          req.Price,
		Cost:           req.Cost,
		MinStockLevel:  req.MinStockLevel,
		Unit:           req.Unit,
		IsActive:       true,
		ExpirationDate: req.ExpirationDate,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.products.Create(txCtx, product); err != nil {
			return err
		}
		if req.StockQuantity > 0 {
			adjusted, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
				ProductID: product.ID,
				Delta:     req.StockQuantity,
				Type:      model.TxTypeStockAdjustment,
				Actor:     actor,
				Reference: &model.Reference{Kind: model.RefManual, ID: product.ID},
				Notes:     "Initial stock",
			})
			if err != nil {
				return err
			}
			product.StockQuantity = adjusted.StockQuantity
		}
		s.audit.Record(txCtx, actor, model.ActionCreate, model.TableProducts, product.ID, nil, map[string]any{
			"name":  product.Name,
			"price": product.Price.String(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req.StockQuantity > 0 {
		s.ledger.Announce([]*model.Product{product})
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, actor, productID uuid.UUID, req UpdateProductRequest) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.products.FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return err
		}
		oldValues := map[string]any{
			"name":           product.Name,
			"price":          product.Price.String(),
			"stock_quantity": product.StockQuantity,
			"cost":           decimalString(product.Cost),
		}
		newValues := applyProductUpdate(product, req)

		if err := s.products.Update(txCtx, product); err != nil {
			return err
		}
		if req.StockQuantity != nil {
			if delta := *req.StockQuantity - product.StockQuantity; delta != 0 {
				adjusted, _, err := s.ledger.AdjustStock(txCtx, AdjustStockInput{
					ProductID: product.ID,
					Delta:     delta,
					Type:      model.TxTypeStockAdjustment,
					Actor:     actor,
					Reference: &model.Reference{Kind: model.RefManual, ID: product.ID},
					Notes:     "Product update",
				})
				if err != nil {
					return err
				}
				product.StockQuantity = adjusted.StockQuantity
			}
			newValues["stock_quantity"] = *req.StockQuantity
		}

		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableProducts, product.ID, oldValues, newValues)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req.StockQuantity != nil {
		s.ledger.Announce([]*model.Product{product})
	}
	return product, nil
}

func applyProductUpdate(p *model.Product, req UpdateProductRequest) map[string]any {
	changed := map[string]any{}
	if req.Name != nil {
		p.Name = *req.Name
		changed["name"] = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
		changed["description"] = *req.Description
	}
	if req.SKU != nil {
		p.SKU = *req.SKU
		changed["sku"] = *req.SKU
	}
	if req.Barcode != nil {
		p.Barcode = *req.Barcode
		changed["barcode"] = *req.Barcode
	}
	if req.Category != nil {
		p.Category = *req.Category
		changed["category"] = *req.Category
	}
	if req.Price != nil {
		p.Price = *req.Price
		changed["price"] = req.Price.String()
	}
	if req.Cost != nil {
		p.Cost = req.Cost
		changed["cost"] = req.Cost.String()
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = req.MinStockLevel
		changed["min_stock_level"] = *req.MinStockLevel
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
		changed["unit"] = *req.Unit
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
		changed["is_active"] = *req.IsActive
	}
	if req.ExpirationDate != nil {
		p.ExpirationDate = req.ExpirationDate
		changed["expiration_date"] = req.ExpirationDate.Format(time.RFC3339)
	}
	return changed
}

// DeleteProduct deactivates the product; sales and movements keep pointing at it.
func (s *ProductService) DeleteProduct(ctx context.Context, actor, productID uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.products.FindByIDForUpdate(txCtx, productID); err != nil {
			return err
		}
		if err := s.products.Deactivate(txCtx, productID); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionDelete, model.TableProducts, productID,
			map[string]any{"is_active": true},
			map[string]any{"is_active": false})
		return nil
	})
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	return s.products.List(ctx, page, clampLimit(limit, 100, 500), search)
}

// ExpiringWithin lists active products expiring in the next monthsAhead
// months (30 days each, at least one).
func (s *ProductService) ExpiringWithin(ctx context.Context, monthsAhead int) ([]model.Product, error) {
	if monthsAhead < 1 {
		monthsAhead = 1
	}
	return s.products.ListExpiringBefore(ctx, time.Now().AddDate(0, 0, 30*monthsAhead))
}

func decimalString(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
