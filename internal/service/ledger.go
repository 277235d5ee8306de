package service

import (
	"context"

	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AdjustStockInput describes one stock movement.
type AdjustStockInput struct {
	ProductID uuid.UUID
	Delta     int
	Type      string
	Actor     uuid.UUID
	Reference *model.Reference
	Notes     string
}

// StockLedger is the only writer of Product.StockQuantity. Every change is
// paired with an appended InventoryTransaction in the caller's transaction.
type StockLedger struct {
	products repository.ProductRepository
	txs      repository.InventoryTxRepository
	notifier Notifier
	log      *logrus.Logger
}

func NewStockLedger(
	products repository.ProductRepository,
	txs repository.InventoryTxRepository,
	notifier Notifier,
	log *logrus.Logger,
) *StockLedger {
	return &StockLedger{products: products, txs: txs, notifier: notifierOrNop(notifier), log: log}
}

// AdjustStock locks the product row, applies the delta unconditionally and
// appends the matching transaction. It must run inside RunInTx; it never commits.
// Sufficiency checks belong to the caller, under the same lock.
func (l *StockLedger) AdjustStock(ctx context.Context, in AdjustStockInput) (*model.Product, *model.InventoryTransaction, error) {
	product, err := l.products.FindByIDForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}

	product.StockQuantity += in.Delta
	if err := l.products.UpdateStock(ctx, product.ID, product.StockQuantity); err != nil {
		return nil, nil, err
	}

	tx := &model.InventoryTransaction{
		ProductID:       product.ID,
		QuantityChange:  in.Delta,
		StockAfter:      product.StockQuantity,
		TransactionType: in.Type,
		CreatedBy:       in.Actor,
		Notes:           in.Notes,
	}
	tx.SetReference(in.Reference)
	if err := l.txs.Create(ctx, tx); err != nil {
		return nil, nil, err
	}
	return product, tx, nil
}

// LockProducts locks ids in ascending order and returns them keyed by id.
// Ids that do not exist are absent from the map.
func (l *StockLedger) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	return l.products.FindManyForUpdate(ctx, ids)
}

// Announce publishes the committed stock of each product and warns about
// products at or below their minimum level. Call it only after commit.
func (l *StockLedger) Announce(products []*model.Product) {
	latest := make(map[uuid.UUID]*model.Product, len(products))
	order := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if _, ok := latest[p.ID]; !ok {
			order = append(order, p.ID)
		}
		latest[p.ID] = p
	}
	for _, id := range order {
		p := latest[id]
		l.notifier.Publish(EventStockUpdated, map[string]any{
			"product_id":     p.ID,
			"name":           p.Name,
			"stock_quantity": p.StockQuantity,
			"low_stock":      p.IsLowStock(),
		})
		if p.IsLowStock() {
			l.log.WithFields(logrus.Fields{
				"product_id":      p.ID,
				"sku":             p.SKU,
				"stock_quantity":  p.StockQuantity,
				"min_stock_level": *p.MinStockLevel,
			}).Warn("product at or below minimum stock level")
		}
	}
}
