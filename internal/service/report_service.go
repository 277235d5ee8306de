package service

import (
	"context"
	"time"

	"smartpos/internal/model"
	"smartpos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ReportService interface {
	SalesSummary(ctx context.Context, start, end *time.Time) (*model.SalesSummary, error)
	LowStock(ctx context.Context) ([]model.Product, error)
	RecalculateCustomers(ctx context.Context) (int, error)
}

type reportService struct {
	reports   repository.ReportRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	txManager repository.TransactionManager
	log       *logrus.Logger
}

func NewReportService(
	reports repository.ReportRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	txManager repository.TransactionManager,
	log *logrus.Logger,
) ReportService {
	return &reportService{reports: reports, products: products, customers: customers, txManager: txManager, log: log}
}

// SalesSummary aggregates completed sales within [start, end]; nil bounds are open.
func (s *reportService) SalesSummary(ctx context.Context, start, end *time.Time) (*model.SalesSummary, error) {
	summary := &model.SalesSummary{Start: start, End: end}

	revenue, count, err := s.reports.SalesTotals(ctx, model.SaleStatusCompleted, start, end)
	if err != nil {
		return nil, err
	}
	summary.Revenue, summary.SalesCount = revenue.Round(2), count

	if _, summary.VoidedCount, err = s.reports.SalesTotals(ctx, model.SaleStatusVoided, start, end); err != nil {
		return nil, err
	}

	value, products, err := s.reports.InventoryValue(ctx)
	if err != nil {
		return nil, err
	}
	summary.InventoryValue, summary.TotalProducts = value.Round(2), products

	if summary.TopProducts, err = s.reports.TopProducts(ctx, start, end, 5); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *reportService) LowStock(ctx context.Context) ([]model.Product, error) {
	return s.products.ListLowStock(ctx)
}

// RecalculateCustomers rebuilds total_purchases and last_purchase_date from
// the non-voided sales. Loyalty points are left as they are. Customers with
// no remaining sales are reset to zero.
func (s *reportService) RecalculateCustomers(ctx context.Context) (int, error) {
	updated := 0
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		totals, err := s.reports.CustomerTotals(txCtx)
		if err != nil {
			return err
		}
		replayed := make(map[string]repository.CustomerTotals, len(totals))
		for _, t := range totals {
			replayed[t.CustomerID.String()] = t
		}

		customers, err := s.customers.List(txCtx)
		if err != nil {
			return err
		}
		for i := range customers {
			c := &customers[i]
			t, ok := replayed[c.ID.String()]
			if !ok {
				t = repository.CustomerTotals{CustomerID: c.ID, TotalPurchases: decimal.Zero}
			}
			if c.TotalPurchases.Equal(t.TotalPurchases) && sameTime(c.LastPurchaseDate, t.LastPurchaseDate) {
				continue
			}
			c.TotalPurchases = t.TotalPurchases
			c.LastPurchaseDate = t.LastPurchaseDate
			if err := s.customers.SaveAggregates(txCtx, c); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.WithField("customers_updated", updated).Info("customer aggregates recalculated")
	return updated, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
