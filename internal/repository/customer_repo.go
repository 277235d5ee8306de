package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	SaveAggregates(ctx context.Context, customer *model.Customer) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return mapError(GetDB(ctx, r.db).Create(customer).Error, "customer")
}

// Update saves profile fields; sale-derived aggregates are left alone.
func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	err := GetDB(ctx, r.db).Omit("total_purchases", "loyalty_points", "last_purchase_date").Save(customer).Error
	return mapError(err, "customer")
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "customer")
	}
	return &customer, nil
}

func (r *customerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, mapError(err, "customer")
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := GetDB(ctx, r.db).Order("name asc").Find(&customers).Error
	return customers, mapError(err, "customers")
}

// SaveAggregates writes the sale-derived fields only.
func (r *customerRepository) SaveAggregates(ctx context.Context, customer *model.Customer) error {
	err := GetDB(ctx, r.db).Model(&model.Customer{}).Where("id = ?", customer.ID).
		Updates(map[string]any{
			"total_purchases":    customer.TotalPurchases,
			"loyalty_points":     customer.LoyaltyPoints,
			"last_purchase_date": customer.LastPurchaseDate,
		}).Error
	return mapError(err, "customer")
}
