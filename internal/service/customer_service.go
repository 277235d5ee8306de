package service

import (
	"context"

	"smartpos/internal/model"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	Name               string           `json:"name" validate:"required,max=255"`
	Phone              string           `json:"phone" validate:"max=30"`
	Email              string           `json:"email" validate:"omitempty,email"`
	Address            string           `json:"address"`
	CustomerType       string           `json:"customer_type"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage" validate:"money_gte0"`
}

type UpdateCustomerRequest struct {
	Name               *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Phone              *string          `json:"phone" validate:"omitempty,max=30"`
	Email              *string          `json:"email" validate:"omitempty,email"`
	Address            *string          `json:"address"`
	CustomerType       *string          `json:"customer_type"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage" validate:"money_gte0"`
	IsActive           *bool            `json:"is_active"`
}

// CustomerService manages customer profiles. Purchase totals and loyalty
// points are owned by the sale flow and cannot be edited here.
type CustomerService struct {
	customers repository.CustomerRepository
	sales     repository.SaleRepository
	audit     *AuditRecorder
	txManager repository.TransactionManager
}

func NewCustomerService(
	customers repository.CustomerRepository,
	sales repository.SaleRepository,
	audit *AuditRecorder,
	txManager repository.TransactionManager,
) *CustomerService {
	return &CustomerService{customers: customers, sales: sales, audit: audit, txManager: txManager}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, actor uuid.UUID, req CreateCustomerRequest) (*model.Customer, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	customer := &model.Customer{
		Name:               req.Name,
		Phone:              req.Phone,
		Email:              req.Email,
		Address:            req.Address,
		CustomerType:       req.CustomerType,
		DiscountPercentage: req.DiscountPercentage,
		IsActive:           true,
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customers.Create(txCtx, customer); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionCreate, model.TableCustomers, customer.ID, nil, map[string]any{
			"name":  customer.Name,
			"email": customer.Email,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, actor, customerID uuid.UUID, req UpdateCustomerRequest) (*model.Customer, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	var customer *model.Customer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		customer, err = s.customers.FindByIDForUpdate(txCtx, customerID)
		if err != nil {
			return err
		}
		oldValues := map[string]any{
			"name":          customer.Name,
			"phone":         customer.Phone,
			"email":         customer.Email,
			"customer_type": customer.CustomerType,
		}
		newValues := map[string]any{}
		if req.Name != nil {
			customer.Name = *req.Name
			newValues["name"] = *req.Name
		}
		if req.Phone != nil {
			customer.Phone = *req.Phone
			newValues["phone"] = *req.Phone
		}
		if req.Email != nil {
			customer.Email = *req.Email
			newValues["email"] = *req.Email
		}
		if req.Address != nil {
			customer.Address = *req.Address
			newValues["address"] = *req.Address
		}
		if req.CustomerType != nil {
			customer.CustomerType = *req.CustomerType
			newValues["customer_type"] = *req.CustomerType
		}
		if req.DiscountPercentage != nil {
			customer.DiscountPercentage = req.DiscountPercentage
			newValues["discount_percentage"] = req.DiscountPercentage.String()
		}
		if req.IsActive != nil {
			customer.IsActive = *req.IsActive
			newValues["is_active"] = *req.IsActive
		}
		if err := s.customers.Update(txCtx, customer); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableCustomers, customer.ID, oldValues, newValues)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customers.List(ctx)
}

// History lists every sale of the customer, voided ones included, newest first.
func (s *CustomerService) History(ctx context.Context, customerID uuid.UUID) ([]model.Sale, error) {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.sales.List(ctx, repository.SaleFilter{CustomerID: &customerID, Limit: 500})
}
