package repository

import (
	"context"
	"sort"
	"time"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error)
	ListLowStock(ctx context.Context) ([]model.Product, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]model.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindManyForUpdate(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return mapError(GetDB(ctx, r.db).Create(product).Error, "product")
}

// Update saves metadata only; stock_quantity belongs to the ledger.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return mapError(GetDB(ctx, r.db).Omit("stock_quantity").Save(product).Error, "product")
}

// Deactivate hides a product from the catalogue while keeping it for sale history.
func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return mapError(GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).Update("is_active", false).Error, "product")
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "product")
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{}).Where("is_active = ?", true)
	if search != "" {
		like := "%" + search + "%"
		db = db.Where("name LIKE ? OR sku LIKE ? OR barcode LIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, mapError(err, "products")
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, mapError(err, "products")
	}

	return products, total, nil
}

func (r *productRepository) ListLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := GetDB(ctx, r.db).
		Where("is_active = ? AND min_stock_level IS NOT NULL AND stock_quantity <= min_stock_level", true).
		Order("stock_quantity asc").
		Find(&products).Error
	return products, mapError(err, "products")
}

func (r *productRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]model.Product, error) {
	var products []model.Product
	err := GetDB(ctx, r.db).
		Where("is_active = ? AND expiration_date IS NOT NULL AND expiration_date <= ?", true, cutoff).
		Order("expiration_date asc").
		Find(&products).Error
	return products, mapError(err, "products")
}

func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return mapError(GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).Update("stock_quantity", stock).Error, "product")
}

func (r *productRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&product).Error; err != nil {
		return nil, mapError(err, "product")
	}
	return &product, nil
}

// FindManyForUpdate locks every listed product in ascending id order so that
// concurrent multi-product transactions always acquire locks the same way.
// Missing ids are simply absent from the result.
func (r *productRepository) FindManyForUpdate(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	ordered := SortedUniqueIDs(ids)
	result := make(map[uuid.UUID]*model.Product, len(ordered))
	if len(ordered) == 0 {
		return result, nil
	}

	var products []model.Product
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ordered).Order("id asc").Find(&products).Error; err != nil {
		return nil, mapError(err, "products")
	}
	for i := range products {
		result[products[i].ID] = &products[i]
	}
	return result, nil
}

// SortedUniqueIDs returns ids deduplicated in a stable order.
func SortedUniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
