package repository

import (
	"context"
	"time"

	"smart-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindLowStock(ctx context.Context) ([]model.Product, error)
	UpdateDetails(ctx context.Context, product *model.Product) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int, at time.Time, updatedBy string) (bool, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int, at time.Time, updatedBy string) (bool, error)
	DecrementStockFloored(ctx context.Context, id uuid.UUID, quantity int, at time.Time, updatedBy string) (bool, error)
	DeleteIfUnreferenced(ctx context.Context, id uuid.UUID) (bool, error)
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	TotalValuation(ctx context.Context) (decimal.Decimal, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Supplier", "StockMovements").Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Supplier").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Supplier").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindLowStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Supplier").
		Where("quantity_in_stock <= reorder_level").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

// UpdateDetails writes the descriptive columns only; quantity is owned by the ledger.
func (r *productRepo) UpdateDetails(ctx context.Context, product *model.Product) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":          product.Name,
			"category":      product.Category,
			"supplier_id":   product.SupplierID,
			"unit_price":    product.UnitPrice,
			"reorder_level": product.ReorderLevel,
			"last_updated":  product.LastUpdated,
			"updated_by":    product.UpdatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

// IncrementStock adds quantity in a single statement; false means no such product.
func (r *productRepo) IncrementStock(ctx context.Context, id uuid.UUID, quantity int, at time.Time, updatedBy string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity_in_stock": gorm.Expr("quantity_in_stock + ?", quantity),
			"last_updated":      at,
			"updated_by":        updatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

// DecrementStock subtracts quantity only when enough stock remains.
func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int, at time.Time, updatedBy string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND quantity_in_stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"quantity_in_stock": gorm.Expr("quantity_in_stock - ?", quantity),
			"last_updated":      at,
			"updated_by":        updatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

// DecrementStockFloored subtracts quantity, clamping the result at zero.
func (r *productRepo) DecrementStockFloored(ctx context.Context, id uuid.UUID, quantity int, at time.Time, updatedBy string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity_in_stock": gorm.Expr("CASE WHEN quantity_in_stock > ? THEN quantity_in_stock - ? ELSE 0 END", quantity, quantity),
			"last_updated":      at,
			"updated_by":        updatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

// DeleteIfUnreferenced removes the product only while no stock movement points at it.
func (r *productRepo) DeleteIfUnreferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		"DELETE FROM products WHERE id = ? AND NOT EXISTS (SELECT 1 FROM stock_movements WHERE product_id = ?)",
		id, id,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("supplier_id = ?", supplierID).Count(&n).Error
	return n, err
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

// TotalValuation is SUM(quantity_in_stock * unit_price) across all products.
func (r *productRepo) TotalValuation(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("COALESCE(SUM(quantity_in_stock * unit_price), 0)").
		Row().Scan(&total)
	return total.Round(2), err
}
