package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/modvice/shopstock/internal/domain"
)

// ProductRepository handles product persistence.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// DecrementStock atomically applies `quantity = quantity - qty` guarded
	// by `quantity >= qty`. Returns ErrInsufficientStock when the guard
	// rejects the update (no row matched).
	DecrementStock(ctx context.Context, id int64, qty int) error

	// AdjustStock applies an unguarded signed delta to the quantity.
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// SaleRepository handles ledger persistence.
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
	Delete(ctx context.Context, id int64) error
}

// ReorderRepository handles reorder suggestion persistence.
type ReorderRepository interface {
	// GetPending returns the open request for a product, or ErrNotFoundPending.
	GetPending(ctx context.Context, productID int64) (*domain.ReorderRequest, error)

	// Create inserts a Pending request. A duplicate-key rejection from the
	// partial unique index must be returned as ErrPendingExists.
	Create(ctx context.Context, req *domain.ReorderRequest) error
}

// Internal repository sentinels, never surfaced past the service.
var (
	ErrNotFoundPending = errors.New("no pending reorder request")
	ErrPendingExists   = errors.New("pending reorder request already exists")
)

// GormProductRepository is the GORM implementation of ProductRepository.
type GormProductRepository struct {
	DB *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{DB: db}
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	return &p, nil
}

func (r *GormProductRepository) DecrementStock(ctx context.Context, id int64, qty int) error {
	res := r.DB.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *GormProductRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	res := r.DB.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "adjust stock")
	}
	return nil
}

// GormSaleRepository is the GORM implementation of SaleRepository.
type GormSaleRepository struct {
	DB *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{DB: db}
}

func (r *GormSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	if err := r.DB.WithContext(ctx).Create(sale).Error; err != nil {
		return errors.Wrap(err, "create sale")
	}
	return nil
}

func (r *GormSaleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	var s domain.Sale
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query sale")
	}
	return &s, nil
}

func (r *GormSaleRepository) Delete(ctx context.Context, id int64) error {
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sale{}).Error; err != nil {
		return errors.Wrap(err, "delete sale")
	}
	return nil
}

// GormReorderRepository is the GORM implementation of ReorderRepository.
type GormReorderRepository struct {
	DB *gorm.DB
}

func NewGormReorderRepository(db *gorm.DB) *GormReorderRepository {
	return &GormReorderRepository{DB: db}
}

func (r *GormReorderRepository) GetPending(ctx context.Context, productID int64) (*domain.ReorderRequest, error) {
	var req domain.ReorderRequest
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, domain.ReorderPending).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFoundPending
	}
	if err != nil {
		return nil, errors.Wrap(err, "query pending reorder")
	}
	return &req, nil
}

func (r *GormReorderRepository) Create(ctx context.Context, req *domain.ReorderRequest) error {
	err := r.DB.WithContext(ctx).Create(req).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
		return ErrPendingExists
	}
	return errors.Wrap(err, "create reorder request")
}
