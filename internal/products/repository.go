package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// Repository persists products and their options.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to a GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateProduct inserts the product row. Options are written separately.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Options").Create(product).Error
}

// CreateOptions inserts the option rows for a product.
func (r *Repository) CreateOptions(ctx context.Context, options []models.ProductOption) error {
	if len(options) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&options).Error
}

// ReplaceOptions swaps every option of productID for the provided set.
func (r *Repository) ReplaceOptions(ctx context.Context, productID uuid.UUID, options []models.ProductOption) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductOption{}).Error; err != nil {
		return err
	}
	return r.CreateOptions(ctx, options)
}

// FindByID loads a live product with its options.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("kind ASC").Order("price ASC").Order("created_at ASC")
		}).
		Where("id = ?", id).
		Take(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct writes the editable columns. like_count is owned by the likes service.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Select("name", "description", "sale_price", "stock", "visibility_status").
		Updates(product).Error
}

// SoftDelete marks the product deleted. It reports how many rows changed.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected, res.Error
}

// ListByStore returns one buffered page of enabled, live products.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ? AND visibility_status = ?", storeID, enums.ProductVisibilityEnable)
	q = pagination.Apply(q, "", cursor, limit)

	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
