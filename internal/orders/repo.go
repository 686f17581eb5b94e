package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProductWithOptions(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("id = ?", productID).
		Take(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock takes qty units only while enough stock remains; zero affected rows
// means the product ran out or disappeared.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", orderID).
		Take(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionStatus moves the order from one status to another only if it is still in from.
func (r *repository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND order_status = ?", orderID, from).
		Update("order_status", to)
	return res.RowsAffected, res.Error
}

func (r *repository) CountOrderNumbersWithPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

func (r *repository) ListByBuyer(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var rows []models.Order
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if err := pagination.Apply(q, "", cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var rows []models.Order
	q := r.db.WithContext(ctx).Model(&models.Order{}).Where("store_id = ?", storeID)
	if err := pagination.Apply(q, "", cursor, limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
