package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and the stock they consume.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProductWithOptions(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (int64, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error)
	CountOrderNumbersWithPrefix(ctx context.Context, prefix string) (int64, error)
	ListByBuyer(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
}
