// Package orders places pickup orders and drives their PENDING → CONFIRMED lifecycle.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
	dbpkg "github.com/sweetorder/sweetorder-backend/pkg/db"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/metrics"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox/payloads"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// Postgres reports the constraint name, SQLite the column.
var orderNumberConstraints = []string{"orders_order_number_key", "orders.order_number"}

type txRunner interface {
	WithTxOptions(ctx context.Context, opts dbpkg.TxOptions, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type storeGuard interface {
	Store(ctx context.Context, storeID, callerID uuid.UUID) (*models.Store, error)
}

// Service defines order operations for buyers and sellers.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*CreateOrderResult, error)
	UpdateOrderStatus(ctx context.Context, callerID, orderID uuid.UUID, status string) (*UpdateOrderStatusResult, error)
	GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error)
	ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error)
	ListStoreOrders(ctx context.Context, callerID, storeID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error)
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Guard   storeGuard
	Numbers NumberGenerator
	Config  config.OrdersConfig
	Metrics *metrics.OrderMetrics
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	guard   storeGuard
	numbers NumberGenerator
	cfg     config.OrdersConfig
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("ownership guard required")
	}
	numbers := params.Numbers
	if numbers == nil {
		numbers = NewNumberGenerator(params.Config.NumberPrefix, nil, 0, params.Repo)
	}
	now := params.Now
	if now == nil {
		now = dbpkg.UTCNow
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		guard:   params.Guard,
		numbers: numbers,
		cfg:     params.Config,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (result *CreateOrderResult, err error) {
	defer func() { s.metrics.IncCreated(resultLabel(err)) }()

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.repo.FindProductWithOptions(ctx, input.ProductID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	quote, err := BuildQuote(product, input)
	if err != nil {
		return nil, err
	}

	attempts := s.cfg.NumberMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		result, err = s.placeOrder(ctx, userID, quote, input.Pickup)
		if err == nil {
			return result, nil
		}
		if !isOrderNumberCollision(err) {
			return nil, err
		}
		if attempt >= attempts {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate an order number, retry the request")
		}
	}
}

func (s *service) placeOrder(ctx context.Context, userID uuid.UUID, quote *Quote, pickup PickupAddress) (*CreateOrderResult, error) {
	var order *models.Order
	opts := dbpkg.TxOptions{Timeout: s.cfg.TxTimeout}
	err := s.tx.WithTxOptions(ctx, opts, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.DecrementStock(ctx, quote.ProductID, quote.TotalQuantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
		}

		number, err := s.numbers.Next(ctx, tx, s.now())
		if err != nil {
			return err
		}
		order = quote.toModel(userID, number, pickup)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				BuyerID:       userID,
				StoreID:       order.StoreID,
				ProductID:     order.ProductID,
				TotalQuantity: order.TotalQuantity,
				TotalPrice:    order.TotalPrice,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &CreateOrderResult{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		OrderStatus: order.OrderStatus,
		TotalPrice:  order.TotalPrice,
	}, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, callerID, orderID uuid.UUID, status string) (result *UpdateOrderStatusResult, err error) {
	target, parseErr := enums.ParseOrderStatus(status)
	defer func() { s.metrics.IncTransition(string(target), resultLabel(err)) }()
	if parseErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid order status")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot revert confirmed order")
	}
	if _, err := s.guard.Store(ctx, order.StoreID, callerID); err != nil {
		return nil, err
	}
	if order.OrderStatus == target {
		return &UpdateOrderStatusResult{ID: order.ID}, nil
	}

	err = s.tx.WithTxOptions(ctx, dbpkg.TxOptions{Timeout: s.cfg.TxTimeout}, func(tx *gorm.DB) error {
		affected, err := s.repo.WithTx(tx).TransitionStatus(ctx, order.ID, order.OrderStatus, target)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: callerID, Role: string(enums.UserRoleSeller)},
			Data: payloads.OrderConfirmedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				BuyerID:     order.UserID,
				StoreID:     order.StoreID,
				ConfirmedAt: s.now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &UpdateOrderStatusResult{ID: order.ID}, nil
}

func (s *service) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID {
		if _, err := s.guard.Store(ctx, order.StoreID, callerID); err != nil {
			return nil, err
		}
	}
	dto := toOrderDTO(*order)
	return &dto, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderDTO]{}, err
	}
	rows, err := s.repo.ListByBuyer(ctx, userID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list buyer orders")
	}
	return toOrderPage(rows, params.Limit), nil
}

func (s *service) ListStoreOrders(ctx context.Context, callerID, storeID uuid.UUID, params pagination.Params) (pagination.Page[OrderDTO], error) {
	if _, err := s.guard.Store(ctx, storeID, callerID); err != nil {
		return pagination.Page[OrderDTO]{}, err
	}
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderDTO]{}, err
	}
	rows, err := s.repo.ListByStore(ctx, storeID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list store orders")
	}
	return toOrderPage(rows, params.Limit), nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func toOrderPage(rows []models.Order, limit int) pagination.Page[OrderDTO] {
	page := pagination.Build(rows, limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := pagination.Page[OrderDTO]{
		Items:      make([]OrderDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, row := range page.Items {
		out.Items = append(out.Items, toOrderDTO(row))
	}
	return out
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}

func isOrderNumberCollision(err error) bool {
	for _, name := range orderNumberConstraints {
		if dbpkg.IsUniqueViolation(err, name) {
			return true
		}
	}
	return false
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		return metrics.ResultConflict
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return metrics.ResultNotFound
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation), pkgerrors.IsCode(err, pkgerrors.CodeForbidden):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
