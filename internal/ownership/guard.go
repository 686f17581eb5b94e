// Package ownership resolves whether a caller owns the store behind a seller resource.
package ownership

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/sweetorder/sweetorder-backend/pkg/db"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
)

// Guard loads resources together with their owning store and rejects callers that
// do not own that store. It never writes.
type Guard struct {
	db *gorm.DB
}

// NewGuard builds a guard reading through db.
func NewGuard(db *gorm.DB) *Guard {
	return &Guard{db: db}
}

// WithTx returns a guard that reads inside tx.
func (g *Guard) WithTx(tx *gorm.DB) *Guard {
	return &Guard{db: tx}
}

// Store returns the store when callerID owns it.
func (g *Guard) Store(ctx context.Context, storeID, callerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := g.db.WithContext(ctx).Where("id = ?", storeID).Take(&store).Error; err != nil {
		return nil, notFoundOr(err, "store not found", "load store")
	}
	if err := requireOwner(store.UserID, callerID); err != nil {
		return nil, err
	}
	return &store, nil
}

// Product returns the live product when callerID owns its store.
func (g *Guard) Product(ctx context.Context, productID, callerID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := g.db.WithContext(ctx).Where("id = ?", productID).Take(&product).Error; err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	if err := g.storeOwnedBy(ctx, product.StoreID, callerID); err != nil {
		return nil, err
	}
	return &product, nil
}

// Feed returns the feed when callerID owns its store.
func (g *Guard) Feed(ctx context.Context, feedID, callerID uuid.UUID) (*models.Feed, error) {
	var feed models.Feed
	if err := g.db.WithContext(ctx).Where("id = ?", feedID).Take(&feed).Error; err != nil {
		return nil, notFoundOr(err, "feed not found", "load feed")
	}
	if err := g.storeOwnedBy(ctx, feed.StoreID, callerID); err != nil {
		return nil, err
	}
	return &feed, nil
}

// Order returns the order when callerID owns the store it was placed with.
func (g *Guard) Order(ctx context.Context, orderID, callerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := g.db.WithContext(ctx).Where("id = ?", orderID).Take(&order).Error; err != nil {
		return nil, notFoundOr(err, "order not found", "load order")
	}
	if err := g.storeOwnedBy(ctx, order.StoreID, callerID); err != nil {
		return nil, err
	}
	return &order, nil
}

// StoreOwner returns the owner id of storeID.
func (g *Guard) StoreOwner(ctx context.Context, storeID uuid.UUID) (uuid.UUID, error) {
	var store models.Store
	err := g.db.WithContext(ctx).
		Select("id", "user_id").
		Where("id = ?", storeID).
		Take(&store).Error
	if err != nil {
		return uuid.Nil, notFoundOr(err, "store not found", "load store owner")
	}
	return store.UserID, nil
}

func (g *Guard) storeOwnedBy(ctx context.Context, storeID, callerID uuid.UUID) error {
	owner, err := g.StoreOwner(ctx, storeID)
	if err != nil {
		return err
	}
	return requireOwner(owner, callerID)
}

func requireOwner(ownerID, callerID uuid.UUID) error {
	if callerID == uuid.Nil || ownerID != callerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller does not own this store")
	}
	return nil
}

func notFoundOr(err error, notFound, op string) error {
	if dbpkg.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
