package ownership

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweetorder/sweetorder-backend/pkg/db/dbtest"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
)

func TestGuardStore(t *testing.T) {
	conn := dbtest.Open(t)
	owner := dbtest.SeedUser(t, conn, enums.UserRoleSeller)
	other := dbtest.SeedUser(t, conn, enums.UserRoleSeller)
	store := dbtest.SeedStore(t, conn, owner.ID)
	guard := NewGuard(conn)
	ctx := context.Background()

	got, err := guard.Store(ctx, store.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, store.ID, got.ID)

	_, err = guard.Store(ctx, store.ID, other.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = guard.Store(ctx, uuid.New(), owner.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGuardProduct(t *testing.T) {
	conn := dbtest.Open(t)
	owner := dbtest.SeedUser(t, conn, enums.UserRoleSeller)
	other := dbtest.SeedUser(t, conn, enums.UserRoleUser)
	store := dbtest.SeedStore(t, conn, owner.ID)
	product := dbtest.SeedProduct(t, conn, store.ID, 5)
	guard := NewGuard(conn)
	ctx := context.Background()

	got, err := guard.Product(ctx, product.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, store.ID, got.StoreID)

	_, err = guard.Product(ctx, product.ID, other.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	require.NoError(t, conn.Delete(&models.Product{}, "id = ?", product.ID).Error)
	_, err = guard.Product(ctx, product.ID, owner.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "soft-deleted products are not found")
}

func TestGuardFeedAndOrder(t *testing.T) {
	conn := dbtest.Open(t)
	owner := dbtest.SeedUser(t, conn, enums.UserRoleSeller)
	buyer := dbtest.SeedUser(t, conn, enums.UserRoleUser)
	store := dbtest.SeedStore(t, conn, owner.ID)
	product := dbtest.SeedProduct(t, conn, store.ID, 5)

	feed := models.Feed{StoreID: store.ID, Title: "new menu", Content: "strawberry"}
	require.NoError(t, conn.Create(&feed).Error)
	order := models.Order{
		OrderNumber:   "ORD-20250301-001",
		UserID:        buyer.ID,
		StoreID:       store.ID,
		ProductID:     product.ID,
		TotalQuantity: 1,
		TotalPrice:    30000,
		PickupAddress: "1 Cake St",
		OrderStatus:   enums.OrderStatusPending,
	}
	require.NoError(t, conn.Create(&order).Error)

	guard := NewGuard(conn)
	ctx := context.Background()

	_, err := guard.Feed(ctx, feed.ID, owner.ID)
	require.NoError(t, err)
	_, err = guard.Feed(ctx, feed.ID, buyer.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	_, err = guard.Feed(ctx, uuid.New(), owner.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = guard.Order(ctx, order.ID, owner.ID)
	require.NoError(t, err)
	_, err = guard.Order(ctx, order.ID, buyer.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "buyers do not own the store")
	_, err = guard.Order(ctx, uuid.New(), owner.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGuardRejectsNilCaller(t *testing.T) {
	conn := dbtest.Open(t)
	owner := dbtest.SeedUser(t, conn, enums.UserRoleSeller)
	store := dbtest.SeedStore(t, conn, owner.ID)

	_, err := NewGuard(conn).Store(context.Background(), store.ID, uuid.Nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
