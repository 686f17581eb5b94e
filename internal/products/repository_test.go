package product

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/internal/ownership"
	"github.com/sweetorder/sweetorder-backend/pkg/db/dbtest"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

type fixture struct {
	svc    Service
	conn   *gorm.DB
	seller models.User
	store  models.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(conn),
		Tx:     client,
		Guard:  ownership.NewGuard(conn),
		Outbox: outbox.NewService(outbox.NewRepository(conn), nil),
	})
	require.NoError(t, err)

	seller := dbtest.SeedUser(t, conn, enums.UserRoleSeller)
	store := dbtest.SeedStore(t, conn, seller.ID)
	return fixture{svc: svc, conn: conn, seller: seller, store: store}
}

func cakeInput() CreateProductInput {
	return CreateProductInput{
		Name:      "Strawberry Cake",
		SalePrice: 30000,
		Stock:     5,
		Options: []OptionInput{
			{Kind: "SIZE", Label: "1호"},
			{Kind: "SIZE", Label: "2호", Price: 5000},
			{Kind: "FLAVOR", Label: "vanilla"},
		},
	}
}

func TestCreateProductWithOptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateProduct(ctx, f.seller.ID, f.store.ID, cakeInput())
	require.NoError(t, err)
	assert.Equal(t, enums.ProductVisibilityEnable, created.VisibilityStatus)
	assert.Len(t, created.SizeOptions, 2)
	assert.Len(t, created.FlavorOptions, 1)

	loaded, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Strawberry Cake", loaded.Name)
	require.Len(t, loaded.SizeOptions, 2)
	assert.Equal(t, "1호", loaded.SizeOptions[0].Label)
	assert.Equal(t, int64(5000), loaded.SizeOptions[1].Price)
}

func TestCreateProductRequiresStoreOwnership(t *testing.T) {
	f := newFixture(t)
	stranger := dbtest.SeedUser(t, f.conn, enums.UserRoleSeller)

	_, err := f.svc.CreateProduct(context.Background(), stranger.ID, f.store.ID, cakeInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.CreateProduct(context.Background(), f.seller.ID, uuid.New(), cakeInput())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	var n int64
	require.NoError(t, f.conn.Model(&models.Product{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateProductReplacesOptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, f.seller.ID, f.store.ID, cakeInput())
	require.NoError(t, err)

	stock := int64(9)
	options := []OptionInput{{Kind: "SIZE", Label: "3호", Price: 9000}, {Kind: "FLAVOR", Label: "matcha", Price: 2000}}
	updated, err := f.svc.UpdateProduct(ctx, f.seller.ID, created.ID, UpdateProductInput{Stock: &stock, Options: &options})
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.Stock)
	require.Len(t, updated.SizeOptions, 1)
	assert.Equal(t, "3호", updated.SizeOptions[0].Label)
	require.Len(t, updated.FlavorOptions, 1)
	assert.Equal(t, "matcha", updated.FlavorOptions[0].Label)

	var optionRows int64
	require.NoError(t, f.conn.Model(&models.ProductOption{}).Where("product_id = ?", created.ID).Count(&optionRows).Error)
	assert.Equal(t, int64(2), optionRows)
}

func TestUpdateProductForbiddenForOtherSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, f.seller.ID, f.store.ID, cakeInput())
	require.NoError(t, err)

	stranger := dbtest.SeedUser(t, f.conn, enums.UserRoleSeller)
	name := "Hijacked"
	_, err = f.svc.UpdateProduct(ctx, stranger.ID, created.ID, UpdateProductInput{Name: &name})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	loaded, err := f.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Strawberry Cake", loaded.Name)
}

func TestDeleteProductSoftDeletesAndEmits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, f.seller.ID, f.store.ID, cakeInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProduct(ctx, f.seller.ID, created.ID))

	_, err = f.svc.GetProduct(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	var raw models.Product
	require.NoError(t, f.conn.Unscoped().Where("id = ?", created.ID).Take(&raw).Error)
	assert.True(t, raw.DeletedAt.Valid)

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Where("aggregate_id = ?", created.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventProductDeleted, events[0].EventType)
	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	assert.Contains(t, string(envelope.Data), f.store.ID.String())

	err = f.svc.DeleteProduct(ctx, f.seller.ID, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListByStoreHidesDisabledAndDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var visible []uuid.UUID
	for i := 0; i < 3; i++ {
		created, err := f.svc.CreateProduct(ctx, f.seller.ID, f.store.ID, cakeInput())
		require.NoError(t, err)
		visible = append(visible, created.ID)
	}
	disabled := cakeInput()
	disabled.VisibilityStatus = "DISABLE"
	_, err := f.svc.CreateProduct(ctx, f.seller.ID, f.store.ID, disabled)
	require.NoError(t, err)
	gone, err := f.svc.CreateProduct(ctx, f.seller.ID, f.store.ID, cakeInput())
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteProduct(ctx, f.seller.ID, gone.ID))

	first, err := f.svc.ListByStore(ctx, f.store.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.ListByStore(ctx, f.store.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, item := range append(first.Items, second.Items...) {
		seen[item.ID] = true
	}
	for _, id := range visible {
		assert.True(t, seen[id], "expected %s in listing", id)
	}

	_, err = f.svc.ListByStore(ctx, f.store.ID, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}
