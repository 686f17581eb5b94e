package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox"
)

func TestNewServiceRequiresRepo(t *testing.T) {
	params := stubParams(&stubStoreRepo{})
	params.Repo = nil
	if _, err := NewService(params); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestNewServiceRequiresGuard(t *testing.T) {
	params := stubParams(&stubStoreRepo{})
	params.Guard = nil
	if _, err := NewService(params); err == nil {
		t.Fatal("expected error creating service without guard")
	}
}

func TestServiceGetByIDSuccess(t *testing.T) {
	store := baseStore()
	svc := mustService(t, stubParams(&stubStoreRepo{store: store}))

	dto, err := svc.GetByID(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.ID != store.ID {
		t.Fatalf("expected id %s got %s", store.ID, dto.ID)
	}
	if dto.Name != store.Name {
		t.Fatalf("expected name %s got %s", store.Name, dto.Name)
	}
	if dto.Phone == nil || *dto.Phone != *store.Phone {
		t.Fatalf("expected phone %q got %v", *store.Phone, dto.Phone)
	}
	if dto.OwnerID != store.UserID {
		t.Fatalf("owner mismatch: expected %s got %s", store.UserID, dto.OwnerID)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc := mustService(t, stubParams(&stubStoreRepo{err: gorm.ErrRecordNotFound}))

	_, err := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}

func TestServiceGetByIDInternalError(t *testing.T) {
	svc := mustService(t, stubParams(&stubStoreRepo{err: errors.New("boom")}))

	_, err := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal code, got %v", err)
	}
}

func TestServiceCreatePromotesAndEmits(t *testing.T) {
	repo := &stubStoreRepo{}
	params := stubParams(repo)
	promoter := params.Promoter.(*stubPromoter)
	emitter := params.Outbox.(*stubOutbox)
	svc := mustService(t, params)

	caller := uuid.New()
	dto, err := svc.Create(context.Background(), caller, CreateStoreInput{Name: "  Sweet Bakery ", Address: "1 Cake St"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.Name != "Sweet Bakery" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.OwnerID != caller {
		t.Fatalf("expected owner %s got %s", caller, dto.OwnerID)
	}
	if promoter.promoted != caller {
		t.Fatalf("expected caller promoted, got %s", promoter.promoted)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventStoreCreated {
		t.Fatalf("expected one store.created event, got %+v", emitter.events)
	}
	if emitter.events[0].AggregateID != repo.created.ID {
		t.Fatalf("expected aggregate %s got %s", repo.created.ID, emitter.events[0].AggregateID)
	}
}

func TestServiceCreateRejectsBlankName(t *testing.T) {
	repo := &stubStoreRepo{}
	svc := mustService(t, stubParams(repo))

	_, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "   ", Address: "1 Cake St"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("store should not be persisted")
	}
}

func TestServiceCreateRequiresCaller(t *testing.T) {
	svc := mustService(t, stubParams(&stubStoreRepo{}))

	_, err := svc.Create(context.Background(), uuid.Nil, CreateStoreInput{Name: "x", Address: "y"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceCreatePropagatesPromotionFailure(t *testing.T) {
	params := stubParams(&stubStoreRepo{})
	params.Promoter.(*stubPromoter).err = errors.New("db down")
	emitter := params.Outbox.(*stubOutbox)
	svc := mustService(t, params)

	_, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "x", Address: "y"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatal("no event should be emitted when promotion fails")
	}
}

func TestServiceUpdateAppliesFields(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	params := stubParams(repo)
	params.Guard = stubGuard{store: store}
	svc := mustService(t, params)

	name := "Night Bakery"
	lat := 37.5
	dto, err := svc.Update(context.Background(), store.UserID, store.ID, UpdateStoreInput{Name: &name, Latitude: &lat})
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if dto.Name != name {
		t.Fatalf("expected name %s got %s", name, dto.Name)
	}
	if dto.Latitude == nil || *dto.Latitude != lat {
		t.Fatalf("expected latitude %v got %v", lat, dto.Latitude)
	}
	if repo.updated == nil || repo.updated.Name != name {
		t.Fatal("expected repository update call")
	}
	if dto.Address != store.Address {
		t.Fatalf("address should be untouched, got %s", dto.Address)
	}
}

func TestServiceUpdateForbiddenForNonOwner(t *testing.T) {
	repo := &stubStoreRepo{store: baseStore()}
	params := stubParams(repo)
	params.Guard = stubGuard{err: pkgerrors.New(pkgerrors.CodeForbidden, "caller does not own this store")}
	svc := mustService(t, params)

	name := "Stolen"
	_, err := svc.Update(context.Background(), uuid.New(), repo.store.ID, UpdateStoreInput{Name: &name})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.updated != nil {
		t.Fatal("repository should not be called")
	}
}

func TestServiceUpdateRejectsBlankAddress(t *testing.T) {
	store := baseStore()
	params := stubParams(&stubStoreRepo{store: store})
	params.Guard = stubGuard{store: store}
	svc := mustService(t, params)

	blank := " "
	_, err := svc.Update(context.Background(), store.UserID, store.ID, UpdateStoreInput{Address: &blank})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceListMine(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{list: []models.Store{*store, *baseStore()}}
	svc := mustService(t, stubParams(repo))

	out, err := svc.ListMine(context.Background(), store.UserID)
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 stores got %d", len(out))
	}
	if out[0].ID != store.ID {
		t.Fatalf("expected first store %s got %s", store.ID, out[0].ID)
	}
}

func mustService(t *testing.T, params ServiceParams) Service {
	t.Helper()
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func stubParams(repo *stubStoreRepo) ServiceParams {
	return ServiceParams{
		Repo:     repo,
		Promoter: &stubPromoter{},
		Guard:    stubGuard{},
		Tx:       stubTx{},
		Outbox:   &stubOutbox{},
	}
}

func baseStore() *models.Store {
	phone := "02-555-0100"
	return &models.Store{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Name:      "Sweet Bakery",
		Phone:     &phone,
		Address:   "1 Cake St",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

type stubStoreRepo struct {
	store   *models.Store
	list    []models.Store
	err     error
	created *models.Store
	updated *models.Store
}

func (s *stubStoreRepo) WithTx(*gorm.DB) storeRepository { return s }

func (s *stubStoreRepo) Create(_ context.Context, store *models.Store) error {
	if s.err != nil {
		return s.err
	}
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	s.created = store
	return nil
}

func (s *stubStoreRepo) FindByID(context.Context, uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

func (s *stubStoreRepo) FindByOwner(context.Context, uuid.UUID) ([]models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	if s.err != nil {
		return s.err
	}
	s.updated = store
	return nil
}

type stubPromoter struct {
	promoted uuid.UUID
	err      error
}

func (s *stubPromoter) PromoteToSeller(_ context.Context, _ *gorm.DB, userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.promoted = userID
	return nil
}

type stubGuard struct {
	store *models.Store
	err   error
}

func (s stubGuard) Store(context.Context, uuid.UUID, uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}
