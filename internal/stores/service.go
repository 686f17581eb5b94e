// Package stores manages seller stores.
package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox/payloads"
)

type storeRepository interface {
	WithTx(tx *gorm.DB) storeRepository
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

type sellerPromoter interface {
	PromoteToSeller(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type storeGuard interface {
	Store(ctx context.Context, storeID, callerID uuid.UUID) (*models.Store, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateStoreInput) (*StoreDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	Update(ctx context.Context, callerID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	ListMine(ctx context.Context, callerID uuid.UUID) ([]StoreDTO, error)
}

// ServiceParams groups dependencies for the store service.
type ServiceParams struct {
	Repo     storeRepository
	Promoter sellerPromoter
	Guard    storeGuard
	Tx       txRunner
	Outbox   outboxPublisher
}

type service struct {
	repo     storeRepository
	promoter sellerPromoter
	guard    storeGuard
	tx       txRunner
	outbox   outboxPublisher
}

// NewService builds a store service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Promoter == nil {
		return nil, fmt.Errorf("seller promoter required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("ownership guard required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     params.Repo,
		promoter: params.Promoter,
		guard:    params.Guard,
		tx:       params.Tx,
		outbox:   params.Outbox,
	}, nil
}

// Create opens a store owned by the caller and promotes a plain user to seller.
func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	if input.Name == "" || input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and address are required")
	}

	store := input.ToModel(callerID)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, store); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
		}
		if err := s.promoter.PromoteToSeller(ctx, tx, callerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote owner")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStoreCreated,
			AggregateType: enums.AggregateStore,
			AggregateID:   store.ID,
			Actor:         &outbox.ActorRef{UserID: callerID},
			Data: payloads.StoreCreatedEvent{
				StoreID: store.ID,
				OwnerID: callerID,
				Name:    store.Name,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, callerID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.guard.Store(ctx, storeID, callerID)
	if err != nil {
		return nil, err
	}
	applyUpdate(store, input)
	if strings.TrimSpace(store.Name) == "" || strings.TrimSpace(store.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and address cannot be blank")
	}
	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) ListMine(ctx context.Context, callerID uuid.UUID) ([]StoreDTO, error) {
	rows, err := s.repo.FindByOwner(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
