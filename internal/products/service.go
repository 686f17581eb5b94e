// Package product manages cake listings and their size/flavor options.
package product

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
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// Service exposes seller product management and public product reads.
type Service interface {
	CreateProduct(ctx context.Context, callerID, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, callerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, callerID, productID uuid.UUID) error
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (ProductListResult, error)
}

type ownershipGuard interface {
	Store(ctx context.Context, storeID, callerID uuid.UUID) (*models.Store, error)
	Product(ctx context.Context, productID, callerID uuid.UUID) (*models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams groups the product service dependencies.
type ServiceParams struct {
	Repo   *Repository
	Tx     txRunner
	Guard  ownershipGuard
	Outbox outboxPublisher
}

type service struct {
	repo   *Repository
	tx     txRunner
	guard  ownershipGuard
	outbox outboxPublisher
}

// NewService constructs a product service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("ownership guard required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		guard:  params.Guard,
		outbox: params.Outbox,
	}, nil
}

// CreateProduct creates the product and its options in one transaction.
func (s *service) CreateProduct(ctx context.Context, callerID, storeID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.SalePrice < 0 || input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "salePrice and stock must be non-negative")
	}
	visibility := enums.ProductVisibilityEnable
	if strings.TrimSpace(input.VisibilityStatus) != "" {
		parsed, err := enums.ParseProductVisibility(input.VisibilityStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid visibilityStatus")
		}
		visibility = parsed
	}
	options, err := buildOptions(input.Options)
	if err != nil {
		return nil, err
	}

	if _, err := s.guard.Store(ctx, storeID, callerID); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:          storeID,
		Name:             name,
		Description:      input.Description,
		SalePrice:        input.SalePrice,
		Stock:            input.Stock,
		VisibilityStatus: visibility,
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert product")
		}
		for i := range options {
			options[i].ProductID = product.ID
		}
		if err := txRepo.CreateOptions(ctx, options); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert product options")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	product.Options = options
	return NewProductDTO(product), nil
}

// GetProduct returns a live product with its options. Disabled products are still
// readable so existing links keep working; only ordering rejects them.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return NewProductDTO(product), nil
}

// UpdateProduct applies the provided fields after the ownership check.
func (s *service) UpdateProduct(ctx context.Context, callerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.guard.Product(ctx, productID, callerID)
	if err != nil {
		return nil, err
	}
	if err := applyUpdateToProduct(product, input); err != nil {
		return nil, err
	}
	var options []models.ProductOption
	if input.Options != nil {
		if options, err = buildOptions(*input.Options); err != nil {
			return nil, err
		}
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update product")
		}
		if input.Options == nil {
			return nil
		}
		for i := range options {
			options[i].ProductID = product.ID
		}
		if err := txRepo.ReplaceOptions(ctx, product.ID, options); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: replace product options")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, product.ID)
}

// DeleteProduct soft-deletes the product and records a product.deleted event.
func (s *service) DeleteProduct(ctx context.Context, callerID, productID uuid.UUID) error {
	product, err := s.guard.Product(ctx, productID, callerID)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SoftDelete(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete product")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductDeleted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Actor:         &outbox.ActorRef{UserID: callerID},
			Data: payloads.ProductDeletedEvent{
				ProductID: product.ID,
				StoreID:   product.StoreID,
			},
		})
	})
}

// ListByStore returns enabled products of a store, newest first.
func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (ProductListResult, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return ProductListResult{}, err
	}
	rows, err := s.repo.ListByStore(ctx, storeID, cursor, params.Limit)
	if err != nil {
		return ProductListResult{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return buildListResult(rows, params.Limit), nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		desc := *input.Description
		product.Description = &desc
	}
	if input.SalePrice != nil {
		if *input.SalePrice < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "salePrice must be non-negative")
		}
		product.SalePrice = *input.SalePrice
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
		}
		product.Stock = *input.Stock
	}
	if input.VisibilityStatus != nil {
		visibility, err := enums.ParseProductVisibility(*input.VisibilityStatus)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid visibilityStatus")
		}
		product.VisibilityStatus = visibility
	}
	return nil
}

func buildOptions(inputs []OptionInput) ([]models.ProductOption, error) {
	options := make([]models.ProductOption, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		kind, err := enums.ParseProductOptionKind(in.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("options[%d]: invalid kind", i))
		}
		label := strings.TrimSpace(in.Label)
		if label == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("options[%d]: label is required", i))
		}
		if in.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("options[%d]: price must be non-negative", i))
		}
		key := string(kind) + "|" + label
		if _, dup := seen[key]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("options[%d]: duplicate %s option %q", i, strings.ToLower(string(kind)), label))
		}
		seen[key] = struct{}{}
		options = append(options, models.ProductOption{Kind: kind, Label: label, Price: in.Price})
	}
	return options, nil
}
