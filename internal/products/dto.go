package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
)

// ProductDTO is the public representation of a product and its options.
type ProductDTO struct {
	ID               uuid.UUID               `json:"id"`
	StoreID          uuid.UUID               `json:"storeId"`
	Name             string                  `json:"name"`
	Description      *string                 `json:"description,omitempty"`
	SalePrice        int64                   `json:"salePrice"`
	Stock            int64                   `json:"stock"`
	LikeCount        int64                   `json:"likeCount"`
	VisibilityStatus enums.ProductVisibility `json:"visibilityStatus"`
	SizeOptions      []OptionDTO             `json:"sizeOptions"`
	FlavorOptions    []OptionDTO             `json:"flavorOptions"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

// OptionDTO exposes a single size or flavor choice.
type OptionDTO struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Price int64     `json:"price"`
}

// ProductSummaryDTO is the list-row shape used by store browsing.
type ProductSummaryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SalePrice int64     `json:"salePrice"`
	Stock     int64     `json:"stock"`
	LikeCount int64     `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// OptionInput describes an option to create alongside the product.
type OptionInput struct {
	Kind  string `json:"kind" validate:"required,oneof=SIZE FLAVOR size flavor"`
	Label string `json:"label" validate:"required,max=50"`
	Price int64  `json:"price" validate:"gte=0"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name             string        `json:"name" validate:"required,max=100"`
	Description      *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	SalePrice        int64         `json:"salePrice" validate:"gte=0"`
	Stock            int64         `json:"stock" validate:"gte=0"`
	VisibilityStatus string        `json:"visibilityStatus,omitempty" validate:"omitempty,oneof=ENABLE DISABLE enable disable"`
	Options          []OptionInput `json:"options" validate:"dive"`
}

// UpdateProductInput holds optional mutation values for a product. A non-nil Options
// replaces the whole option set.
type UpdateProductInput struct {
	Name             *string        `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description      *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	SalePrice        *int64         `json:"salePrice,omitempty" validate:"omitempty,gte=0"`
	Stock            *int64         `json:"stock,omitempty" validate:"omitempty,gte=0"`
	VisibilityStatus *string        `json:"visibilityStatus,omitempty" validate:"omitempty,oneof=ENABLE DISABLE enable disable"`
	Options          *[]OptionInput `json:"options,omitempty" validate:"omitempty,dive"`
}

// NewProductDTO maps the model (with preloaded options) into its DTO.
func NewProductDTO(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:               p.ID,
		StoreID:          p.StoreID,
		Name:             p.Name,
		Description:      p.Description,
		SalePrice:        p.SalePrice,
		Stock:            p.Stock,
		LikeCount:        p.LikeCount,
		VisibilityStatus: p.VisibilityStatus,
		SizeOptions:      []OptionDTO{},
		FlavorOptions:    []OptionDTO{},
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	for _, opt := range p.Options {
		entry := OptionDTO{ID: opt.ID, Label: opt.Label, Price: opt.Price}
		switch opt.Kind {
		case enums.ProductOptionSize:
			dto.SizeOptions = append(dto.SizeOptions, entry)
		case enums.ProductOptionFlavor:
			dto.FlavorOptions = append(dto.FlavorOptions, entry)
		}
	}
	return dto
}

func newSummaryDTO(p models.Product) ProductSummaryDTO {
	return ProductSummaryDTO{
		ID:        p.ID,
		Name:      p.Name,
		SalePrice: p.SalePrice,
		Stock:     p.Stock,
		LikeCount: p.LikeCount,
		CreatedAt: p.CreatedAt,
	}
}
