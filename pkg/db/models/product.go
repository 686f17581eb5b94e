package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/enums"
)

// Product is a cake listing. Soft-deleted rows are invisible to every default query.
type Product struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	StoreID          uuid.UUID               `gorm:"column:store_id;type:uuid;not null;index:products_store_id_idx"`
	Name             string                  `gorm:"column:name;not null"`
	Description      *string                 `gorm:"column:description"`
	SalePrice        int64                   `gorm:"column:sale_price;not null"`
	Stock            int64                   `gorm:"column:stock;not null;default:0"`
	LikeCount        int64                   `gorm:"column:like_count;not null;default:0"`
	VisibilityStatus enums.ProductVisibility `gorm:"column:visibility_status;type:text;not null;default:'ENABLE'"`
	Options          []ProductOption         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt        gorm.DeletedAt          `gorm:"column:deleted_at;index"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ProductOption is a size or flavor choice with the price it adds to the base price.
type ProductOption struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index:product_options_product_id_idx"`
	Kind      enums.ProductOptionKind `gorm:"column:kind;type:text;not null"`
	Label     string                  `gorm:"column:label;not null"`
	Price     int64                   `gorm:"column:price;not null;default:0"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (o *ProductOption) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
