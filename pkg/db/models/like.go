package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductLike records that a user liked a product. The row's existence is the state.
type ProductLike struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:product_likes_user_product_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:product_likes_user_product_key;index:product_likes_product_id_idx"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *ProductLike) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// StoreLike records that a user liked a store.
type StoreLike struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:store_likes_user_store_key"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;uniqueIndex:store_likes_user_store_key;index:store_likes_store_id_idx"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (l *StoreLike) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
