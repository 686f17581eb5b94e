package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feed is a post a store publishes to its followers.
type Feed struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null;index:feeds_store_id_idx"`
	Title     string    `gorm:"column:title;not null"`
	Content   string    `gorm:"column:content;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (f *Feed) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
