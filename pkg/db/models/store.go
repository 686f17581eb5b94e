package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a seller's shop. UserID is the owner used by every ownership check.
type Store struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:stores_user_id_idx"`
	Name           string    `gorm:"column:name;not null"`
	Description    *string   `gorm:"column:description"`
	Phone          *string   `gorm:"column:phone"`
	BusinessNumber *string   `gorm:"column:business_number"`
	Address        string    `gorm:"column:address;not null"`
	RoadAddress    *string   `gorm:"column:road_address"`
	ZoneCode       *string   `gorm:"column:zone_code"`
	Latitude       *float64  `gorm:"column:latitude"`
	Longitude      *float64  `gorm:"column:longitude"`
	LikeCount      int64     `gorm:"column:like_count;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
