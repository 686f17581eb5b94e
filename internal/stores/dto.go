package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"ownerId"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	BusinessNumber *string   `json:"businessNumber,omitempty"`
	Address        string    `json:"address"`
	RoadAddress    *string   `json:"roadAddress,omitempty"`
	ZoneCode       *string   `json:"zoneCode,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	LikeCount      int64     `json:"likeCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateStoreInput holds creation-time data for a new store.
type CreateStoreInput struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	BusinessNumber *string  `json:"businessNumber,omitempty" validate:"omitempty,max=20"`
	Address        string   `json:"address" validate:"required,max=255"`
	RoadAddress    *string  `json:"roadAddress,omitempty" validate:"omitempty,max=255"`
	ZoneCode       *string  `json:"zoneCode,omitempty" validate:"omitempty,max=16"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// UpdateStoreInput captures the allowed store fields for mutation. Nil fields are left as is.
type UpdateStoreInput struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,min=1,max=255"`
	RoadAddress *string  `json:"roadAddress,omitempty" validate:"omitempty,max=255"`
	ZoneCode    *string  `json:"zoneCode,omitempty" validate:"omitempty,max=16"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// ToModel maps the input to a store owned by ownerID.
func (in CreateStoreInput) ToModel(ownerID uuid.UUID) *models.Store {
	return &models.Store{
		UserID:         ownerID,
		Name:           in.Name,
		Description:    in.Description,
		Phone:          in.Phone,
		BusinessNumber: in.BusinessNumber,
		Address:        in.Address,
		RoadAddress:    in.RoadAddress,
		ZoneCode:       in.ZoneCode,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
	}
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:             m.ID,
		OwnerID:        m.UserID,
		Name:           m.Name,
		Description:    m.Description,
		Phone:          m.Phone,
		BusinessNumber: m.BusinessNumber,
		Address:        m.Address,
		RoadAddress:    m.RoadAddress,
		ZoneCode:       m.ZoneCode,
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
		LikeCount:      m.LikeCount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func applyUpdate(store *models.Store, input UpdateStoreInput) {
	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.Description != nil {
		store.Description = cloneStringPtr(input.Description)
	}
	if input.Phone != nil {
		store.Phone = cloneStringPtr(input.Phone)
	}
	if input.Address != nil {
		store.Address = *input.Address
	}
	if input.RoadAddress != nil {
		store.RoadAddress = cloneStringPtr(input.RoadAddress)
	}
	if input.ZoneCode != nil {
		store.ZoneCode = cloneStringPtr(input.ZoneCode)
	}
	if input.Latitude != nil {
		lat := *input.Latitude
		store.Latitude = &lat
	}
	if input.Longitude != nil {
		lng := *input.Longitude
		store.Longitude = &lng
	}
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
