package likes

import (
	"time"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// LikeState is the outcome of a like mutation or lookup.
type LikeState struct {
	Target    enums.LikeTarget `json:"target"`
	TargetID  uuid.UUID        `json:"targetId"`
	Liked     bool             `json:"liked"`
	LikeCount int64            `json:"likeCount"`
}

// LikedProductDTO is one row of the caller's liked products.
type LikedProductDTO struct {
	ProductID        uuid.UUID               `json:"productId"`
	StoreID          uuid.UUID               `json:"storeId"`
	Name             string                  `json:"name"`
	SalePrice        int64                   `json:"salePrice"`
	LikeCount        int64                   `json:"likeCount"`
	VisibilityStatus enums.ProductVisibility `json:"visibilityStatus"`
	LikedAt          time.Time               `json:"likedAt"`
}

// LikedStoreDTO is one row of the caller's liked stores.
type LikedStoreDTO struct {
	StoreID   uuid.UUID `json:"storeId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	LikeCount int64     `json:"likeCount"`
	LikedAt   time.Time `json:"likedAt"`
}

type likedProductRecord struct {
	LikeID           uuid.UUID
	LikedAt          time.Time
	ProductID        uuid.UUID
	StoreID          uuid.UUID
	Name             string
	SalePrice        int64
	LikeCount        int64
	VisibilityStatus enums.ProductVisibility
}

func (r likedProductRecord) cursor() pagination.Cursor {
	return pagination.Cursor{CreatedAt: r.LikedAt, ID: r.LikeID}
}

func (r likedProductRecord) toDTO() LikedProductDTO {
	return LikedProductDTO{
		ProductID:        r.ProductID,
		StoreID:          r.StoreID,
		Name:             r.Name,
		SalePrice:        r.SalePrice,
		LikeCount:        r.LikeCount,
		VisibilityStatus: r.VisibilityStatus,
		LikedAt:          r.LikedAt,
	}
}

type likedStoreRecord struct {
	LikeID    uuid.UUID
	LikedAt   time.Time
	StoreID   uuid.UUID
	Name      string
	Address   string
	LikeCount int64
}

func (r likedStoreRecord) cursor() pagination.Cursor {
	return pagination.Cursor{CreatedAt: r.LikedAt, ID: r.LikeID}
}

func (r likedStoreRecord) toDTO() LikedStoreDTO {
	return LikedStoreDTO{
		StoreID:   r.StoreID,
		Name:      r.Name,
		Address:   r.Address,
		LikeCount: r.LikeCount,
		LikedAt:   r.LikedAt,
	}
}
