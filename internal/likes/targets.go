package likes

import (
	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
)

// target describes one likeable table: the counter lives on model, the like rows on likeModel.
type target struct {
	kind      enums.LikeTarget
	column    string
	notFound  string
	model     func() any
	likeModel func() any
	newLike   func(userID, targetID uuid.UUID) any
}

var productTarget = target{
	kind:      enums.LikeTargetProduct,
	column:    "product_id",
	notFound:  "product not found",
	model:     func() any { return &models.Product{} },
	likeModel: func() any { return &models.ProductLike{} },
	newLike: func(userID, targetID uuid.UUID) any {
		return &models.ProductLike{UserID: userID, ProductID: targetID}
	},
}

var storeTarget = target{
	kind:      enums.LikeTargetStore,
	column:    "store_id",
	notFound:  "store not found",
	model:     func() any { return &models.Store{} },
	likeModel: func() any { return &models.StoreLike{} },
	newLike: func(userID, targetID uuid.UUID) any {
		return &models.StoreLike{UserID: userID, StoreID: targetID}
	},
}

func targetFor(kind enums.LikeTarget) (target, bool) {
	switch kind {
	case enums.LikeTargetProduct:
		return productTarget, true
	case enums.LikeTargetStore:
		return storeTarget, true
	default:
		return target{}, false
	}
}
