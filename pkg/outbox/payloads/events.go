package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderCreatedEvent is emitted once an order and its items are persisted.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	BuyerID       uuid.UUID `json:"buyerId"`
	StoreID       uuid.UUID `json:"storeId"`
	ProductID     uuid.UUID `json:"productId"`
	TotalQuantity int64     `json:"totalQuantity"`
	TotalPrice    int64     `json:"totalPrice"`
}

// OrderConfirmedEvent is emitted when the seller confirms a pending order.
type OrderConfirmedEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	BuyerID     uuid.UUID `json:"buyerId"`
	StoreID     uuid.UUID `json:"storeId"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// ProductDeletedEvent is emitted when a seller soft-deletes a product.
type ProductDeletedEvent struct {
	ProductID uuid.UUID `json:"productId"`
	StoreID   uuid.UUID `json:"storeId"`
}

// StoreCreatedEvent is emitted when a user opens a store.
type StoreCreatedEvent struct {
	StoreID uuid.UUID `json:"storeId"`
	OwnerID uuid.UUID `json:"ownerId"`
	Name    string    `json:"name"`
}
