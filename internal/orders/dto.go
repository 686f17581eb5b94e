package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
)

// PickupAddress is the address snapshot stored on the order.
type PickupAddress struct {
	Address     string   `json:"address" validate:"required,max=255"`
	RoadAddress *string  `json:"roadAddress,omitempty" validate:"omitempty,max=255"`
	ZoneCode    *string  `json:"zoneCode,omitempty" validate:"omitempty,max=16"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// Upper bounds on a single order request; the validator tags mirror them.
const (
	MaxOrderItems   = 20
	MaxItemQuantity = 100
)

// CreateOrderItemInput is one requested cake within an order.
type CreateOrderItemInput struct {
	SizeOptionID   uuid.UUID `json:"sizeOptionId" validate:"required"`
	FlavorOptionID uuid.UUID `json:"flavorOptionId" validate:"required"`
	Quantity       int64     `json:"quantity" validate:"required,min=1,max=100"`
	PickupDate     time.Time `json:"pickupDate" validate:"required"`
	Lettering      *string   `json:"lettering,omitempty" validate:"omitempty,max=100"`
	RequestMessage *string   `json:"requestMessage,omitempty" validate:"omitempty,max=500"`
}

// CreateOrderInput carries the buyer's request. TotalQuantity and TotalPrice are the
// client's claim and are only compared against the server-side quote.
type CreateOrderInput struct {
	ProductID     uuid.UUID              `json:"productId" validate:"required"`
	Items         []CreateOrderItemInput `json:"items" validate:"required,min=1,max=20,dive"`
	TotalQuantity int64                  `json:"totalQuantity" validate:"required,min=1"`
	TotalPrice    int64                  `json:"totalPrice" validate:"min=0"`
	Pickup        PickupAddress          `json:"pickup" validate:"required"`
}

// CreateOrderResult is returned once the order is persisted.
type CreateOrderResult struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber string            `json:"orderNumber"`
	OrderStatus enums.OrderStatus `json:"orderStatus"`
	TotalPrice  int64             `json:"totalPrice"`
}

// UpdateOrderStatusInput is the seller's transition request.
type UpdateOrderStatusInput struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

// UpdateOrderStatusResult echoes the order id.
type UpdateOrderStatusResult struct {
	ID uuid.UUID `json:"id"`
}

// OrderItemDTO is the read shape of an order item.
type OrderItemDTO struct {
	ID             uuid.UUID `json:"id"`
	PickupDate     time.Time `json:"pickupDate"`
	SizeLabel      string    `json:"sizeLabel"`
	SizePrice      int64     `json:"sizePrice"`
	FlavorLabel    string    `json:"flavorLabel"`
	FlavorPrice    int64     `json:"flavorPrice"`
	BasePrice      int64     `json:"basePrice"`
	UnitPrice      int64     `json:"unitPrice"`
	Quantity       int64     `json:"quantity"`
	ItemTotal      int64     `json:"itemTotal"`
	Lettering      *string   `json:"lettering,omitempty"`
	RequestMessage *string   `json:"requestMessage,omitempty"`
}

// OrderDTO is the read shape of an order.
type OrderDTO struct {
	ID            uuid.UUID         `json:"id"`
	OrderNumber   string            `json:"orderNumber"`
	UserID        uuid.UUID         `json:"userId"`
	StoreID       uuid.UUID         `json:"storeId"`
	ProductID     uuid.UUID         `json:"productId"`
	TotalQuantity int64             `json:"totalQuantity"`
	TotalPrice    int64             `json:"totalPrice"`
	OrderStatus   enums.OrderStatus `json:"orderStatus"`
	Pickup        PickupAddress     `json:"pickup"`
	Items         []OrderItemDTO    `json:"items,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func toOrderDTO(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		StoreID:       o.StoreID,
		ProductID:     o.ProductID,
		TotalQuantity: o.TotalQuantity,
		TotalPrice:    o.TotalPrice,
		OrderStatus:   o.OrderStatus,
		Pickup: PickupAddress{
			Address:     o.PickupAddress,
			RoadAddress: o.PickupRoadAddr,
			ZoneCode:    o.PickupZoneCode,
			Latitude:    o.PickupLat,
			Longitude:   o.PickupLng,
		},
		CreatedAt: o.CreatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:             item.ID,
			PickupDate:     item.PickupDate,
			SizeLabel:      item.SizeLabel,
			SizePrice:      item.SizePrice,
			FlavorLabel:    item.FlavorLabel,
			FlavorPrice:    item.FlavorPrice,
			BasePrice:      item.BasePrice,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			ItemTotal:      item.ItemTotal,
			Lettering:      item.Lettering,
			RequestMessage: item.RequestMessage,
		})
	}
	return dto
}
