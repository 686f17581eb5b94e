package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/enums"
)

// Order is a buyer's pickup order for one product. Totals are computed server-side
// and never change after creation.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber    string            `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	StoreID        uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index:orders_store_id_idx"`
	ProductID      uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	TotalQuantity  int64             `gorm:"column:total_quantity;not null"`
	TotalPrice     int64             `gorm:"column:total_price;not null"`
	PickupAddress  string            `gorm:"column:pickup_address;not null"`
	PickupRoadAddr *string           `gorm:"column:pickup_road_address"`
	PickupZoneCode *string           `gorm:"column:pickup_zone_code"`
	PickupLat      *float64          `gorm:"column:pickup_latitude"`
	PickupLng      *float64          `gorm:"column:pickup_longitude"`
	OrderStatus    enums.OrderStatus `gorm:"column:order_status;type:text;not null;default:'PENDING'"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem snapshots the chosen options and prices at order time.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	PickupDate     time.Time `gorm:"column:pickup_date;not null"`
	SizeOptionID   uuid.UUID `gorm:"column:size_option_id;type:uuid;not null"`
	SizeLabel      string    `gorm:"column:size_label;not null"`
	SizePrice      int64     `gorm:"column:size_price;not null"`
	FlavorOptionID uuid.UUID `gorm:"column:flavor_option_id;type:uuid;not null"`
	FlavorLabel    string    `gorm:"column:flavor_label;not null"`
	FlavorPrice    int64     `gorm:"column:flavor_price;not null"`
	BasePrice      int64     `gorm:"column:base_price;not null"`
	UnitPrice      int64     `gorm:"column:unit_price;not null"`
	Quantity       int64     `gorm:"column:quantity;not null"`
	ItemTotal      int64     `gorm:"column:item_total;not null"`
	Lettering      *string   `gorm:"column:lettering"`
	RequestMessage *string   `gorm:"column:request_message"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
