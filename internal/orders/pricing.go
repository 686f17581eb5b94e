package orders

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
)

// QuotedItem is a requested item with its options and prices resolved from the catalog.
type QuotedItem struct {
	PickupDate     time.Time
	Size           models.ProductOption
	Flavor         models.ProductOption
	BasePrice      int64
	UnitPrice      int64
	Quantity       int64
	ItemTotal      int64
	Lettering      *string
	RequestMessage *string
}

// Quote is the server-side price computation for an order request.
type Quote struct {
	ProductID     uuid.UUID
	StoreID       uuid.UUID
	Items         []QuotedItem
	TotalQuantity int64
	TotalPrice    int64
}

// BuildQuote resolves every item against product and its options and checks the
// client's declared totals against the recomputed ones. It performs no I/O.
func BuildQuote(product *models.Product, input CreateOrderInput) (*Quote, error) {
	if product == nil || product.DeletedAt.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.VisibilityStatus != enums.ProductVisibilityEnable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available for order")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if len(input.Items) > MaxOrderItems {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d items per order", MaxOrderItems))
	}

	options := make(map[uuid.UUID]models.ProductOption, len(product.Options))
	for _, opt := range product.Options {
		if opt.ProductID == product.ID {
			options[opt.ID] = opt
		}
	}

	quote := &Quote{
		ProductID: product.ID,
		StoreID:   product.StoreID,
		Items:     make([]QuotedItem, 0, len(input.Items)),
	}
	for i, item := range input.Items {
		switch {
		case item.Quantity <= 0:
			return nil, itemError(i, "quantity must be at least 1")
		case item.Quantity > MaxItemQuantity:
			return nil, itemError(i, fmt.Sprintf("quantity must be at most %d", MaxItemQuantity))
		case item.Quantity > product.Stock:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
		}
		if item.PickupDate.IsZero() {
			return nil, itemError(i, "pickup date is required")
		}
		size, err := resolveOption(options, item.SizeOptionID, enums.ProductOptionSize)
		if err != nil {
			return nil, itemError(i, err.Error())
		}
		flavor, err := resolveOption(options, item.FlavorOptionID, enums.ProductOptionFlavor)
		if err != nil {
			return nil, itemError(i, err.Error())
		}

		unit, ok := addInt64(product.SalePrice, size.Price, flavor.Price)
		if !ok {
			return nil, itemError(i, "unit price out of range")
		}
		itemTotal, ok := mulInt64(unit, item.Quantity)
		if !ok {
			return nil, itemError(i, "item total out of range")
		}
		if quote.TotalQuantity, ok = addInt64(quote.TotalQuantity, item.Quantity); !ok {
			return nil, itemError(i, "total quantity out of range")
		}
		if quote.TotalPrice, ok = addInt64(quote.TotalPrice, itemTotal); !ok {
			return nil, itemError(i, "total price out of range")
		}
		quote.Items = append(quote.Items, QuotedItem{
			PickupDate:     item.PickupDate.UTC(),
			Size:           size,
			Flavor:         flavor,
			BasePrice:      product.SalePrice,
			UnitPrice:      unit,
			Quantity:       item.Quantity,
			ItemTotal:      itemTotal,
			Lettering:      item.Lettering,
			RequestMessage: item.RequestMessage,
		})
	}

	if quote.TotalQuantity != input.TotalQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total quantity does not match items").
			WithDetails(map[string]any{"expected": quote.TotalQuantity, "declared": input.TotalQuantity})
	}
	if quote.TotalPrice != input.TotalPrice {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total price does not match items").
			WithDetails(map[string]any{"expected": quote.TotalPrice, "declared": input.TotalPrice})
	}
	if quote.TotalQuantity > product.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock")
	}
	return quote, nil
}

// addInt64 sums non-negative operands, reporting false on overflow or a negative term.
func addInt64(terms ...int64) (int64, bool) {
	var sum int64
	for _, v := range terms {
		if v < 0 || v > math.MaxInt64-sum {
			return 0, false
		}
		sum += v
	}
	return sum, true
}

// mulInt64 multiplies non-negative operands, reporting false on overflow.
func mulInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

func resolveOption(options map[uuid.UUID]models.ProductOption, id uuid.UUID, kind enums.ProductOptionKind) (models.ProductOption, error) {
	opt, ok := options[id]
	if !ok {
		return models.ProductOption{}, fmt.Errorf("unknown %s option %s", kindLabel(kind), id)
	}
	if opt.Kind != kind {
		return models.ProductOption{}, fmt.Errorf("option %s is not a %s option", id, kindLabel(kind))
	}
	return opt, nil
}

func kindLabel(kind enums.ProductOptionKind) string {
	if kind == enums.ProductOptionSize {
		return "size"
	}
	return "flavor"
}

func itemError(index int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d]: %s", index, msg))
}

// toModel builds the order row and its item snapshots.
func (q *Quote) toModel(userID uuid.UUID, number string, pickup PickupAddress) *models.Order {
	order := &models.Order{
		OrderNumber:    number,
		UserID:         userID,
		StoreID:        q.StoreID,
		ProductID:      q.ProductID,
		TotalQuantity:  q.TotalQuantity,
		TotalPrice:     q.TotalPrice,
		PickupAddress:  pickup.Address,
		PickupRoadAddr: pickup.RoadAddress,
		PickupZoneCode: pickup.ZoneCode,
		PickupLat:      pickup.Latitude,
		PickupLng:      pickup.Longitude,
		OrderStatus:    enums.OrderStatusPending,
		Items:          make([]models.OrderItem, 0, len(q.Items)),
	}
	for _, item := range q.Items {
		order.Items = append(order.Items, models.OrderItem{
			PickupDate:     item.PickupDate,
			SizeOptionID:   item.Size.ID,
			SizeLabel:      item.Size.Label,
			SizePrice:      item.Size.Price,
			FlavorOptionID: item.Flavor.ID,
			FlavorLabel:    item.Flavor.Label,
			FlavorPrice:    item.Flavor.Price,
			BasePrice:      item.BasePrice,
			UnitPrice:      item.UnitPrice,
			Quantity:       item.Quantity,
			ItemTotal:      item.ItemTotal,
			Lettering:      item.Lettering,
			RequestMessage: item.RequestMessage,
		})
	}
	return order
}
