package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks a pickup order. The only forward transition is
// PENDING -> CONFIRMED.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
)

var validOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusConfirmed}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed. Same-state
// requests are allowed and treated as no-ops by callers.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.IsValid() {
		return false
	}
	return !(s == OrderStatusConfirmed && next == OrderStatusPending)
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching ignores case.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
