package enums

import (
	"fmt"
	"strings"
)

// ProductVisibility controls whether a product can be browsed and ordered.
type ProductVisibility string

const (
	ProductVisibilityEnable  ProductVisibility = "ENABLE"
	ProductVisibilityDisable ProductVisibility = "DISABLE"
)

// IsValid reports whether the value is a known ProductVisibility.
func (v ProductVisibility) IsValid() bool {
	return v == ProductVisibilityEnable || v == ProductVisibilityDisable
}

// ParseProductVisibility converts raw input into a ProductVisibility.
func ParseProductVisibility(value string) (ProductVisibility, error) {
	v := ProductVisibility(strings.ToUpper(strings.TrimSpace(value)))
	if !v.IsValid() {
		return "", fmt.Errorf("invalid product visibility %q", value)
	}
	return v, nil
}

// ProductOptionKind distinguishes the two option axes of a cake.
type ProductOptionKind string

const (
	ProductOptionSize   ProductOptionKind = "SIZE"
	ProductOptionFlavor ProductOptionKind = "FLAVOR"
)

// IsValid reports whether the value is a known ProductOptionKind.
func (k ProductOptionKind) IsValid() bool {
	return k == ProductOptionSize || k == ProductOptionFlavor
}

// ParseProductOptionKind converts raw input into a ProductOptionKind.
func ParseProductOptionKind(value string) (ProductOptionKind, error) {
	k := ProductOptionKind(strings.ToUpper(strings.TrimSpace(value)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid product option kind %q", value)
	}
	return k, nil
}
