package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
)

// SeedUser inserts a user with the given role.
func SeedUser(t testing.TB, conn *gorm.DB, role enums.UserRole) models.User {
	t.Helper()
	user := models.User{
		Email:        uuid.NewString() + "@sweetorder.test",
		PasswordHash: "not-a-real-hash",
		Nickname:     "tester",
		Role:         role,
		IsActive:     true,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedStore inserts a store owned by ownerID.
func SeedStore(t testing.TB, conn *gorm.DB, ownerID uuid.UUID) models.Store {
	t.Helper()
	store := models.Store{
		UserID:  ownerID,
		Name:    "Sweet Bakery",
		Address: "1 Cake St",
	}
	if err := conn.Create(&store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

// SeedProduct inserts an enabled product priced 30000 with two sizes and two flavors:
// sizes "1호" (+0) and "2호" (+5000), flavors "vanilla" (+0) and "chocolate" (+2000).
func SeedProduct(t testing.TB, conn *gorm.DB, storeID uuid.UUID, stock int64) models.Product {
	t.Helper()
	product := models.Product{
		StoreID:          storeID,
		Name:             "Lettering Cake",
		SalePrice:        30000,
		Stock:            stock,
		VisibilityStatus: enums.ProductVisibilityEnable,
		Options: []models.ProductOption{
			{Kind: enums.ProductOptionSize, Label: "1호", Price: 0},
			{Kind: enums.ProductOptionSize, Label: "2호", Price: 5000},
			{Kind: enums.ProductOptionFlavor, Label: "vanilla", Price: 0},
			{Kind: enums.ProductOptionFlavor, Label: "chocolate", Price: 2000},
		},
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// OptionID returns the id of the seeded option with the given label.
func OptionID(t testing.TB, product models.Product, label string) uuid.UUID {
	t.Helper()
	for _, opt := range product.Options {
		if opt.Label == label {
			return opt.ID
		}
	}
	t.Fatalf("option %q not found on product %s", label, product.ID)
	return uuid.Nil
}
