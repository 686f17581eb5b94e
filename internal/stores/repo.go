package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/internal/users"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) storeRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns all stores owned by the provided user, oldest first.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Find(&stores).Error
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// Update saves the editable store columns. like_count is never written here.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).
		Model(store).
		Select("name", "description", "phone", "address", "road_address", "zone_code", "latitude", "longitude").
		Updates(store).Error
}

// UserPromoter runs the users repository role upgrade inside the store transaction.
type UserPromoter struct {
	Users *users.Repository
}

// PromoteToSeller upgrades the user within tx.
func (p UserPromoter) PromoteToSeller(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if p.Users == nil {
		return fmt.Errorf("users repository required")
	}
	return p.Users.WithTx(tx).PromoteToSeller(ctx, userID)
}
