package feeds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// Repository persists feed posts.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to feed operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, feed *models.Feed) error {
	return r.db.WithContext(ctx).Create(feed).Error
}

func (r *Repository) Update(ctx context.Context, feed *models.Feed) error {
	return r.db.WithContext(ctx).Model(feed).Select("title", "content").Updates(feed).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Feed{})
	return res.RowsAffected, res.Error
}

// ListByStore returns one buffered page of a store's posts, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Feed, error) {
	q := r.db.WithContext(ctx).Model(&models.Feed{}).Where("store_id = ?", storeID)
	q = pagination.Apply(q, "", cursor, limit)

	var rows []models.Feed
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
