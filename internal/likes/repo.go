package likes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// Repository holds the statements of the like transactions. Every method takes the
// gorm handle to run on so the service can compose them inside one transaction.
type Repository struct{}

// NewRepository builds the like repository.
func NewRepository() *Repository {
	return &Repository{}
}

// TargetExists reports whether the target row is present and not soft-deleted.
func (r *Repository) TargetExists(tx *gorm.DB, t target, targetID uuid.UUID) (bool, error) {
	var n int64
	if err := tx.Model(t.model()).Where("id = ?", targetID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertLike writes the join row. A duplicate surfaces as a unique violation.
func (r *Repository) InsertLike(tx *gorm.DB, t target, userID, targetID uuid.UUID) error {
	return tx.Create(t.newLike(userID, targetID)).Error
}

// DeleteLike removes the join row and reports how many rows went away.
func (r *Repository) DeleteLike(tx *gorm.DB, t target, userID, targetID uuid.UUID) (int64, error) {
	res := tx.Where("user_id = ? AND "+t.column+" = ?", userID, targetID).
		Delete(t.likeModel())
	return res.RowsAffected, res.Error
}

// LikeExists reports whether userID currently likes targetID.
func (r *Repository) LikeExists(tx *gorm.DB, t target, userID, targetID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(t.likeModel()).
		Where("user_id = ? AND "+t.column+" = ?", userID, targetID).
		Count(&n).Error
	return n > 0, err
}

// IncrementCount adds one to like_count and reports the affected row count.
func (r *Repository) IncrementCount(tx *gorm.DB, t target, targetID uuid.UUID) (int64, error) {
	res := tx.Model(t.model()).
		Where("id = ?", targetID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	return res.RowsAffected, res.Error
}

// DecrementCount subtracts one from like_count without going below zero.
func (r *Repository) DecrementCount(tx *gorm.DB, t target, targetID uuid.UUID) (int64, error) {
	res := tx.Model(t.model()).
		Where("id = ? AND like_count > 0", targetID).
		UpdateColumn("like_count", gorm.Expr("like_count - ?", 1))
	return res.RowsAffected, res.Error
}

// Count reads the current like_count of the target.
func (r *Repository) Count(tx *gorm.DB, t target, targetID uuid.UUID) (int64, error) {
	var counts []int64
	if err := tx.Model(t.model()).Where("id = ?", targetID).Pluck("like_count", &counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return counts[0], nil
}

// ListLikedProducts returns the products userID liked, most recent like first.
func (r *Repository) ListLikedProducts(ctx context.Context, db *gorm.DB, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]likedProductRecord, error) {
	q := db.WithContext(ctx).
		Table("product_likes pl").
		Select("pl.id AS like_id, pl.created_at AS liked_at, p.id AS product_id, p.store_id, p.name, p.sale_price, p.like_count, p.visibility_status").
		Joins("JOIN products p ON p.id = pl.product_id AND p.deleted_at IS NULL").
		Where("pl.user_id = ?", userID)
	q = pagination.Apply(q, "pl", cursor, limit)

	var rows []likedProductRecord
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLikedStores returns the stores userID liked, most recent like first.
func (r *Repository) ListLikedStores(ctx context.Context, db *gorm.DB, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]likedStoreRecord, error) {
	q := db.WithContext(ctx).
		Table("store_likes sl").
		Select("sl.id AS like_id, sl.created_at AS liked_at, s.id AS store_id, s.name, s.address, s.like_count").
		Joins("JOIN stores s ON s.id = sl.store_id").
		Where("sl.user_id = ?", userID)
	q = pagination.Apply(q, "sl", cursor, limit)

	var rows []likedStoreRecord
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
