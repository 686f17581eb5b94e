// Package likes implements the like/unlike counter transactions for products and stores.
package likes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
	dbpkg "github.com/sweetorder/sweetorder-backend/pkg/db"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/metrics"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

const (
	opLike   = "like"
	opUnlike = "unlike"
)

// Service exposes the like operations. The join row and the target's like_count
// always change in the same transaction.
type Service interface {
	AddLike(ctx context.Context, kind enums.LikeTarget, userID, targetID uuid.UUID) (LikeState, error)
	RemoveLike(ctx context.Context, kind enums.LikeTarget, userID, targetID uuid.UUID) (LikeState, error)
	IsLiked(ctx context.Context, kind enums.LikeTarget, userID, targetID uuid.UUID) (LikeState, error)
	ListLikedProducts(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[LikedProductDTO], error)
	ListLikedStores(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[LikedStoreDTO], error)
}

// ServiceParams groups dependencies for the likes service.
type ServiceParams struct {
	DB      *dbpkg.Client
	Repo    *Repository
	Config  config.LikesConfig
	Metrics *metrics.LikeMetrics
}

type service struct {
	db      *dbpkg.Client
	repo    *Repository
	txOpts  dbpkg.TxOptions
	metrics *metrics.LikeMetrics
}

// NewService builds the likes service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client is required")
	}
	repo := params.Repo
	if repo == nil {
		repo = NewRepository()
	}
	return &service{
		db:   params.DB,
		repo: repo,
		txOpts: dbpkg.TxOptions{
			MaxWait: params.Config.TxMaxWait,
			Timeout: params.Config.TxTimeout,
		},
		metrics: params.Metrics,
	}, nil
}

func (s *service) AddLike(ctx context.Context, kind enums.LikeTarget, userID, targetID uuid.UUID) (state LikeState, err error) {
	t, err := s.resolve(kind, userID, targetID)
	if err != nil {
		return LikeState{}, err
	}
	defer func() { s.observe(kind, opLike, err) }()

	state = LikeState{Target: kind, TargetID: targetID, Liked: true}
	if err = s.ensureTarget(s.db.DB().WithContext(ctx), t, targetID); err != nil {
		return LikeState{}, err
	}
	err = s.db.WithTxOptions(ctx, s.txOpts, func(tx *gorm.DB) error {
		if err := s.repo.InsertLike(tx, t, userID, targetID); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "already liked")
			}
			return fmt.Errorf("insert %s like: %w", kind, err)
		}
		affected, err := s.repo.IncrementCount(tx, t, targetID)
		if err != nil {
			return fmt.Errorf("increment %s like count: %w", kind, err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, t.notFound)
		}
		state.LikeCount, err = s.repo.Count(tx, t, targetID)
		if err != nil {
			return fmt.Errorf("read %s like count: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		return LikeState{}, err
	}
	return state, nil
}

func (s *service) RemoveLike(ctx context.Context, kind enums.LikeTarget, userID, targetID uuid.UUID) (state LikeState, err error) {
	t, err := s.resolve(kind, userID, targetID)
	if err != nil {
		return LikeState{}, err
	}
	defer func() { s.observe(kind, opUnlike, err) }()

	state = LikeState{Target: kind, TargetID: targetID, Liked: false}
	if err = s.ensureTarget(s.db.DB().WithContext(ctx), t, targetID); err != nil {
		return LikeState{}, err
	}
	err = s.db.WithTxOptions(ctx, s.txOpts, func(tx *gorm.DB) error {
		deleted, err := s.repo.DeleteLike(tx, t, userID, targetID)
		if err != nil {
			return fmt.Errorf("delete %s like: %w", kind, err)
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "not liked")
		}
		if _, err := s.repo.DecrementCount(tx, t, targetID); err != nil {
			return fmt.Errorf("decrement %s like count: %w", kind, err)
		}
		state.LikeCount, err = s.repo.Count(tx, t, targetID)
		if err != nil {
			return fmt.Errorf("read %s like count: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		return LikeState{}, err
	}
	return state, nil
}

func (s *service) IsLiked(ctx context.Context, kind enums.LikeTarget, userID, targetID uuid.UUID) (LikeState, error) {
	t, err := s.resolve(kind, userID, targetID)
	if err != nil {
		return LikeState{}, err
	}
	tx := s.db.DB().WithContext(ctx)
	if err := s.ensureTarget(tx, t, targetID); err != nil {
		return LikeState{}, err
	}
	liked, err := s.repo.LikeExists(tx, t, userID, targetID)
	if err != nil {
		return LikeState{}, fmt.Errorf("check %s like: %w", kind, err)
	}
	count, err := s.repo.Count(tx, t, targetID)
	if err != nil {
		return LikeState{}, fmt.Errorf("read %s like count: %w", kind, err)
	}
	return LikeState{Target: kind, TargetID: targetID, Liked: liked, LikeCount: count}, nil
}

func (s *service) ListLikedProducts(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[LikedProductDTO], error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[LikedProductDTO]{}, err
	}
	rows, err := s.repo.ListLikedProducts(ctx, s.db.DB(), userID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[LikedProductDTO]{}, fmt.Errorf("list liked products: %w", err)
	}
	page := pagination.Build(rows, params.Limit, likedProductRecord.cursor)
	out := pagination.Page[LikedProductDTO]{
		Items:      make([]LikedProductDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, row := range page.Items {
		out.Items = append(out.Items, row.toDTO())
	}
	return out, nil
}

func (s *service) ListLikedStores(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[LikedStoreDTO], error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[LikedStoreDTO]{}, err
	}
	rows, err := s.repo.ListLikedStores(ctx, s.db.DB(), userID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[LikedStoreDTO]{}, fmt.Errorf("list liked stores: %w", err)
	}
	page := pagination.Build(rows, params.Limit, likedStoreRecord.cursor)
	out := pagination.Page[LikedStoreDTO]{
		Items:      make([]LikedStoreDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, row := range page.Items {
		out.Items = append(out.Items, row.toDTO())
	}
	return out, nil
}

func (s *service) resolve(kind enums.LikeTarget, userID, targetID uuid.UUID) (target, error) {
	t, ok := targetFor(kind)
	if !ok {
		return target{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown like target %q", kind))
	}
	if userID == uuid.Nil {
		return target{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user is required")
	}
	if targetID == uuid.Nil {
		return target{}, pkgerrors.New(pkgerrors.CodeValidation, "target id is required")
	}
	return t, nil
}

func (s *service) ensureTarget(tx *gorm.DB, t target, targetID uuid.UUID) error {
	exists, err := s.repo.TargetExists(tx, t, targetID)
	if err != nil {
		return fmt.Errorf("load %s: %w", t.kind, err)
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, t.notFound)
	}
	return nil
}

func (s *service) observe(kind enums.LikeTarget, op string, err error) {
	s.metrics.Observe(string(kind), op, resultLabel(err))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
		return metrics.ResultConflict
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}
