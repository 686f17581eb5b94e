// Package feeds manages the posts a store publishes.
package feeds

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	pkgerrors "github.com/sweetorder/sweetorder-backend/pkg/errors"
	"github.com/sweetorder/sweetorder-backend/pkg/pagination"
)

// Service exposes feed operations.
type Service interface {
	Create(ctx context.Context, callerID, storeID uuid.UUID, input CreateFeedInput) (*FeedDTO, error)
	Update(ctx context.Context, callerID, feedID uuid.UUID, input UpdateFeedInput) (*FeedDTO, error)
	Delete(ctx context.Context, callerID, feedID uuid.UUID) error
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (pagination.Page[FeedDTO], error)
}

type feedRepository interface {
	Create(ctx context.Context, feed *models.Feed) error
	Update(ctx context.Context, feed *models.Feed) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Feed, error)
}

type ownershipGuard interface {
	Store(ctx context.Context, storeID, callerID uuid.UUID) (*models.Store, error)
	Feed(ctx context.Context, feedID, callerID uuid.UUID) (*models.Feed, error)
}

type service struct {
	repo  feedRepository
	guard ownershipGuard
}

// NewService builds a feed service.
func NewService(repo feedRepository, guard ownershipGuard) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feed repository required")
	}
	if guard == nil {
		return nil, fmt.Errorf("ownership guard required")
	}
	return &service{repo: repo, guard: guard}, nil
}

func (s *service) Create(ctx context.Context, callerID, storeID uuid.UUID, input CreateFeedInput) (*FeedDTO, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content are required")
	}
	if _, err := s.guard.Store(ctx, storeID, callerID); err != nil {
		return nil, err
	}

	feed := &models.Feed{StoreID: storeID, Title: title, Content: content}
	if err := s.repo.Create(ctx, feed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create feed")
	}
	dto := fromModel(feed)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, callerID, feedID uuid.UUID, input UpdateFeedInput) (*FeedDTO, error) {
	feed, err := s.guard.Feed(ctx, feedID, callerID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		feed.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		feed.Content = strings.TrimSpace(*input.Content)
	}
	if feed.Title == "" || feed.Content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content cannot be blank")
	}
	if err := s.repo.Update(ctx, feed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update feed")
	}
	dto := fromModel(feed)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, callerID, feedID uuid.UUID) error {
	if _, err := s.guard.Feed(ctx, feedID, callerID); err != nil {
		return err
	}
	rows, err := s.repo.Delete(ctx, feedID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete feed")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "feed not found")
	}
	return nil
}

func (s *service) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (pagination.Page[FeedDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[FeedDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByStore(ctx, storeID, cursor, params.Limit)
	if err != nil {
		return pagination.Page[FeedDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list feeds")
	}
	page := pagination.Build(rows, params.Limit, func(f models.Feed) pagination.Cursor {
		return pagination.Cursor{CreatedAt: f.CreatedAt, ID: f.ID}
	})
	out := pagination.Page[FeedDTO]{
		Items:      make([]FeedDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		out.Items = append(out.Items, fromModel(&page.Items[i]))
	}
	return out, nil
}
