package feeds

import (
	"time"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
)

// FeedDTO is the public shape of a store feed post.
type FeedDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"storeId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateFeedInput is the payload for a new post.
type CreateFeedInput struct {
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content" validate:"required,max=5000"`
}

// UpdateFeedInput edits a post. Nil fields are kept.
type UpdateFeedInput struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1,max=5000"`
}

func fromModel(m *models.Feed) FeedDTO {
	return FeedDTO{
		ID:        m.ID,
		StoreID:   m.StoreID,
		Title:     m.Title,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
