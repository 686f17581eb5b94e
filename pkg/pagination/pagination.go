package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is the raw ?limit=&cursor= pair from a list request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the keyset position (created_at DESC, id DESC) of the last row served.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Page is a single slice of a cursor-paginated listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// NormalizeLimit clamps limit to (0, MaxLimit], substituting DefaultLimit for zero.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// LimitWithBuffer over-fetches one row so Build can tell whether a next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// wireCursor is the opaque token handed to clients, base64url over JSON.
type wireCursor struct {
	At time.Time `json:"t"`
	ID uuid.UUID `json:"id"`
}

func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(wireCursor{At: c.CreatedAt.UTC(), ID: c.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor returns nil for a blank value, meaning the first page.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var wc wireCursor
	if err := json.Unmarshal(raw, &wc); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	if wc.At.IsZero() || wc.ID == uuid.Nil {
		return nil, errors.New("invalid cursor: missing position")
	}
	return &Cursor{CreatedAt: wc.At, ID: wc.ID}, nil
}

// Apply orders q newest first and positions it after cursor. table qualifies the
// columns when the query joins.
func Apply(q *gorm.DB, table string, cursor *Cursor, limit int) *gorm.DB {
	createdAt, id := "created_at", "id"
	if table != "" {
		createdAt, id = table+".created_at", table+".id"
	}
	if cursor != nil {
		q = q.Where(
			fmt.Sprintf("(%s < ?) OR (%s = ? AND %s < ?)", createdAt, createdAt, id),
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	return q.Order(createdAt + " DESC").Order(id + " DESC").Limit(LimitWithBuffer(limit))
}

// Build trims the buffered row and derives the next cursor from the last kept item.
func Build[T any](rows []T, limit int, key func(T) Cursor) Page[T] {
	limit = NormalizeLimit(limit)
	page := Page[T]{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.NextCursor = EncodeCursor(key(page.Items[limit-1]))
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}
