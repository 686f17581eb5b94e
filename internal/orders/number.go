package orders

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const orderNumberDateLayout = "20060102"

type sequenceCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CounterKey(name string) string
}

// NumberGenerator hands out human-readable order numbers of the form PREFIX-YYYYMMDD-NNN.
type NumberGenerator interface {
	Next(ctx context.Context, tx *gorm.DB, day time.Time) (string, error)
}

type numberGenerator struct {
	prefix  string
	counter sequenceCounter
	ttl     time.Duration
	repo    Repository
}

// NewNumberGenerator uses the redis daily counter when counter is non-nil and falls
// back to counting the day's orders otherwise.
func NewNumberGenerator(prefix string, counter sequenceCounter, ttl time.Duration, repo Repository) NumberGenerator {
	if prefix == "" {
		prefix = "ORD"
	}
	return &numberGenerator{prefix: prefix, counter: counter, ttl: ttl, repo: repo}
}

func (g *numberGenerator) Next(ctx context.Context, tx *gorm.DB, day time.Time) (string, error) {
	stamp := day.UTC().Format(orderNumberDateLayout)
	dayPrefix := fmt.Sprintf("%s-%s-", g.prefix, stamp)

	if g.counter != nil {
		seq, err := g.counter.IncrWithTTL(ctx, g.counter.CounterKey("order:"+stamp), g.ttl)
		if err != nil {
			return "", fmt.Errorf("order sequence: %w", err)
		}
		return formatOrderNumber(dayPrefix, seq), nil
	}

	count, err := g.repo.WithTx(tx).CountOrderNumbersWithPrefix(ctx, dayPrefix)
	if err != nil {
		return "", fmt.Errorf("count orders for %s: %w", stamp, err)
	}
	return formatOrderNumber(dayPrefix, count+1), nil
}

func formatOrderNumber(dayPrefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", dayPrefix, seq)
}
