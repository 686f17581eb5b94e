package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"github.com/sweetorder/sweetorder-backend/pkg/metrics"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultMaxAttempts    = 10
	defaultPublishTimeout = 5 * time.Second
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

// publisher is satisfied by *redis.Client. The receiver count is ignored: pub/sub
// delivery with no subscriber online still counts as published.
type publisher interface {
	Ping(context.Context) error
	Publish(ctx context.Context, channel string, payload any) (int64, error)
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*outbox.ResolvedEvent, error)
}

// errorReporter is satisfied by *telemetry.Reporter.
type errorReporter interface {
	Capture(err error)
}

type ServiceParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            dbClient
	Publisher     publisher
	Repository    outboxRepository
	Registry      registryResolver
	DLQRepository dlqRepository
	Metrics       *metrics.PublisherMetrics
	Reporter      errorReporter
}

// Service relays committed outbox rows to the Redis event channel.
type Service struct {
	logg     *logger.Logger
	db       dbClient
	repo     outboxRepository
	pub      publisher
	registry registryResolver
	dlq      dlqRepository
	metrics  *metrics.PublisherMetrics
	reporter errorReporter

	batchSize   int
	maxAttempts int
	interval    time.Duration
	jitter      *rand.Rand
}

func NewService(p ServiceParams) (*Service, error) {
	switch {
	case p.Config == nil:
		return nil, errors.New("config is required")
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.DB == nil:
		return nil, errors.New("database client is required")
	case p.Publisher == nil:
		return nil, errors.New("publisher is required")
	case p.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case p.Registry == nil:
		return nil, errors.New("event registry is required")
	case p.DLQRepository == nil:
		return nil, errors.New("dlq repository is required")
	}

	cfg := p.Config.Outbox
	s := &Service{
		logg:        p.Logger,
		db:          p.DB,
		repo:        p.Repository,
		pub:         p.Publisher,
		registry:    p.Registry,
		dlq:         p.DLQRepository,
		metrics:     p.Metrics,
		reporter:    p.Reporter,
		batchSize:   positiveOr(cfg.BatchSize, defaultBatchSize),
		maxAttempts: positiveOr(cfg.MaxAttempts, defaultMaxAttempts),
		interval:    defaultPollInterval,
		jitter:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if cfg.PollIntervalMS > 0 {
		s.interval = time.Duration(cfg.PollIntervalMS) * time.Millisecond
	}
	return s, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Run drains the outbox until ctx ends. A non-empty batch is followed at once by
// the next one, an empty batch waits one poll interval, and a failed batch backs
// off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := s.pub.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	wait := s.interval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox.batch_failed", err)
			wait = nextBackoff(wait, s.interval, maxBackoff)
		case n > 0:
			wait = s.interval
			continue
		default:
			wait = s.interval
		}

		if err := sleepCtx(ctx, wait+s.jitterDelay()); err != nil {
			return err
		}
	}
}

// outcome is what happened to a single outbox row in a batch.
type outcome int

const (
	outcomePublished outcome = iota
	outcomeRetry
	outcomeParked
)

// processBatch locks one batch and settles every row in it inside the same
// transaction. It returns how many rows were handled.
func (s *Service) processBatch(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveBatch(time.Since(start)) }()

	var tally [3]int
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		for _, event := range events {
			result, err := s.settle(ctx, tx, event)
			if err != nil {
				return err
			}
			tally[result]++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	handled := tally[outcomePublished] + tally[outcomeRetry] + tally[outcomeParked]
	if handled > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"published": tally[outcomePublished],
			"retried":   tally[outcomeRetry],
			"parked":    tally[outcomeParked],
		}), "outbox.batch_settled")
	}
	return handled, nil
}

// settle publishes event and records the result. Only bookkeeping failures are
// returned; publish failures are recorded on the row.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (outcome, error) {
	ctx = s.logg.WithFields(ctx, eventFields(event))
	eventType := string(event.EventType)

	resolved, err := s.registry.Resolve(event)
	if err == nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"event_id": resolved.Envelope.EventID,
			"channel":  resolved.Descriptor.Channel,
		})
		err = s.publish(ctx, event, resolved)
	}

	var nonRetryable outbox.NonRetryableError
	switch {
	case err == nil:
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return outcomePublished, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(eventType)
		s.logg.Debug(ctx, "outbox.published")
		return outcomePublished, nil

	case errors.As(err, &nonRetryable):
		return outcomeParked, s.park(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err)

	case event.AttemptCount+1 >= s.maxAttempts:
		return outcomeParked, s.park(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", event.AttemptCount+1, err))

	default:
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "outbox.publish_retry")
		s.metrics.IncFailed(eventType, false)
		if err := s.repo.MarkFailedTx(tx, event.ID, err); err != nil {
			return outcomeRetry, fmt.Errorf("mark failed %s: %w", event.ID, err)
		}
		return outcomeRetry, nil
	}
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *outbox.ResolvedEvent) error {
	channel := resolved.Descriptor.Channel
	if channel == "" {
		return outbox.NonRetryableError{Err: fmt.Errorf("no channel configured for %s", event.EventType)}
	}

	body, err := json.Marshal(outbox.Message{
		EventType:     string(event.EventType),
		AggregateType: string(event.AggregateType),
		AggregateID:   event.AggregateID.String(),
		Envelope:      resolved.Envelope,
	})
	if err != nil {
		return outbox.NonRetryableError{Err: fmt.Errorf("encode message: %w", err)}
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	_, err = s.pub.Publish(publishCtx, channel, body)
	return err
}

// park copies event into the dead-letter table and pins its attempt count at the
// ceiling so it is never fetched again.
func (s *Service) park(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"error":        cause.Error(),
		"error_reason": string(reason),
	}), "outbox.parked")
	s.metrics.IncFailed(string(event.EventType), true)
	if s.reporter != nil {
		s.reporter.Capture(fmt.Errorf("outbox event %s parked (%s): %w", event.ID, reason, cause))
	}

	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (s *Service) jitterDelay() time.Duration {
	return time.Duration(s.jitter.Int63n(int64(jitterWindow)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, ceiling time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	if next := current * 2; next < ceiling {
		return next
	}
	return ceiling
}
