package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/config"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/logger"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox/payloads"
	"github.com/sweetorder/sweetorder-backend/pkg/redis"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			newOrderEvent(t, "event-one", 0),
			newOrderEvent(t, "event-two", 0),
		},
	}
	pub := &fakePublisher{errs: []error{errors.New("transient"), nil}}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: orderResolved("orders")}, &fakeDLQRepo{}, nil)

	handled, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, handled)

	require.Len(t, repo.failed, 1)
	require.Len(t, repo.published, 1)
	assert.Equal(t, repo.events[0].ID, repo.failed[0])
	assert.Equal(t, repo.events[1].ID, repo.published[0])
	assert.Empty(t, repo.terminal)
}

func TestServiceProcessBatchPublishesMessageToChannel(t *testing.T) {
	event := newOrderEvent(t, "event-one", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: orderResolved("sweetorder.events")}, &fakeDLQRepo{}, nil)

	_, err := service.processBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "sweetorder.events", pub.sent[0].channel)

	var msg outbox.Message
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &msg))
	assert.Equal(t, string(enums.EventOrderCreated), msg.EventType)
	assert.Equal(t, string(enums.AggregateOrder), msg.AggregateType)
	assert.Equal(t, event.AggregateID.String(), msg.AggregateID)
	assert.Equal(t, event.ID.String(), msg.Envelope.EventID)
}

func TestServiceProcessBatchEmpty(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, &fakeRegistry{}, &fakeDLQRepo{}, nil)

	handled, err := service.processBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, handled)
}

func TestServiceProcessBatchWritesDLQOnNonRetryable(t *testing.T) {
	event := newOrderEvent(t, "nonretryable", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	reg := &fakeRegistry{err: outbox.NonRetryableError{Err: errors.New("invalid payload")}}
	dlqRepo := &fakeDLQRepo{}
	reporter := &fakeReporter{}
	service := newTestService(t, repo, &fakePublisher{}, reg, dlqRepo, nil)
	service.reporter = reporter

	handled, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, handled)

	require.Len(t, dlqRepo.entries, 1)
	entry := dlqRepo.entries[0]
	assert.Equal(t, event.ID, entry.EventID)
	assert.True(t, bytes.Equal(entry.Payload, event.Payload))
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, entry.ErrorReason)
	require.NotNil(t, entry.ErrorMessage)
	assert.Contains(t, *entry.ErrorMessage, "invalid payload")
	assert.Equal(t, []uuid.UUID{event.ID}, repo.terminal)
	assert.Len(t, reporter.captured, 1)
}

func TestServiceProcessBatchWritesDLQOnMissingChannel(t *testing.T) {
	event := newOrderEvent(t, "no-channel", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	dlqRepo := &fakeDLQRepo{}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: orderResolved("")}, dlqRepo, nil)

	_, err := service.processBatch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, pub.sent)
	require.Len(t, dlqRepo.entries, 1)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, dlqRepo.entries[0].ErrorReason)
}

func TestServiceProcessBatchWritesDLQOnMaxAttempts(t *testing.T) {
	event := newOrderEvent(t, "max-attempts", 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{errs: []error{errors.New("transient")}}
	dlqRepo := &fakeDLQRepo{}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: orderResolved("orders")}, dlqRepo, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	handled, err := service.processBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, handled)

	require.Len(t, dlqRepo.entries, 1)
	assert.Equal(t, event.ID, dlqRepo.entries[0].EventID)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, dlqRepo.entries[0].ErrorReason)
	assert.Empty(t, repo.failed)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.terminal)
}

func TestServiceProcessBatchPropagatesFetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db down")}
	service := newTestService(t, repo, &fakePublisher{}, &fakeRegistry{}, &fakeDLQRepo{}, nil)

	_, err := service.processBatch(context.Background())
	require.Error(t, err)
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, &fakeRegistry{}, &fakeDLQRepo{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := service.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceRunFailsReadiness(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{pingErr: errors.New("refused")}, &fakeRegistry{}, &fakeDLQRepo{}, nil)

	err := service.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestServicePublishesThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	client := redis.NewFromRaw(raw)

	ctx := context.Background()
	sub := raw.Subscribe(ctx, "sweetorder.events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event := newOrderEvent(t, "relay", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	service := newTestService(t, repo, client, &fakeRegistry{resolved: orderResolved("sweetorder.events")}, &fakeDLQRepo{}, nil)

	_, err = service.processBatch(ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{event.ID}, repo.published)

	select {
	case msg := <-sub.Channel():
		var decoded outbox.Message
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
		assert.Equal(t, event.AggregateID.String(), decoded.AggregateID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message relayed")
	}
}

func TestNextBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, 200*time.Millisecond, nextBackoff(base, base, maxBackoff))
	assert.Equal(t, base*2, nextBackoff(0, base, maxBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(8*time.Second, base, maxBackoff))
}

func newTestService(t *testing.T, repo outboxRepository, pub publisher, registry registryResolver, dlq dlqRepository, outboxCfgOverride *config.OutboxConfig) *Service {
	t.Helper()
	outboxCfg := config.OutboxConfig{
		BatchSize:      2,
		PollIntervalMS: 20,
		MaxAttempts:    5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	logg := logger.New(logger.Options{
		ServiceName: "outbox-publisher-test",
		Output:      io.Discard,
	})
	service, err := NewService(ServiceParams{
		Config:        &config.Config{Outbox: outboxCfg},
		Logger:        logg,
		DB:            &fakeDB{},
		Publisher:     pub,
		Repository:    repo,
		Registry:      registry,
		DLQRepository: dlq,
	})
	require.NoError(t, err)
	return service
}

func newOrderEvent(tb testing.TB, eventID string, attempts int) models.OutboxEvent {
	tb.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelopePayload(tb, eventID),
		AttemptCount:  attempts,
	}
}

func orderResolved(channel string) *outbox.ResolvedEvent {
	return &outbox.ResolvedEvent{
		Descriptor: outbox.EventDescriptor{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			Channel:       channel,
		},
		Payload: &payloads.OrderCreatedEvent{},
	}
}

func mustEnvelopePayload(tb testing.TB, eventID string) json.RawMessage {
	tb.Helper()
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return payload
}

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return f.events, f.fetchErr
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDB struct{}

func (f *fakeDB) Ping(context.Context) error {
	return nil
}

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type sentMessage struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	errs    []error
	pingErr error
	sent    []sentMessage
}

func (f *fakePublisher) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload any) (int64, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return 0, err
		}
	}
	raw, _ := payload.([]byte)
	f.sent = append(f.sent, sentMessage{channel: channel, payload: raw})
	return 1, nil
}

type fakeRegistry struct {
	resolved *outbox.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*outbox.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Descriptor.AggregateType = event.AggregateType
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = time.Now()
	return &resolved, f.err
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeReporter struct {
	captured []error
}

func (f *fakeReporter) Capture(err error) {
	f.captured = append(f.captured, err)
}
