package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sweetorder/sweetorder-backend/pkg/db/dbtest"
	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox/payloads"
)

func TestEmitPersistsEnvelopeInsideTx(t *testing.T) {
	client, conn := dbtest.Client(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	orderID := uuid.New()

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data:          payloads.OrderCreatedEvent{OrderID: orderID, OrderNumber: "ORD-20250314-001"},
		})
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	var rows []models.OutboxEvent
	if err := conn.Find(&rows).Error; err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 outbox row, got %d", len(rows))
	}
	var env PayloadEnvelope
	if err := json.Unmarshal(rows[0].Payload, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Version != 1 || env.EventID == "" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var data payloads.OrderCreatedEvent
	if err := json.Unmarshal(env.Data, &data); err != nil || data.OrderNumber != "ORD-20250314-001" {
		t.Fatalf("unexpected data %+v err=%v", data, err)
	}
}

func TestEmitRolledBackWithTx(t *testing.T) {
	client, conn := dbtest.Client(t)
	svc := NewService(NewRepository(conn), nil)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventStoreCreated,
			AggregateType: enums.AggregateStore,
			AggregateID:   uuid.New(),
			Data:          payloads.StoreCreatedEvent{Name: "cakes"},
		}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("expected abort error")
	}
	var count int64
	conn.Model(&models.OutboxEvent{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected rollback to drop the event, got %d rows", count)
	}
}

func TestEmitValidation(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	if err := svc.Emit(context.Background(), nil, DomainEvent{}); err == nil {
		t.Fatal("expected error without tx")
	}
	conn := dbtest.Open(t)
	if err := svc.Emit(context.Background(), conn, DomainEvent{EventType: "nope", AggregateType: enums.AggregateOrder}); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestRepositoryFetchAndMark(t *testing.T) {
	client, conn := dbtest.Client(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := client.WithTx(ctx, func(tx *gorm.DB) error {
			return svc.Emit(ctx, tx, DomainEvent{
				EventType:     enums.EventOrderConfirmed,
				AggregateType: enums.AggregateOrder,
				AggregateID:   uuid.New(),
				Data:          payloads.OrderConfirmedEvent{},
			})
		}); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	var rows []models.OutboxEvent
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		rows, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		if err != nil {
			return err
		}
		if err := repo.MarkPublishedTx(tx, rows[0].ID); err != nil {
			return err
		}
		if err := repo.MarkFailedTx(tx, rows[1].ID, errors.New("redis down")); err != nil {
			return err
		}
		return repo.MarkTerminalTx(tx, rows[2].ID, errors.New("bad payload"), 3)
	}); err != nil {
		t.Fatalf("tx: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 pending rows, got %d", len(rows))
	}

	var pending []models.OutboxEvent
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		pending, err = repo.FetchUnpublishedForPublish(tx, 10, 3)
		return err
	}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != rows[1].ID {
		t.Fatalf("expected only the retryable row, got %+v", pending)
	}
	if pending[0].AttemptCount != 1 || pending[0].LastError == nil || *pending[0].LastError != "redis down" {
		t.Fatalf("unexpected failure bookkeeping %+v", pending[0])
	}
}

func TestRegistryResolve(t *testing.T) {
	reg, err := NewRegistry("sweetorder.events")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	data, _ := json.Marshal(payloads.ProductDeletedEvent{ProductID: uuid.New()})
	env, _ := json.Marshal(PayloadEnvelope{Version: 1, EventID: "e1", Data: data})
	row := models.OutboxEvent{
		EventType:     enums.EventProductDeleted,
		AggregateType: enums.AggregateProduct,
		Payload:       env,
	}

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Channel != "sweetorder.events" || resolved.Envelope.EventID != "e1" {
		t.Fatalf("unexpected resolution %+v", resolved)
	}
	if _, ok := resolved.Payload.(*payloads.ProductDeletedEvent); !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}

	var nonRetry NonRetryableError
	row.AggregateType = enums.AggregateOrder
	if _, err := reg.Resolve(row); !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable aggregate mismatch, got %v", err)
	}
	row.AggregateType = enums.AggregateProduct
	row.Payload = json.RawMessage(`{"data":"oops"`)
	if _, err := reg.Resolve(row); !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable decode error, got %v", err)
	}
	row.EventType = "unknown"
	if _, err := reg.Resolve(row); !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable unknown type, got %v", err)
	}

	if _, err := NewRegistry(""); err == nil {
		t.Fatal("expected error without channel")
	}
}

func TestDLQRepositoryInsert(t *testing.T) {
	client, conn := dbtest.Client(t)
	dlq := NewDLQRepository()
	ctx := context.Background()

	msg := "max publish attempts reached"
	entry := models.OutboxDLQ{
		EventID:       uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &msg,
		AttemptCount:  10,
		FailedAt:      time.Now().UTC(),
	}
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return dlq.InsertTx(tx, entry)
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var stored models.OutboxDLQ
	if err := conn.First(&stored, "event_id = ?", entry.EventID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.ID == uuid.Nil || stored.ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("unexpected dlq row %+v", stored)
	}

	entry.ErrorReason = "bogus"
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return dlq.InsertTx(tx, entry)
	}); err == nil {
		t.Fatal("expected invalid reason to be rejected")
	}
	if err := dlq.InsertTx(nil, entry); err == nil {
		t.Fatal("expected nil transaction to be rejected")
	}
}
