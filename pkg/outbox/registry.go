package outbox

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
	"github.com/sweetorder/sweetorder-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its channel and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Channel        string
	PayloadFactory func() any
}

// ResolvedEvent is an outbox row decoded against its descriptor.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   PayloadEnvelope
	Payload    any
}

// NonRetryableError signals the publisher should park a row instead of retrying.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// Registry maps each supported event type to its descriptor.
type Registry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NewRegistry registers every domain event on the given channel.
func NewRegistry(channel string) (*Registry, error) {
	if channel == "" {
		return nil, errors.New("channel is required")
	}
	r := &Registry{entries: map[enums.OutboxEventType]EventDescriptor{}}
	r.register(enums.EventOrderCreated, enums.AggregateOrder, channel, func() any { return &payloads.OrderCreatedEvent{} })
	r.register(enums.EventOrderConfirmed, enums.AggregateOrder, channel, func() any { return &payloads.OrderConfirmedEvent{} })
	r.register(enums.EventProductDeleted, enums.AggregateProduct, channel, func() any { return &payloads.ProductDeletedEvent{} })
	r.register(enums.EventStoreCreated, enums.AggregateStore, channel, func() any { return &payloads.StoreCreatedEvent{} })
	return r, nil
}

func (r *Registry) register(eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType, channel string, factory func() any) {
	r.entries[eventType] = EventDescriptor{
		EventType:      eventType,
		AggregateType:  aggregate,
		Channel:        channel,
		PayloadFactory: factory,
	}
}

// Resolve decodes row. Unknown types, aggregate mismatches and undecodable payloads
// are NonRetryableError.
func (r *Registry) Resolve(row models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[row.EventType]
	if !ok {
		return nil, NonRetryableError{Err: fmt.Errorf("unregistered event type %q", row.EventType)}
	}
	if desc.AggregateType != row.AggregateType {
		return nil, NonRetryableError{Err: fmt.Errorf("event %s expects aggregate %s, got %s", row.EventType, desc.AggregateType, row.AggregateType)}
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		return nil, NonRetryableError{Err: fmt.Errorf("decode envelope: %w", err)}
	}
	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NonRetryableError{Err: fmt.Errorf("decode %s payload: %w", row.EventType, err)}
	}
	return &ResolvedEvent{Descriptor: desc, Envelope: envelope, Payload: payload}, nil
}
