package events

import (
	"context"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

// EventType names a change to the catalog
type EventType string

const (
	ProductCreated EventType = "product.created"
	ProductUpdated EventType = "product.updated"
	ProductDeleted EventType = "product.deleted"
)

// ProductEvent is published after a product write has been stored
type ProductEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Product    domain.Product `json:"product"`
}

// NewProductEvent builds an event carrying a snapshot of product
func NewProductEvent(eventType EventType, product *domain.Product) ProductEvent {
	return ProductEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Product:    *product,
	}
}

// Publisher delivers product events to a broker
type Publisher interface {
	Publish(ctx context.Context, event ProductEvent) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that drops every event
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event ProductEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
