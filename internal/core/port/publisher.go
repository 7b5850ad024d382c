package port

import (
	"context"

	"fundraiser/internal/core/domain"
)

// EventPublisher delivers committed notifications to external observers.
// Delivery is at-least-once: a batch may be published again after a failure.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event) error
}
