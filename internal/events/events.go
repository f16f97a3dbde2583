// Package events publishes domain events after their transaction commits.
package events

import "context"

// Routing keys.
const (
	TransactionCreated = "transaction.created"
	BookingCreated     = "booking.created"
	BookingUpdated     = "booking.updated"
	StockMoved         = "stock.moved"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ string, _ any) error {
	return nil
}
