package service

import (
	"context"

	"github.com/iliyamo/beverage-reservation/internal/queue"
	"github.com/iliyamo/beverage-reservation/internal/repository"
)

// EventPublisher announces committed reservations and orders.
// Publication is best effort: failures are logged by the caller and
// never undo the commit.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}

// Tx is re-exported so callers wiring a store need not import repository.
type Tx = repository.Tx
