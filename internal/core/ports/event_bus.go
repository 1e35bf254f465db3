package ports

import (
	"context"
	"time"
)

// OrderTopic returns the broadcast topic carrying position updates for one
// order. Subscribers of an order's tracking stream listen on this topic.
func OrderTopic(orderID string) string {
	return "order-" + orderID
}

// PositionUpdate is the payload broadcast on an order topic whenever the
// assigned or prospective courier reports a position while the order is in a
// trackable status.
type PositionUpdate struct {
	OrderID   string    `json:"order_id"`
	CourierID string    `json:"courier_id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     float64   `json:"speed"`
	Bearing   float64   `json:"bearing"`
	Accuracy  float64   `json:"accuracy"`
	SampledAt time.Time `json:"sampled_at"`
}

// EventBus is the fan-out contract for real-time order tracking.
//
// Publish failures must never fail the operation that triggered them; callers
// log and continue. Subscribe delivers raw payloads until the context is
// cancelled, after which the implementation releases the subscription.
type EventBus interface {
	// Publish broadcasts a position update on the order's topic.
	Publish(ctx context.Context, update PositionUpdate) error

	// Subscribe starts listening on the given topic. The returned channel is
	// closed when ctx is cancelled or the underlying connection drops.
	Subscribe(ctx context.Context, topic string) (<-chan PositionUpdate, error)
}
