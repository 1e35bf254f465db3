package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Every status change goes through ApplyTransition, which the adapter
// expresses as a single conditional update whose predicate includes the
// expected current status. A transition that matches zero rows means a
// concurrent caller won the race; the repository reports that as applied ==
// false and never as an error. Read-then-write sequences against the status
// column are forbidden by contract.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. Returns errs.ErrObjectNotFound when the
	// order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ApplyTransition persists the aggregate's current state guarded by the
	// expected previous status. Returns applied == false when the stored
	// status no longer matches fromStatus.
	ApplyTransition(ctx context.Context, aggregate *order.Order, fromStatus order.Status) (applied bool, err error)

	// GetExpiredAssignments retrieves orders pending acceptance whose
	// assignment proposal is older than the acceptance window at the given
	// instant. Used by the expiry sweep.
	GetExpiredAssignments(ctx context.Context, now time.Time) ([]*order.Order, error)

	// GetAssignmentsForCourier retrieves the orders currently proposed to or
	// carried by the courier (pending acceptance or in transit).
	GetAssignmentsForCourier(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error)

	// GetActiveByCourier retrieves the courier's orders in any non-terminal
	// courier-bound status.
	GetActiveByCourier(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error)

	// DeleteTerminatedBefore removes delivered and cancelled orders whose last
	// update predates the cutoff. Returns the number of removed orders.
	DeleteTerminatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
