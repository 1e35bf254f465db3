package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// PositionRepository persists the single last-known position per courier.
//
// Upsert is last-write-wins keyed by courier id, guarded by the sample
// timestamp: an incoming sample older than the stored one is dropped and
// reported as applied == false, never as an error.
type PositionRepository interface {
	// Get retrieves the courier's last known position. Returns
	// errs.ErrObjectNotFound when the courier has never reported.
	Get(ctx context.Context, courierID kernel.UUID) (*courier.Position, error)

	// Upsert stores the position, replacing any previous record for the same
	// courier unless the stored sample is newer.
	Upsert(ctx context.Context, position *courier.Position) (applied bool, err error)

	// StopTracking clears the courier's active tracking flag while keeping
	// the last known coordinates readable.
	StopTracking(ctx context.Context, courierID kernel.UUID) error
}
