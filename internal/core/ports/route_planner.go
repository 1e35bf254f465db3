package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// RoutePlanner is the outbound contract for the external routing collaborator.
// It is consulted only when a courier's reported speed cannot produce an
// arrival estimate. Implementations must treat the collaborator as optional:
// callers fall back to a distance heuristic on any error.
type RoutePlanner interface {
	// RouteDuration returns the expected travel time between two points.
	RouteDuration(ctx context.Context, from, to kernel.GeoPoint) (time.Duration, error)

	// ReverseGeocode resolves a coordinate pair into a human-readable address.
	// Callers substitute the "lat,lng" textual form when resolution fails.
	ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (string, error)
}
