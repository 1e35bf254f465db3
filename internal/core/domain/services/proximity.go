package services

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Proximity zone radii in meters. Boundaries are inclusive: a courier exactly
// 100 m from the destination has arrived.
const (
	ArrivedRadiusMeters = 100.0
	NearbyRadiusMeters  = 500.0
	EnRouteRadiusMeters = 2000.0
)

// fallbackMinutesPerKm drives the arrival heuristic used when neither the
// courier's speed nor the routing collaborator can produce an estimate.
const fallbackMinutesPerKm = 3.0

// Zone is the proximity classification of a courier relative to a delivery
// destination. Tokens are exposed verbatim through the tracking API.
type Zone string

const (
	ZoneArrived Zone = "arrived"
	ZoneNearby  Zone = "nearby"
	ZoneEnRoute Zone = "en_route"
	ZoneFar     Zone = "far"
)

// String returns the zone token.
func (z Zone) String() string {
	return string(z)
}

// ClassifyZone maps a distance in meters onto a proximity zone.
func ClassifyZone(distanceMeters float64) Zone {
	switch {
	case distanceMeters <= ArrivedRadiusMeters:
		return ZoneArrived
	case distanceMeters <= NearbyRadiusMeters:
		return ZoneNearby
	case distanceMeters <= EnRouteRadiusMeters:
		return ZoneEnRoute
	default:
		return ZoneFar
	}
}

// Estimate is the result of a proximity calculation: how far the courier is,
// which zone that falls into, and when they are expected to arrive.
// Approximate marks estimates produced by the distance heuristic rather than
// by motion data or the routing collaborator.
type Estimate struct {
	DistanceMeters float64
	Zone           Zone
	Arrival        time.Duration
	Approximate    bool
}

// ProximityEstimator is a domain service computing distance, zone, and
// estimated arrival for a courier heading to a delivery destination.
//
// Arrival selection:
//  1. reported speed above zero: straight-line distance over speed
//  2. otherwise: the routing collaborator's duration
//  3. collaborator unavailable or failing: 3 minutes per kilometer, flagged
//     approximate
type ProximityEstimator struct {
	planner ports.RoutePlanner
}

// NewProximityEstimator creates a ProximityEstimator. The planner may be nil;
// estimation then degrades to the distance heuristic for stationary couriers.
func NewProximityEstimator(planner ports.RoutePlanner) ProximityEstimator {
	return ProximityEstimator{planner: planner}
}

// Estimate computes the courier's distance to destination, proximity zone,
// and expected arrival. Returns a validation error when the position or
// destination is not properly constructed; collaborator failures never
// surface as errors, they only degrade the estimate.
func (e ProximityEstimator) Estimate(
	ctx context.Context,
	position *courier.Position,
	destination kernel.GeoPoint,
) (Estimate, error) {
	if err := position.Validate(); err != nil {
		return Estimate{}, err
	}
	if err := destination.Validate(); err != nil {
		return Estimate{}, err
	}

	distance, err := position.Point().DistanceTo(destination)
	if err != nil {
		return Estimate{}, err
	}

	result := Estimate{
		DistanceMeters: distance,
		Zone:           ClassifyZone(distance),
	}

	if speed := position.Speed(); speed > 0 {
		result.Arrival = time.Duration(distance / speed * float64(time.Second))
		return result, nil
	}

	if e.planner != nil {
		duration, err := e.planner.RouteDuration(ctx, position.Point(), destination)
		if err == nil {
			result.Arrival = duration
			return result, nil
		}
	}

	result.Arrival = time.Duration(distance / 1000 * fallbackMinutesPerKm * float64(time.Minute))
	result.Approximate = true
	return result, nil
}

// Distance computes the great-circle distance in meters between a courier
// position and a destination without producing an arrival estimate.
func Distance(position *courier.Position, destination kernel.GeoPoint) (float64, error) {
	if err := position.Validate(); err != nil {
		return 0, err
	}
	return position.Point().DistanceTo(destination)
}

// RequireDestination ensures an order-side destination is present before
// geofencing math runs. Orders created with only a textual address cannot be
// classified.
func RequireDestination(destination *kernel.GeoPoint) (kernel.GeoPoint, error) {
	if destination == nil {
		return kernel.GeoPoint{}, errs.NewValueIsRequiredError("destination")
	}
	if err := destination.Validate(); err != nil {
		return kernel.GeoPoint{}, err
	}
	return *destination, nil
}
