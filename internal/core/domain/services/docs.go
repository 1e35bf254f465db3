// Package services contains stateless domain services that operate across
// aggregates. ProximityEstimator combines courier telemetry with an order's
// delivery destination to produce geofence zones and arrival estimates,
// consulting the routing collaborator only when motion data cannot answer.
package services
