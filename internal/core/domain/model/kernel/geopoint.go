package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"

	"dispatch/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in decimal degrees.
	LongitudeMax = 180.0

	// earthRadiusMeters is the mean Earth radius used by the haversine formula.
	earthRadiusMeters = 6371000.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an
// improperly initialized GeoPoint. Points must be created via NewGeoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint is an immutable value object representing a WGS84 coordinate pair.
// It carries both the delivery destination of an order and the reported
// position of a courier, and owns the geodesic math the dispatch core needs:
// great-circle distance and initial bearing between two points.
//
// The zero value is invalid and fails Validate; use NewGeoPoint.
//
// Example:
//
//	point, err := kernel.NewGeoPoint(5.3411, -4.0267)
//	if err != nil {
//	    // coordinate out of range
//	}
type GeoPoint struct { //nolint:recvcheck //pointer receivers used for construction-time validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint with validated coordinates.
// Latitude must lie in [-90, 90] and longitude in [-180, 180];
// otherwise an out-of-range error is returned.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate checks that the point was created through NewGeoPoint.
// The zero value fails with ErrGeoPointIsNotConstructed.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in decimal degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String returns a "lat,lng" representation, also used as the fallback
// address when reverse geocoding is unavailable.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.lat, p.lng)
}

// IsEqual compares two points for coordinate equality.
// Both points must be properly constructed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceTo computes the great-circle distance to other in meters using the
// haversine formula. Both points must be properly constructed.
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := toRadians(p.lat)
	lat2 := toRadians(other.lat)
	dLat := toRadians(other.lat - p.lat)
	dLng := toRadians(other.lng - p.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c, nil
}

// BearingTo computes the initial bearing from this point toward other,
// in degrees clockwise from true north, normalized to [0, 360).
func (p GeoPoint) BearingTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := toRadians(p.lat)
	lat2 := toRadians(other.lat)
	dLng := toRadians(other.lng - p.lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360), nil
}

// setLat sets the latitude with range validation.
// Pointer receiver enables self-encapsulated validation during construction.
func (p *GeoPoint) setLat(lat float64) error {
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}
	p.lat = lat
	return nil
}

// setLng sets the longitude with range validation.
// Pointer receiver enables self-encapsulated validation during construction.
func (p *GeoPoint) setLng(lng float64) error {
	if lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lng", lng, LongitudeMin, LongitudeMax)
	}
	p.lng = lng
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
