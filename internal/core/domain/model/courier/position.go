package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrPositionIsNotConstructed is returned when a Position was not created
// through NewPosition or RestorePosition.
var ErrPositionIsNotConstructed = errors.New(
	"Position must be created via NewPosition or RestorePosition constructor")

// Position is the latest known telemetry of a courier. It is a single
// overwritten record, not a history: every accepted sample replaces the
// previous one, and only the courier identified by the authenticated caller
// may write their own.
//
// Speed is meters per second, bearing degrees clockwise from true north,
// accuracy the device-reported radius in meters.
type Position struct {
	courierID      kernel.UUID
	point          kernel.GeoPoint
	speed          float64
	bearing        float64
	accuracy       float64
	sampledAt      time.Time
	activeTracking bool

	isConstructed bool
}

// Sample is a raw telemetry report from a courier device. Speed and bearing
// are optional; when absent they are derived from the previously stored
// position.
type Sample struct {
	Point     kernel.GeoPoint
	Speed     *float64
	Bearing   *float64
	Accuracy  float64
	SampledAt time.Time
}

// NewPosition builds the stored position from a sample, deriving motion data
// from the previous position when the device did not report it.
//
// Derivation: great-circle distance over elapsed time for speed, initial
// bearing for heading. The first-ever sample (prev == nil), or a sample with
// no elapsed time against the previous one, yields speed 0 and bearing 0
// unless the device reported values.
func NewPosition(courierID kernel.UUID, sample Sample, prev *Position) (*Position, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}
	if err := sample.Point.Validate(); err != nil {
		return nil, err
	}
	if sample.SampledAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("sampledAt")
	}
	if sample.Accuracy < 0 {
		return nil, errs.NewValueIsInvalidError("accuracy")
	}

	p := &Position{
		courierID:      courierID,
		point:          sample.Point,
		accuracy:       sample.Accuracy,
		sampledAt:      sample.SampledAt,
		activeTracking: true,
		isConstructed:  true,
	}

	if sample.Speed != nil {
		if *sample.Speed < 0 {
			return nil, errs.NewValueIsInvalidError("speed")
		}
		p.speed = *sample.Speed
	}
	if sample.Bearing != nil {
		if *sample.Bearing < 0 || *sample.Bearing >= 360 {
			return nil, errs.NewValueIsOutOfRangeError("bearing", *sample.Bearing, 0, 360)
		}
		p.bearing = *sample.Bearing
	}

	if prev != nil && (sample.Speed == nil || sample.Bearing == nil) {
		if err := p.derive(sample, prev); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RestorePosition reconstructs a Position from persistence.
func RestorePosition(
	courierID kernel.UUID,
	point kernel.GeoPoint,
	speed, bearing, accuracy float64,
	sampledAt time.Time,
	activeTracking bool,
) (*Position, error) {
	if err := errors.Join(courierID.Validate(), point.Validate()); err != nil {
		return nil, err
	}

	return &Position{
		courierID:      courierID,
		point:          point,
		speed:          speed,
		bearing:        bearing,
		accuracy:       accuracy,
		sampledAt:      sampledAt,
		activeTracking: activeTracking,
		isConstructed:  true,
	}, nil
}

// Validate ensures the Position was created via a constructor.
func (p *Position) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrPositionIsNotConstructed
	}
	return nil
}

// CourierID returns the owning courier's identifier.
func (p *Position) CourierID() kernel.UUID { return p.courierID }

// Point returns the coordinate pair of the sample.
func (p *Position) Point() kernel.GeoPoint { return p.point }

// Speed returns the speed in meters per second.
func (p *Position) Speed() float64 { return p.speed }

// Bearing returns the heading in degrees clockwise from true north.
func (p *Position) Bearing() float64 { return p.bearing }

// Accuracy returns the device-reported accuracy radius in meters.
func (p *Position) Accuracy() float64 { return p.accuracy }

// SampledAt returns the device timestamp of the sample.
func (p *Position) SampledAt() time.Time { return p.sampledAt }

// ActiveTracking reports whether the courier is actively streaming positions.
func (p *Position) ActiveTracking() bool { return p.activeTracking }

// StopTracking marks the courier as no longer streaming. The last known
// coordinates remain readable.
func (p *Position) StopTracking() {
	p.activeTracking = false
}

// IsNewerThan reports whether this sample is strictly newer than other.
// Used by the store to drop out-of-order samples.
func (p *Position) IsNewerThan(other *Position) bool {
	return other == nil || p.sampledAt.After(other.sampledAt)
}

func (p *Position) derive(sample Sample, prev *Position) error {
	elapsed := sample.SampledAt.Sub(prev.sampledAt).Seconds()
	if elapsed <= 0 {
		return nil
	}

	if sample.Speed == nil {
		distance, err := prev.point.DistanceTo(sample.Point)
		if err != nil {
			return err
		}
		p.speed = distance / elapsed
	}

	if sample.Bearing == nil {
		same, err := prev.point.IsEqual(sample.Point)
		if err != nil {
			return err
		}
		if !same {
			bearing, err := prev.point.BearingTo(sample.Point)
			if err != nil {
				return err
			}
			p.bearing = bearing
		} else {
			// Stationary sample keeps the previous heading.
			p.bearing = prev.bearing
		}
	}

	return nil
}
