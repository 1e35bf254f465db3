package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReportPositionCommandIsNotConstructed = errors.New(
	"ReportPositionCommand must be created via NewReportPositionCommand constructor",
)

// ErrNotPositionOwner is returned when a caller reports a position for a
// courier other than themselves.
var ErrNotPositionOwner = errors.New("caller may only report their own position")

// ReportPositionCommand represents a telemetry sample from a courier device.
// Speed and bearing are optional and derived from the previous stored sample
// when absent; a zero sampledAt defaults to the ingestion time.
type ReportPositionCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	callerID  kernel.UUID
	point     kernel.GeoPoint
	speed     *float64
	bearing   *float64
	accuracy  float64
	sampledAt time.Time

	guard guard.ConstructorGuard
}

// NewReportPositionCommand creates a position report. Coordinates are
// validated here; out-of-range latitude or longitude never reaches the
// handler.
func NewReportPositionCommand(
	courierID, callerID kernel.UUID,
	lat, lng float64,
	speed, bearing *float64,
	accuracy float64,
	sampledAt time.Time,
) (ReportPositionCommand, error) {
	command := ReportPositionCommand{
		speed:     speed,
		bearing:   bearing,
		accuracy:  accuracy,
		sampledAt: sampledAt,
		guard:     guard.NewConstructorGuard(),
	}

	point, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		return ReportPositionCommand{}, err
	}
	command.point = point

	if err := errors.Join(
		command.setCourierID(courierID),
		command.setCallerID(callerID),
	); err != nil {
		return ReportPositionCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportPositionCommand) Validate() error {
	return c.guard.Validate(ErrReportPositionCommandIsNotConstructed)
}

// CourierID returns the courier the sample belongs to.
func (c ReportPositionCommand) CourierID() kernel.UUID {
	return c.courierID
}

// CallerID returns the identity of the reporting party.
func (c ReportPositionCommand) CallerID() kernel.UUID {
	return c.callerID
}

// Sample converts the command into a domain telemetry sample, substituting
// now for a missing timestamp.
func (c ReportPositionCommand) Sample(now time.Time) courier.Sample {
	sampledAt := c.sampledAt
	if sampledAt.IsZero() {
		sampledAt = now
	}

	return courier.Sample{
		Point:     c.point,
		Speed:     c.speed,
		Bearing:   c.bearing,
		Accuracy:  c.accuracy,
		SampledAt: sampledAt,
	}
}

func (c *ReportPositionCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *ReportPositionCommand) setCallerID(callerID kernel.UUID) error {
	if err := callerID.Validate(); err != nil {
		return err
	}

	c.callerID = callerID
	return nil
}
