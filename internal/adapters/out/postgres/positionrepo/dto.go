// Package positionrepo persists the single last-known position per courier.
// The table holds one row per courier, replaced on every accepted sample;
// ordering is enforced by the sampled_at guard inside the upsert so stale
// reports from a lagging device never overwrite fresher state.
package positionrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// PositionDTO is the database representation of a courier's latest telemetry.
type PositionDTO struct {
	CourierID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Lat            float64
	Lng            float64
	Speed          float64
	Bearing        float64
	Accuracy       float64
	SampledAt      time.Time
	ActiveTracking bool
}

// TableName overrides GORM's default naming convention to use
// "courier_positions".
func (PositionDTO) TableName() string {
	return "courier_positions"
}

// fromDomain converts a position to its database representation.
func fromDomain(position *courier.Position) PositionDTO {
	return PositionDTO{
		CourierID:      position.CourierID().Bytes(),
		Lat:            position.Point().Lat(),
		Lng:            position.Point().Lng(),
		Speed:          position.Speed(),
		Bearing:        position.Bearing(),
		Accuracy:       position.Accuracy(),
		SampledAt:      position.SampledAt(),
		ActiveTracking: position.ActiveTracking(),
	}
}

// toDomain reconstructs a position from a database row.
func toDomain(dto PositionDTO) (*courier.Position, error) {
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	point, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return courier.RestorePosition(
		courierID, point,
		dto.Speed, dto.Bearing, dto.Accuracy,
		dto.SampledAt, dto.ActiveTracking,
	)
}
