// Package orderrepo persists order aggregates with GORM. It maps the
// aggregate to a single orders row and expresses every status change as a
// conditional update guarded by the expected previous status, which is the
// only concurrency control the dispatch flow relies on.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the database representation of an order aggregate. Status is
// stored as its string token; destination coordinates and the courier link
// are nullable because both appear only for part of the lifecycle.
type OrderDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID  `gorm:"type:uuid;index"`
	FacilityID  uuid.UUID  `gorm:"type:uuid;index"`
	CourierID   *uuid.UUID `gorm:"type:uuid;index"`
	Status      string     `gorm:"type:text;index"`
	Address     string     `gorm:"type:text"`
	DestLat     *float64
	DestLng     *float64
	Amount      float64
	Items       []byte `gorm:"type:jsonb"`

	CreatedAt            time.Time
	UpdatedAt            time.Time
	AssignedAt           *time.Time `gorm:"index"`
	DeliveredAt          *time.Time
	RequesterConfirmedAt *time.Time
	CourierConfirmedAt   *time.Time
}

// TableName overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := aggregate.CourierID(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	var destLat, destLng *float64
	if dest := aggregate.Destination(); dest != nil {
		lat := dest.Lat()
		lng := dest.Lng()
		destLat = &lat
		destLng = &lng
	}

	return OrderDTO{
		ID:          aggregate.ID().Bytes(),
		RequesterID: aggregate.RequesterID().Bytes(),
		FacilityID:  aggregate.FacilityID().Bytes(),
		CourierID:   courierID,
		Status:      string(aggregate.Status()),
		Address:     aggregate.Address(),
		DestLat:     destLat,
		DestLng:     destLng,
		Amount:      aggregate.Amount(),
		Items:       aggregate.Items(),

		CreatedAt:            aggregate.CreatedAt(),
		UpdatedAt:            aggregate.UpdatedAt(),
		AssignedAt:           aggregate.AssignedAt(),
		DeliveredAt:          aggregate.DeliveredAt(),
		RequesterConfirmedAt: aggregate.RequesterConfirmedAt(),
		CourierConfirmedAt:   aggregate.CourierConfirmedAt(),
	}
}

// toDomain reconstructs an order aggregate from a database row using
// RestoreOrder, which re-enforces the courier and assignedAt invariants.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	requesterID, err := kernel.UUIDFromBytes(dto.RequesterID[:])
	if err != nil {
		return nil, err
	}

	facilityID, err := kernel.UUIDFromBytes(dto.FacilityID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	var destination *kernel.GeoPoint
	if dto.DestLat != nil && dto.DestLng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.DestLat, *dto.DestLng)
		if pointErr != nil {
			return nil, pointErr
		}
		destination = &point
	}

	return order.RestoreOrder(
		id, requesterID, facilityID, courierID,
		order.Status(dto.Status),
		dto.Address, destination,
		dto.Amount, dto.Items,
		dto.CreatedAt, dto.UpdatedAt,
		dto.AssignedAt, dto.DeliveredAt,
		dto.RequesterConfirmedAt, dto.CourierConfirmedAt,
	)
}
