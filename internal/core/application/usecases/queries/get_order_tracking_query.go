package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
	"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
)

// ErrNotOrderParticipant is returned when the caller is neither the
// requester, the facility, nor the assigned courier of the order.
var ErrNotOrderParticipant = errors.New("caller is not a participant of this order")

// GetOrderTrackingQuery retrieves the live tracking view of an order.
type GetOrderTrackingQuery struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	callerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderTrackingQuery creates a tracking view query.
func NewGetOrderTrackingQuery(orderID, callerID kernel.UUID) (GetOrderTrackingQuery, error) {
	query := GetOrderTrackingQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(orderID.Validate(), callerID.Validate()); err != nil {
		return GetOrderTrackingQuery{}, err
	}
	query.orderID = orderID
	query.callerID = callerID

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

// OrderID returns the tracked order.
func (q GetOrderTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

// CallerID returns the identity of the requesting party.
func (q GetOrderTrackingQuery) CallerID() kernel.UUID {
	return q.callerID
}

// TrackedPosition is the courier's last known telemetry inside a tracking
// view.
type TrackedPosition struct {
	Lat       float64
	Lng       float64
	Speed     float64
	Bearing   float64
	Accuracy  float64
	SampledAt time.Time
}

// OrderTrackingResponse is the live view of one order: lifecycle status plus,
// when a courier is attached and reporting, their position with geofence zone
// and arrival estimate. Zone and arrival stay empty when the order has no
// precise destination or the courier never reported.
type OrderTrackingResponse struct {
	OrderID         kernel.UUID
	Status          string
	Address         string
	ResolvedAddress string
	CourierID       *kernel.UUID
	Position        *TrackedPosition
	Zone            string
	ArrivalSeconds  *int64
	Approximate     bool
}
