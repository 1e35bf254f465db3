// Package queries contains read-side operations of the CQRS split. Query
// handlers read the store directly with raw SQL and map rows into response
// structs; they never mutate order state themselves, with one deliberate
// exception: courier-facing reads trigger the lazy assignment sweep first so
// a courier never sees an offer that is already dead.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetCourierAssignmentsQueryIsNotConstructed = errors.New(
	"GetCourierAssignmentsQuery must be created via NewGetCourierAssignmentsQuery constructor",
)

// ErrNotAssignmentsOwner is returned when a caller asks for another courier's
// assignment list.
var ErrNotAssignmentsOwner = errors.New("caller may only list their own assignments")

// GetCourierAssignmentsQuery retrieves the orders currently proposed to or
// carried by a courier.
type GetCourierAssignmentsQuery struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	callerID  kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetCourierAssignmentsQuery creates an assignment listing query.
// callerID is the authenticated caller and must equal courierID.
func NewGetCourierAssignmentsQuery(courierID, callerID kernel.UUID) (GetCourierAssignmentsQuery, error) {
	query := GetCourierAssignmentsQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(courierID.Validate(), callerID.Validate()); err != nil {
		return GetCourierAssignmentsQuery{}, err
	}
	query.courierID = courierID
	query.callerID = callerID

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCourierAssignmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierAssignmentsQueryIsNotConstructed)
}

// CourierID returns the courier whose assignments are requested.
func (q GetCourierAssignmentsQuery) CourierID() kernel.UUID {
	return q.courierID
}

// CallerID returns the identity of the requesting party.
func (q GetCourierAssignmentsQuery) CallerID() kernel.UUID {
	return q.callerID
}

// CourierAssignmentResponse is one order in a courier's work list. For offers
// still pending acceptance AcceptBy carries the window deadline.
type CourierAssignmentResponse struct {
	OrderID  kernel.UUID
	Status   string
	Address  string
	DestLat  *float64
	DestLng  *float64
	Amount   float64
	AcceptBy *time.Time
}
