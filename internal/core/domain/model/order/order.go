package order

import (
	"encoding/json"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// AcceptanceWindow is the soft deadline during which a proposed courier must
// accept or reject an assignment. It is evaluated by wall-clock comparison at
// the moment of use, never by an armed timer.
const AcceptanceWindow = 3 * time.Minute

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrInvalidStateTransition is returned when an operation is attempted
	// from a status that does not permit it.
	ErrInvalidStateTransition = errors.New("operation not allowed in current status")

	// ErrAssignmentExpired is returned when an accept attempt arrives after
	// the acceptance window elapsed. The caller must resolve the assignment
	// through the expiry path.
	ErrAssignmentExpired = errors.New("assignment acceptance window elapsed")

	// ErrNotAssignedCourier is returned when a courier-side operation is
	// attempted by a courier other than the assigned one.
	ErrNotAssignedCourier = errors.New("caller is not the assigned courier")

	// ErrNotOrderRequester is returned when a requester-side operation is
	// attempted by a party other than the order's requester.
	ErrNotOrderRequester = errors.New("caller is not the order requester")

	// ErrDeliveryPointRequired is returned when geofencing or ETA math is
	// requested for an order without precise delivery coordinates.
	ErrDeliveryPointRequired = errors.New("order has no precise delivery coordinates")
)

// Order is the aggregate root coordinating a delivery between a requester, a
// facility, and a courier. It owns the status state machine, the acceptance
// window, and the party checks; persistence adapters translate its
// transitions into single conditional updates so that racing callers get
// at-most-one-winner semantics.
//
// Invariants:
//   - courier id is set exactly when status requires a courier
//   - assignedAt is set exactly while status is assigned_pending_acceptance
//   - status only moves along the edges of the transition table
type Order struct {
	id          kernel.UUID
	requesterID kernel.UUID
	facilityID  kernel.UUID
	courierID   *kernel.UUID

	status Status

	// address is the human-readable delivery target; destination carries the
	// precise coordinates required for geofencing and ETA.
	address     string
	destination *kernel.GeoPoint

	// amount and items are opaque to the dispatch core; pricing is owned by
	// the facility side.
	amount float64
	items  json.RawMessage

	createdAt            time.Time
	updatedAt            time.Time
	assignedAt           *time.Time
	deliveredAt          *time.Time
	requesterConfirmedAt *time.Time
	courierConfirmedAt   *time.Time

	isConstructed bool
}

// NewOrder creates a new Order in pending status.
//
// Parameters:
//   - id, requesterID, facilityID: valid identifiers
//   - address: non-empty delivery address
//   - destination: optional precise coordinates (required later for geofencing)
//   - amount: order total, opaque to the core
//   - items: opaque item list payload, may be nil
func NewOrder(
	id, requesterID, facilityID kernel.UUID,
	address string,
	destination *kernel.GeoPoint,
	amount float64,
	items json.RawMessage,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		amount:        amount,
		items:         items,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setRequesterID(requesterID),
		o.setFacilityID(facilityID),
		o.setAddress(address),
		o.setDestination(destination),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence, enforcing the
// courier/assignedAt consistency invariants on the way in.
func RestoreOrder(
	id, requesterID, facilityID kernel.UUID,
	courierID *kernel.UUID,
	status Status,
	address string,
	destination *kernel.GeoPoint,
	amount float64,
	items json.RawMessage,
	createdAt, updatedAt time.Time,
	assignedAt, deliveredAt, requesterConfirmedAt, courierConfirmedAt *time.Time,
) (*Order, error) {
	o := &Order{
		status:               status,
		amount:               amount,
		items:                items,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
		assignedAt:           assignedAt,
		deliveredAt:          deliveredAt,
		requesterConfirmedAt: requesterConfirmedAt,
		courierConfirmedAt:   courierConfirmedAt,
		isConstructed:        true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setRequesterID(requesterID),
		o.setFacilityID(facilityID),
		o.setAddress(address),
		o.setDestination(destination),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
		o.courierID = courierID
	}

	if err := o.validateConsistency(); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was created via a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// RequesterID returns the identifier of the party awaiting delivery.
func (o *Order) RequesterID() kernel.UUID { return o.requesterID }

// FacilityID returns the identifier of the dispatching facility.
func (o *Order) FacilityID() kernel.UUID { return o.facilityID }

// CourierID returns the assigned courier's id, or nil before assignment.
func (o *Order) CourierID() *kernel.UUID { return o.courierID }

// Status returns the current lifecycle status.
func (o *Order) Status() Status { return o.status }

// Address returns the human-readable delivery address.
func (o *Order) Address() string { return o.address }

// Destination returns the precise delivery coordinates, or nil when only an
// address is known. Geofencing and ETA require a non-nil destination.
func (o *Order) Destination() *kernel.GeoPoint { return o.destination }

// Amount returns the order total. Opaque to the dispatch core.
func (o *Order) Amount() float64 { return o.amount }

// Items returns the opaque item list payload.
func (o *Order) Items() json.RawMessage { return o.items }

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt returns the last modification timestamp.
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// AssignedAt returns the time of the outstanding assignment proposal, or nil
// when no assignment is pending acceptance.
func (o *Order) AssignedAt() *time.Time { return o.assignedAt }

// DeliveredAt returns the delivery completion time, or nil.
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }

// RequesterConfirmedAt returns when the requester confirmed receipt, or nil.
func (o *Order) RequesterConfirmedAt() *time.Time { return o.requesterConfirmedAt }

// CourierConfirmedAt returns when the courier flagged arrival, or nil.
func (o *Order) CourierConfirmedAt() *time.Time { return o.courierConfirmedAt }

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// Confirm moves the order from pending to confirmed (facility acknowledgment).
func (o *Order) Confirm(now time.Time) error {
	return o.transition(Confirmed, now)
}

// StartPreparing moves the order from confirmed to preparing.
func (o *Order) StartPreparing(now time.Time) error {
	return o.transition(Preparing, now)
}

// MarkReadyForDelivery moves the order from preparing to ready_for_delivery,
// making it eligible for courier assignment.
func (o *Order) MarkReadyForDelivery(now time.Time) error {
	return o.transition(ReadyForDelivery, now)
}

// Cancel moves the order to cancelled. Only legal before the facility hands
// the order to the delivery flow (pending or confirmed).
func (o *Order) Cancel(now time.Time) error {
	return o.transition(Cancelled, now)
}

// Assign proposes the order to a courier. The order must be in
// ready_for_delivery; on success the courier id and assignedAt are set and
// the status becomes assigned_pending_acceptance.
func (o *Order) Assign(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if err := o.transition(AssignedPendingAcceptance, now); err != nil {
		return err
	}

	o.courierID = &courierID
	assignedAt := now
	o.assignedAt = &assignedAt
	return nil
}

// Accept records the assigned courier's acceptance, moving the order to
// in_transit. Fails with ErrNotAssignedCourier for any other caller and with
// ErrAssignmentExpired when the acceptance window has elapsed; the expired
// case must then be resolved through Expire.
func (o *Order) Accept(courierID kernel.UUID, now time.Time) error {
	if err := o.requireAssignedCourier(courierID, AssignedPendingAcceptance); err != nil {
		return err
	}

	if o.AssignmentExpired(now) {
		return ErrAssignmentExpired
	}

	if err := o.transition(InTransit, now); err != nil {
		return err
	}

	o.assignedAt = nil
	return nil
}

// Reject records the assigned courier's refusal: the order reverts to
// ready_for_delivery with courier id and assignedAt cleared, making it
// eligible for reassignment.
func (o *Order) Reject(courierID kernel.UUID, now time.Time) error {
	if err := o.requireAssignedCourier(courierID, AssignedPendingAcceptance); err != nil {
		return err
	}
	return o.release(now)
}

// Expire resolves an assignment whose acceptance window elapsed, reverting
// the order exactly like Reject. Returns ErrInvalidStateTransition when the
// order is not pending acceptance and ErrAssignmentExpired when the window
// has not elapsed yet.
func (o *Order) Expire(now time.Time) error {
	if o.status != AssignedPendingAcceptance {
		return ErrInvalidStateTransition
	}
	if !o.AssignmentExpired(now) {
		return ErrAssignmentExpired
	}
	return o.release(now)
}

// AssignmentExpired reports whether the outstanding assignment proposal is
// older than the acceptance window. The boundary is inclusive: an accept
// exactly at the window edge is still valid.
func (o *Order) AssignmentExpired(now time.Time) bool {
	return o.assignedAt != nil && now.Sub(*o.assignedAt) > AcceptanceWindow
}

// ConfirmArrival records the courier's arrival flag, moving the order from
// in_transit to arrived_pending_confirmation and stamping courierConfirmedAt.
func (o *Order) ConfirmArrival(courierID kernel.UUID, now time.Time) error {
	if err := o.requireAssignedCourier(courierID, InTransit); err != nil {
		return err
	}

	if err := o.transition(ArrivedPendingConfirmation, now); err != nil {
		return err
	}

	confirmedAt := now
	o.courierConfirmedAt = &confirmedAt
	return nil
}

// ConfirmCompletion records the requester's receipt confirmation, moving the
// order to delivered and stamping deliveredAt and requesterConfirmedAt.
// Legal both from arrived_pending_confirmation and directly from in_transit
// (the requester may confirm before the courier flags arrival).
func (o *Order) ConfirmCompletion(requesterID kernel.UUID, now time.Time) error {
	if err := requesterID.Validate(); err != nil {
		return err
	}
	if o.status != ArrivedPendingConfirmation && o.status != InTransit {
		return ErrInvalidStateTransition
	}
	if !o.requesterID.IsEqual(requesterID) {
		return ErrNotOrderRequester
	}

	if err := o.transition(Delivered, now); err != nil {
		return err
	}

	deliveredAt := now
	o.deliveredAt = &deliveredAt
	o.requesterConfirmedAt = &deliveredAt
	return nil
}

// release reverts an outstanding assignment to ready_for_delivery.
// Canonical rollback target for both reject and expiry.
func (o *Order) release(now time.Time) error {
	if err := o.transition(ReadyForDelivery, now); err != nil {
		return err
	}
	o.courierID = nil
	o.assignedAt = nil
	return nil
}

func (o *Order) transition(to Status, now time.Time) error {
	next, err := o.status.TransitionTo(to)
	if err != nil {
		return err
	}
	o.status = next
	o.updatedAt = now
	return nil
}

func (o *Order) requireAssignedCourier(courierID kernel.UUID, expected Status) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.status != expected {
		return ErrInvalidStateTransition
	}
	if o.courierID == nil || !o.courierID.IsEqual(courierID) {
		return ErrNotAssignedCourier
	}
	return nil
}

// validateConsistency enforces the courier and assignedAt invariants when
// restoring from persistence.
func (o *Order) validateConsistency() error {
	hasCourier := o.courierID != nil
	if hasCourier != o.status.RequiresCourier() {
		return errs.NewValueIsInvalidErrorWithCause("status",
			errors.New("courier assignment is inconsistent with status "+string(o.status)))
	}

	hasAssignedAt := o.assignedAt != nil
	if hasAssignedAt != (o.status == AssignedPendingAcceptance) {
		return errs.NewValueIsInvalidErrorWithCause("assignedAt",
			errors.New("assignedAt must be set exactly while pending acceptance"))
	}

	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setRequesterID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.requesterID = id
	return nil
}

func (o *Order) setFacilityID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.facilityID = id
	return nil
}

func (o *Order) setAddress(address string) error {
	if address == "" {
		return errs.NewValueIsRequiredError("address")
	}
	o.address = address
	return nil
}

func (o *Order) setDestination(destination *kernel.GeoPoint) error {
	if destination == nil {
		return nil
	}
	if err := destination.Validate(); err != nil {
		return err
	}
	o.destination = destination
	return nil
}
