package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// ErrNotOrderFacility is returned when a facility-side operation is attempted
// by a caller other than the order's dispatching facility.
var ErrNotOrderFacility = errors.New("caller is not the order's facility")

// AssignCourierCommand represents a facility's proposal of an order to a
// specific courier. The order must be ready for delivery; on success the
// courier has a 3-minute window to accept.
//
// Example:
//
//	cmd, err := NewAssignCourierCommand(orderID, courierID, facilityID)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrOrderNoLongerAvailable) {
//	    // another courier was proposed first, pick a different order
//	}
type AssignCourierCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID
	callerID  kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignCourierCommand creates a command proposing the order to a courier.
// The caller must be the order's facility; that check happens in the handler
// against the loaded order.
func NewAssignCourierCommand(orderID, courierID, callerID kernel.UUID) (AssignCourierCommand, error) {
	command := AssignCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCourierID(courierID),
		command.setCallerID(callerID),
	); err != nil {
		return AssignCourierCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

// OrderID returns the order being proposed.
func (c AssignCourierCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the courier receiving the proposal.
func (c AssignCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

// CallerID returns the identity of the requesting party.
func (c AssignCourierCommand) CallerID() kernel.UUID {
	return c.callerID
}

func (c *AssignCourierCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AssignCourierCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *AssignCourierCommand) setCallerID(callerID kernel.UUID) error {
	if err := callerID.Validate(); err != nil {
		return err
	}

	c.callerID = callerID
	return nil
}
