package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptAssignmentCommandIsNotConstructed = errors.New(
	"AcceptAssignmentCommand must be created via NewAcceptAssignmentCommand constructor",
)

// AcceptAssignmentCommand represents a courier's acceptance of a proposed
// assignment. Only the proposed courier may accept, and only while the
// 3-minute window is open.
type AcceptAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptAssignmentCommand creates a command accepting an assignment
// proposal. courierID is the authenticated caller.
func NewAcceptAssignmentCommand(orderID, courierID kernel.UUID) (AcceptAssignmentCommand, error) {
	command := AcceptAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCourierID(courierID),
	); err != nil {
		return AcceptAssignmentCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
}

// OrderID returns the order whose assignment is being accepted.
func (c AcceptAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the accepting courier.
func (c AcceptAssignmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *AcceptAssignmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AcceptAssignmentCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
