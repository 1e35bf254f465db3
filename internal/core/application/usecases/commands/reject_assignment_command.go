package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectAssignmentCommandIsNotConstructed = errors.New(
	"RejectAssignmentCommand must be created via NewRejectAssignmentCommand constructor",
)

// RejectAssignmentCommand represents a courier's refusal of a proposed
// assignment. The order reverts to ready_for_delivery and becomes eligible
// for reassignment; rejection is not idempotent, a second attempt races like
// any other transition.
type RejectAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRejectAssignmentCommand creates a command rejecting an assignment
// proposal. courierID is the authenticated caller.
func NewRejectAssignmentCommand(orderID, courierID kernel.UUID) (RejectAssignmentCommand, error) {
	command := RejectAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCourierID(courierID),
	); err != nil {
		return RejectAssignmentCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrRejectAssignmentCommandIsNotConstructed)
}

// OrderID returns the order whose assignment is being rejected.
func (c RejectAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the rejecting courier.
func (c RejectAssignmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *RejectAssignmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RejectAssignmentCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
