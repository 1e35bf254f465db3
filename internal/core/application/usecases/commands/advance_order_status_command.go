package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrAdvanceOrderStatusCommandIsNotConstructed = errors.New(
		"AdvanceOrderStatusCommand must be created via NewAdvanceOrderStatusCommand constructor",
	)

	// ErrStatusNotAdvanceable is returned for target statuses outside the
	// facility-side progression. Assignment and delivery statuses move through
	// their dedicated operations only.
	ErrStatusNotAdvanceable = errors.New(
		"target status is not part of the facility progression")
)

// facilityTargets is the set of statuses the facility may move an order to
// directly. Everything else is owned by the assignment and delivery flows.
var facilityTargets = map[order.Status]struct{}{
	order.Confirmed:        {},
	order.Preparing:        {},
	order.ReadyForDelivery: {},
	order.Cancelled:        {},
}

// AdvanceOrderStatusCommand represents a facility moving an order through its
// preparation stages: confirmed, preparing, ready_for_delivery, or cancelled.
type AdvanceOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	callerID kernel.UUID
	target   order.Status

	guard guard.ConstructorGuard
}

// NewAdvanceOrderStatusCommand creates a facility progression command.
// The target must be one of the facility-owned statuses.
func NewAdvanceOrderStatusCommand(
	orderID, callerID kernel.UUID,
	target order.Status,
) (AdvanceOrderStatusCommand, error) {
	command := AdvanceOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCallerID(callerID),
		command.setTarget(target),
	); err != nil {
		return AdvanceOrderStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderStatusCommandIsNotConstructed)
}

// OrderID returns the order being advanced.
func (c AdvanceOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CallerID returns the identity of the requesting party.
func (c AdvanceOrderStatusCommand) CallerID() kernel.UUID {
	return c.callerID
}

// Target returns the requested status.
func (c AdvanceOrderStatusCommand) Target() order.Status {
	return c.target
}

func (c *AdvanceOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AdvanceOrderStatusCommand) setCallerID(callerID kernel.UUID) error {
	if err := callerID.Validate(); err != nil {
		return err
	}

	c.callerID = callerID
	return nil
}

func (c *AdvanceOrderStatusCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if _, ok := facilityTargets[target]; !ok {
		return ErrStatusNotAdvanceable
	}

	c.target = target
	return nil
}
