package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrConfirmArrivalCommandIsNotConstructed = errors.New(
	"ConfirmArrivalCommand must be created via NewConfirmArrivalCommand constructor",
)

// ConfirmArrivalCommand represents the courier flagging arrival at the
// delivery destination. The arrival flag is courier-asserted; the geofence
// zone shown to the requester is informational and does not gate this.
type ConfirmArrivalCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewConfirmArrivalCommand creates a command flagging courier arrival.
// courierID is the authenticated caller.
func NewConfirmArrivalCommand(orderID, courierID kernel.UUID) (ConfirmArrivalCommand, error) {
	command := ConfirmArrivalCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCourierID(courierID),
	); err != nil {
		return ConfirmArrivalCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmArrivalCommand) Validate() error {
	return c.guard.Validate(ErrConfirmArrivalCommandIsNotConstructed)
}

// OrderID returns the order the courier arrived for.
func (c ConfirmArrivalCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CourierID returns the arriving courier.
func (c ConfirmArrivalCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *ConfirmArrivalCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ConfirmArrivalCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
