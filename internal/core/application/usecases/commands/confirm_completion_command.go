package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrConfirmCompletionCommandIsNotConstructed = errors.New(
	"ConfirmCompletionCommand must be created via NewConfirmCompletionCommand constructor",
)

// ConfirmCompletionCommand represents the requester confirming receipt of the
// delivery. Confirmation is legal whether or not the courier flagged arrival
// first.
type ConfirmCompletionCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	requesterID kernel.UUID

	guard guard.ConstructorGuard
}

// NewConfirmCompletionCommand creates a command confirming delivery receipt.
// requesterID is the authenticated caller.
func NewConfirmCompletionCommand(orderID, requesterID kernel.UUID) (ConfirmCompletionCommand, error) {
	command := ConfirmCompletionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setRequesterID(requesterID),
	); err != nil {
		return ConfirmCompletionCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmCompletionCommand) Validate() error {
	return c.guard.Validate(ErrConfirmCompletionCommandIsNotConstructed)
}

// OrderID returns the order being confirmed as delivered.
func (c ConfirmCompletionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// RequesterID returns the confirming requester.
func (c ConfirmCompletionCommand) RequesterID() kernel.UUID {
	return c.requesterID
}

func (c *ConfirmCompletionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ConfirmCompletionCommand) setRequesterID(requesterID kernel.UUID) error {
	if err := requesterID.Validate(); err != nil {
		return err
	}

	c.requesterID = requesterID
	return nil
}
