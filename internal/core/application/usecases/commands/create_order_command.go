package commands

import (
	"encoding/json"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrAddressIsRequired = errors.New("address is required")
	ErrAmountIsInvalid   = errors.New("amount must not be negative")
)

// CreateOrderCommand represents a request to register a new delivery order in
// pending status. Destination coordinates are optional at creation; without
// them the order cannot be geofenced later.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, requesterID, facilityID,
//	    "12 Rue des Jardins, Cocody", &destination, 8600, itemsJSON)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	requesterID kernel.UUID
	facilityID  kernel.UUID
	address     string
	destination *kernel.GeoPoint
	amount      float64
	items       json.RawMessage

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// Validates identifiers, requires a non-empty address, and rejects negative
// amounts. Destination and items may be nil.
func NewCreateOrderCommand(
	orderID, requesterID, facilityID kernel.UUID,
	address string,
	destination *kernel.GeoPoint,
	amount float64,
	items json.RawMessage,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		items: items,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setRequesterID(requesterID),
		orderCommand.setFacilityID(facilityID),
		orderCommand.setAddress(address),
		orderCommand.setDestination(destination),
		orderCommand.setAmount(amount),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// RequesterID returns the identifier of the party awaiting delivery.
func (c CreateOrderCommand) RequesterID() kernel.UUID {
	return c.requesterID
}

// FacilityID returns the identifier of the dispatching facility.
func (c CreateOrderCommand) FacilityID() kernel.UUID {
	return c.facilityID
}

// Address returns the human-readable delivery address.
func (c CreateOrderCommand) Address() string {
	return c.address
}

// Destination returns the optional precise delivery coordinates.
func (c CreateOrderCommand) Destination() *kernel.GeoPoint {
	return c.destination
}

// Amount returns the order total.
func (c CreateOrderCommand) Amount() float64 {
	return c.amount
}

// Items returns the opaque item list payload.
func (c CreateOrderCommand) Items() json.RawMessage {
	return c.items
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setRequesterID(requesterID kernel.UUID) error {
	if err := requesterID.Validate(); err != nil {
		return err
	}

	c.requesterID = requesterID
	return nil
}

func (c *CreateOrderCommand) setFacilityID(facilityID kernel.UUID) error {
	if err := facilityID.Validate(); err != nil {
		return err
	}

	c.facilityID = facilityID
	return nil
}

func (c *CreateOrderCommand) setAddress(address string) error {
	if address == "" {
		return ErrAddressIsRequired
	}

	c.address = address
	return nil
}

func (c *CreateOrderCommand) setDestination(destination *kernel.GeoPoint) error {
	if destination == nil {
		return nil
	}
	if err := destination.Validate(); err != nil {
		return err
	}

	c.destination = destination
	return nil
}

func (c *CreateOrderCommand) setAmount(amount float64) error {
	if amount < 0 {
		return ErrAmountIsInvalid
	}

	c.amount = amount
	return nil
}
