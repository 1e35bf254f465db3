package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// New orders start in pending status and wait for facility confirmation.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	cmd, _ := NewCreateOrderCommand(orderID, requesterID, facilityID,
//	    "12 Rue des Jardins, Cocody", nil, 8600, nil)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires an OrderUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command.
// Creates the order in pending status within a transaction.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	newOrder, err := order.NewOrder(
		cmd.OrderID(), cmd.RequesterID(), cmd.FacilityID(),
		cmd.Address(), cmd.Destination(), cmd.Amount(), cmd.Items(),
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
