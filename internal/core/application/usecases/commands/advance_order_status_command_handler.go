package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// AdvanceOrderStatusCommandHandler moves an order through its facility-owned
// preparation stages. Cancellation of a pending or confirmed order goes
// through here as well; later cancellation is not a legal edge.
type AdvanceOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewAdvanceOrderStatusCommandHandler creates a handler for facility
// progression operations.
func NewAdvanceOrderStatusCommandHandler(uowFactory OrderUoWFactory) AdvanceOrderStatusCommandHandler {
	return AdvanceOrderStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the progression through the guarded transition for the
// requested target.
func (h AdvanceOrderStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if !aggregate.FacilityID().IsEqual(cmd.CallerID()) {
		return ErrNotOrderFacility
	}

	fromStatus := aggregate.Status()

	if err = h.advance(aggregate, cmd.Target(), now); err != nil {
		return err
	}

	applied, err := orderRepo.ApplyTransition(ctx, aggregate, fromStatus)
	if err != nil {
		return err
	}
	if !applied {
		return ErrOrderNoLongerAvailable
	}

	return uow.Commit(ctx)
}

func (h AdvanceOrderStatusCommandHandler) advance(aggregate *order.Order, target order.Status, now time.Time) error {
	switch target {
	case order.Confirmed:
		return aggregate.Confirm(now)
	case order.Preparing:
		return aggregate.StartPreparing(now)
	case order.ReadyForDelivery:
		return aggregate.MarkReadyForDelivery(now)
	case order.Cancelled:
		return aggregate.Cancel(now)
	default:
		return ErrStatusNotAdvanceable
	}
}
