package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// ConfirmArrivalCommandHandler moves an in-transit order to
// arrived_pending_confirmation on the assigned courier's say-so and tells the
// requester their delivery is at the door.
type ConfirmArrivalCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewConfirmArrivalCommandHandler creates a handler for arrival confirmations.
func NewConfirmArrivalCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) ConfirmArrivalCommandHandler {
	return ConfirmArrivalCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "confirm_arrival"),
	}
}

// Handle processes the arrival confirmation through the guarded
// in_transit -> arrived_pending_confirmation transition.
func (h ConfirmArrivalCommandHandler) Handle(ctx context.Context, cmd ConfirmArrivalCommand) error {
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

	if err = aggregate.ConfirmArrival(cmd.CourierID(), now); err != nil {
		return err
	}

	applied, err := orderRepo.ApplyTransition(ctx, aggregate, order.InTransit)
	if err != nil {
		return err
	}
	if !applied {
		return ErrOrderNoLongerAvailable
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notify(ctx, ports.Notification{
		RecipientID: aggregate.RequesterID().String(),
		Kind:        ports.NotificationCourierArrived,
		OrderID:     aggregate.ID().String(),
		Title:       "Your courier has arrived",
		Body:        "The courier reports being at your address. Confirm receipt once delivered.",
		OccurredAt:  now,
	})

	return nil
}

func (h ConfirmArrivalCommandHandler) notify(ctx context.Context, n ports.Notification) {
	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"kind", string(n.Kind), "order_id", n.OrderID, "error", err)
	}
}
