package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// ConfirmCompletionCommandHandler finalizes a delivery on the requester's
// receipt confirmation, moving the order to its terminal delivered status.
// When this was the courier's last active order their position record stops
// tracking, so telemetry reported between deliveries is stored but no longer
// fanned out.
type ConfirmCompletionCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewConfirmCompletionCommandHandler creates a handler for completion
// confirmations.
func NewConfirmCompletionCommandHandler(
	uowFactory UoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) ConfirmCompletionCommandHandler {
	return ConfirmCompletionCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "confirm_completion"),
	}
}

// Handle processes the completion confirmation.
// The requester may confirm from arrived_pending_confirmation or directly
// from in_transit; the guard uses whichever status the order was loaded in.
func (h ConfirmCompletionCommandHandler) Handle(ctx context.Context, cmd ConfirmCompletionCommand) error {
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

	fromStatus := aggregate.Status()
	courierID := aggregate.CourierID()

	if err = aggregate.ConfirmCompletion(cmd.RequesterID(), now); err != nil {
		return err
	}

	applied, err := orderRepo.ApplyTransition(ctx, aggregate, fromStatus)
	if err != nil {
		return err
	}
	if !applied {
		return ErrOrderNoLongerAvailable
	}

	if courierID != nil {
		active, activeErr := orderRepo.GetActiveByCourier(ctx, *courierID)
		if activeErr != nil {
			return activeErr
		}
		if len(active) == 0 {
			if err = uow.PositionRepository().StopTracking(ctx, *courierID); err != nil {
				return err
			}
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if courierID != nil {
		h.notify(ctx, ports.Notification{
			RecipientID: courierID.String(),
			Kind:        ports.NotificationOrderDelivered,
			OrderID:     aggregate.ID().String(),
			Title:       "Order delivered",
			Body:        "The requester confirmed receipt of the delivery.",
			OccurredAt:  now,
		})
	}

	return nil
}

func (h ConfirmCompletionCommandHandler) notify(ctx context.Context, n ports.Notification) {
	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"kind", string(n.Kind), "order_id", n.OrderID, "error", err)
	}
}
