package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// RejectAssignmentCommandHandler records a courier's refusal, releasing the
// order back to ready_for_delivery and flagging the rejection so dispatch can
// pick a different courier.
type RejectAssignmentCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewRejectAssignmentCommandHandler creates a handler for rejection operations.
func NewRejectAssignmentCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) RejectAssignmentCommandHandler {
	return RejectAssignmentCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "reject_assignment"),
	}
}

// Handle processes the rejection.
// Only the proposed courier may reject, and only while the order is still
// pending acceptance; a resolved race surfaces as ErrOrderNoLongerAvailable.
func (h RejectAssignmentCommandHandler) Handle(ctx context.Context, cmd RejectAssignmentCommand) error {
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

	if err = aggregate.Reject(cmd.CourierID(), now); err != nil {
		return err
	}

	applied, err := orderRepo.ApplyTransition(ctx, aggregate, order.AssignedPendingAcceptance)
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
		RecipientID: cmd.CourierID().String(),
		Kind:        ports.NotificationAssignmentRejected,
		OrderID:     aggregate.ID().String(),
		Title:       "Delivery offer declined",
		Body:        "You declined the delivery. The order awaits reassignment.",
		OccurredAt:  now,
	})

	return nil
}

func (h RejectAssignmentCommandHandler) notify(ctx context.Context, n ports.Notification) {
	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"kind", string(n.Kind), "order_id", n.OrderID, "error", err)
	}
}
