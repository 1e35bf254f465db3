package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// AssignCourierCommandHandler proposes a ready order to a courier.
//
// The transition ready_for_delivery -> assigned_pending_acceptance is
// persisted as a conditional update; losing the race surfaces as
// ErrOrderNoLongerAvailable. On success the courier is notified of the offer.
type AssignCourierCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewAssignCourierCommandHandler creates a handler for assignment proposals.
func NewAssignCourierCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "assign_courier"),
	}
}

// Handle processes the assignment proposal.
// Loads the order, checks the caller is its facility, applies the guarded
// transition, and notifies the proposed courier after commit.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) error {
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

	if err = aggregate.Assign(cmd.CourierID(), now); err != nil {
		return err
	}

	applied, err := orderRepo.ApplyTransition(ctx, aggregate, order.ReadyForDelivery)
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
		Kind:        ports.NotificationAssignmentOffered,
		OrderID:     cmd.OrderID().String(),
		Title:       "New delivery offer",
		Body:        "A delivery was proposed to you. Accept within 3 minutes.",
		OccurredAt:  now,
	})

	return nil
}

func (h AssignCourierCommandHandler) notify(ctx context.Context, n ports.Notification) {
	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"kind", string(n.Kind), "order_id", n.OrderID, "error", err)
	}
}
