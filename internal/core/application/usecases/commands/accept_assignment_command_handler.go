package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// AcceptAssignmentCommandHandler records a courier's acceptance.
//
// Expiry is evaluated lazily right here: when the acceptance window already
// elapsed the handler releases the order through the same guarded transition
// the sweeper uses, emits the single "assignment expired" notification, and
// reports order.ErrAssignmentExpired to the caller.
type AcceptAssignmentCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewAcceptAssignmentCommandHandler creates a handler for acceptance operations.
func NewAcceptAssignmentCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) AcceptAssignmentCommandHandler {
	return AcceptAssignmentCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "accept_assignment"),
	}
}

// Handle processes the acceptance.
// An open window moves the order to in_transit and notifies the requester; an
// elapsed window resolves the expiry instead. Either way the status change is
// a conditional update and a lost race surfaces as ErrOrderNoLongerAvailable.
func (h AcceptAssignmentCommandHandler) Handle(ctx context.Context, cmd AcceptAssignmentCommand) error {
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

	if aggregate.Status() == order.AssignedPendingAcceptance && aggregate.AssignmentExpired(now) {
		if assigned := aggregate.CourierID(); assigned == nil || !assigned.IsEqual(cmd.CourierID()) {
			return order.ErrNotAssignedCourier
		}
		return h.resolveExpiry(ctx, uow, aggregate, now)
	}

	if err = aggregate.Accept(cmd.CourierID(), now); err != nil {
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
		RecipientID: aggregate.RequesterID().String(),
		Kind:        ports.NotificationOrderAccepted,
		OrderID:     aggregate.ID().String(),
		Title:       "Courier on the way",
		Body:        "A courier accepted your delivery and is heading to you.",
		OccurredAt:  now,
	})

	return nil
}

// resolveExpiry releases an expired assignment on the accept path. The
// conditional update guarantees at most one resolver emits the expiry
// notification even when the cron sweep races this call.
func (h AcceptAssignmentCommandHandler) resolveExpiry(
	ctx context.Context,
	uow OrderUoW,
	aggregate *order.Order,
	now time.Time,
) error {
	expiredCourier := aggregate.CourierID()

	if err := aggregate.Expire(now); err != nil {
		return err
	}

	applied, err := uow.OrderRepository().ApplyTransition(ctx, aggregate, order.AssignedPendingAcceptance)
	if err != nil {
		return err
	}
	if !applied {
		return ErrOrderNoLongerAvailable
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if expiredCourier != nil {
		h.notify(ctx, ports.Notification{
			RecipientID: expiredCourier.String(),
			Kind:        ports.NotificationAssignmentExpired,
			OrderID:     aggregate.ID().String(),
			Title:       "Delivery offer expired",
			Body:        "The acceptance window elapsed and the offer was withdrawn.",
			OccurredAt:  now,
		})
	}

	return order.ErrAssignmentExpired
}

func (h AcceptAssignmentCommandHandler) notify(ctx context.Context, n ports.Notification) {
	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"kind", string(n.Kind), "order_id", n.OrderID, "error", err)
	}
}
