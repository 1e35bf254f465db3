package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// SweepExpiredAssignmentsCommandHandler releases assignments whose acceptance
// window elapsed. There is no armed timer per assignment: this sweep runs
// from the cron job and inline before courier-facing reads, and the guarded
// transition makes concurrent sweeps converge on one winner per order, so
// exactly one "assignment expired" notification goes out per release.
type SweepExpiredAssignmentsCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewSweepExpiredAssignmentsCommandHandler creates a handler for the expiry
// sweep.
func NewSweepExpiredAssignmentsCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	logger *slog.Logger,
) SweepExpiredAssignmentsCommandHandler {
	return SweepExpiredAssignmentsCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "assignment_sweep"),
	}
}

// Handle releases every expired assignment it can win the race for and
// returns the number of orders released. Orders another caller already
// resolved are skipped without error.
func (h SweepExpiredAssignmentsCommandHandler) Handle(
	ctx context.Context,
	cmd SweepExpiredAssignmentsCommand,
) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	expired, err := orderRepo.GetExpiredAssignments(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, uow.Commit(ctx)
	}

	released := make([]ports.Notification, 0, len(expired))
	for _, aggregate := range expired {
		expiredCourier := aggregate.CourierID()

		if err = aggregate.Expire(now); err != nil {
			// Listed a moment ago but no longer expired-pending; a racer
			// resolved it between the read and now.
			continue
		}

		applied, err := orderRepo.ApplyTransition(ctx, aggregate, order.AssignedPendingAcceptance)
		if err != nil {
			return 0, err
		}
		if !applied || expiredCourier == nil {
			continue
		}

		released = append(released, ports.Notification{
			RecipientID: expiredCourier.String(),
			Kind:        ports.NotificationAssignmentExpired,
			OrderID:     aggregate.ID().String(),
			Title:       "Delivery offer expired",
			Body:        "The acceptance window elapsed and the offer was withdrawn.",
			OccurredAt:  now,
		})
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	for _, notification := range released {
		if err = h.notifier.Notify(ctx, notification); err != nil {
			h.logger.WarnContext(ctx, "notification failed",
				"kind", string(notification.Kind), "order_id", notification.OrderID, "error", err)
		}
	}

	return len(released), nil
}
