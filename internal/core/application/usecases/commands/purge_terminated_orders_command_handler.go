package commands

import (
	"context"
	"time"
)

// PurgeTerminatedOrdersCommandHandler deletes terminal orders past retention.
type PurgeTerminatedOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewPurgeTerminatedOrdersCommandHandler creates a handler for the retention
// cleanup.
func NewPurgeTerminatedOrdersCommandHandler(uowFactory OrderUoWFactory) PurgeTerminatedOrdersCommandHandler {
	return PurgeTerminatedOrdersCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle removes delivered and cancelled orders last updated before the
// retention cutoff and returns how many rows were removed.
func (h PurgeTerminatedOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd PurgeTerminatedOrdersCommand,
) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-cmd.Retention())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	removed, err := uow.OrderRepository().DeleteTerminatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return removed, nil
}
