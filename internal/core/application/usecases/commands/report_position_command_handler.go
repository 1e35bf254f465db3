package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ReportPositionCommandHandler ingests courier telemetry.
//
// Pipeline: authorize the caller, derive missing motion data from the
// previous sample, upsert the single position row, then fan the update out on
// the topic of every trackable order the courier carries. Out-of-order
// samples are dropped silently and broadcast failures are logged, never
// returned; a courier device must not see errors for conditions it cannot
// fix.
type ReportPositionCommandHandler struct {
	uowFactory UoWFactory
	bus        ports.EventBus
	logger     *slog.Logger
}

// NewReportPositionCommandHandler creates a handler for telemetry ingestion.
func NewReportPositionCommandHandler(
	uowFactory UoWFactory,
	bus ports.EventBus,
	logger *slog.Logger,
) ReportPositionCommandHandler {
	return ReportPositionCommandHandler{
		uowFactory: uowFactory,
		bus:        bus,
		logger:     logger.With("component", "report_position"),
	}
}

// Handle processes one telemetry sample.
// Returns ErrNotPositionOwner when the caller is not the courier; storage
// errors propagate, staleness and broadcast problems do not.
func (h ReportPositionCommandHandler) Handle(ctx context.Context, cmd ReportPositionCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if !cmd.CallerID().IsEqual(cmd.CourierID()) {
		return ErrNotPositionOwner
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	positionRepo := uow.PositionRepository()

	prev, err := positionRepo.Get(ctx, cmd.CourierID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	position, err := courier.NewPosition(cmd.CourierID(), cmd.Sample(now), prev)
	if err != nil {
		return err
	}

	applied, err := positionRepo.Upsert(ctx, position)
	if err != nil {
		return err
	}

	if !applied {
		h.logger.DebugContext(ctx, "stale position sample dropped",
			"courier_id", cmd.CourierID().String(),
			"sampled_at", position.SampledAt())
		return uow.Commit(ctx)
	}

	assignments, err := uow.OrderRepository().GetAssignmentsForCourier(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.broadcast(ctx, position, assignments)
	return nil
}

// broadcast publishes the position on each trackable order's topic.
func (h ReportPositionCommandHandler) broadcast(
	ctx context.Context,
	position *courier.Position,
	assignments []*order.Order,
) {
	for _, assignment := range assignments {
		if !assignment.Status().TracksPosition() {
			continue
		}

		update := ports.PositionUpdate{
			OrderID:   assignment.ID().String(),
			CourierID: position.CourierID().String(),
			Lat:       position.Point().Lat(),
			Lng:       position.Point().Lng(),
			Speed:     position.Speed(),
			Bearing:   position.Bearing(),
			Accuracy:  position.Accuracy(),
			SampledAt: position.SampledAt(),
		}

		if err := h.bus.Publish(ctx, update); err != nil {
			h.logger.WarnContext(ctx, "position broadcast failed",
				"order_id", update.OrderID, "error", err)
		}
	}
}
