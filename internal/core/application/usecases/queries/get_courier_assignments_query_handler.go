package queries

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentSweeper releases expired assignment proposals. Satisfied by
// commands.SweepExpiredAssignmentsCommandHandler.
type AssignmentSweeper interface {
	Handle(ctx context.Context, cmd commands.SweepExpiredAssignmentsCommand) (int, error)
}

// GetCourierAssignmentsQueryHandler lists a courier's current work: offers
// pending acceptance and deliveries in transit. The expiry sweep runs first
// so the list never contains an offer whose window already elapsed.
type GetCourierAssignmentsQueryHandler struct {
	db      *gorm.DB
	sweeper AssignmentSweeper
	logger  *slog.Logger
}

// NewGetCourierAssignmentsQueryHandler creates a handler for courier work
// list queries.
func NewGetCourierAssignmentsQueryHandler(
	db *gorm.DB,
	sweeper AssignmentSweeper,
	logger *slog.Logger,
) GetCourierAssignmentsQueryHandler {
	return GetCourierAssignmentsQueryHandler{
		db:      db,
		sweeper: sweeper,
		logger:  logger.With("component", "courier_assignments"),
	}
}

// Handle executes the sweep followed by the listing. A failing sweep aborts
// the query; serving a dead offer is worse than serving an error.
func (h GetCourierAssignmentsQueryHandler) Handle(
	ctx context.Context,
	query GetCourierAssignmentsQuery,
) ([]CourierAssignmentResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if !query.CallerID().IsEqual(query.CourierID()) {
		return nil, ErrNotAssignmentsOwner
	}

	released, err := h.sweeper.Handle(ctx, commands.NewSweepExpiredAssignmentsCommand())
	if err != nil {
		return nil, err
	}
	if released > 0 {
		h.logger.InfoContext(ctx, "expired assignments released before listing", "count", released)
	}

	assignments := make([]CourierAssignmentResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			address,
			dest_lat,
			dest_lng,
			amount,
			assigned_at
		FROM orders
		WHERE courier_id = ? AND status IN ?
		ORDER BY updated_at DESC
	`, query.CourierID().Bytes(), []string{
		string(order.AssignedPendingAcceptance),
		string(order.InTransit),
		string(order.ArrivedPendingConfirmation),
	}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp CourierAssignmentResponse
		var id uuid.UUID
		var assignedAt *time.Time

		err = rows.Scan(
			&id,
			&resp.Status,
			&resp.Address,
			&resp.DestLat,
			&resp.DestLng,
			&resp.Amount,
			&assignedAt,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.OrderID = orderID

		if assignedAt != nil {
			acceptBy := assignedAt.Add(order.AcceptanceWindow)
			resp.AcceptBy = &acceptBy
		}

		assignments = append(assignments, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
