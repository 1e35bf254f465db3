package orderrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// courierBoundStatuses are the statuses during which an order belongs to a
// specific courier's work list.
var courierBoundStatuses = []string{
	string(order.AssignedPendingAcceptance),
	string(order.InTransit),
	string(order.ArrivedPendingConfirmation),
}

// terminalStatuses are the statuses eligible for retention cleanup.
var terminalStatuses = []string{
	string(order.Delivered),
	string(order.Cancelled),
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ApplyTransition persists the aggregate's state as a single UPDATE whose
// predicate includes the expected previous status. Zero affected rows means a
// concurrent caller changed the status first; that is reported as applied ==
// false and never as an error.
//
// Column values come from an explicit map so that cleared fields, courier_id
// and assigned_at after a release in particular, are written as NULL instead
// of being skipped as zero values.
func (r *GormOrderRepository) ApplyTransition(
	ctx context.Context,
	aggregate *order.Order,
	fromStatus order.Status,
) (bool, error) {
	if err := aggregate.Validate(); err != nil {
		return false, err
	}
	if err := fromStatus.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, string(fromStatus)).
		Updates(map[string]any{
			"status":                 dto.Status,
			"courier_id":             dto.CourierID,
			"updated_at":             dto.UpdatedAt,
			"assigned_at":            dto.AssignedAt,
			"delivered_at":           dto.DeliveredAt,
			"requester_confirmed_at": dto.RequesterConfirmedAt,
			"courier_confirmed_at":   dto.CourierConfirmedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return true, nil
}

// GetExpiredAssignments retrieves orders pending acceptance whose proposal is
// older than the acceptance window at the given instant. The boundary is
// strict: a proposal exactly at the window edge is still acceptable.
func (r *GormOrderRepository) GetExpiredAssignments(ctx context.Context, now time.Time) ([]*order.Order, error) {
	cutoff := now.Add(-order.AcceptanceWindow)

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status = ? AND assigned_at < ?", string(order.AssignedPendingAcceptance), cutoff).
		Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAssignmentsForCourier retrieves the orders currently proposed to or
// carried by the courier.
func (r *GormOrderRepository) GetAssignmentsForCourier(
	ctx context.Context,
	courierID kernel.UUID,
) ([]*order.Order, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "courier_id = ? AND status IN ?", courierID.Bytes(), []string{
			string(order.AssignedPendingAcceptance),
			string(order.InTransit),
		}).
		Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetActiveByCourier retrieves the courier's orders in any non-terminal
// courier-bound status.
func (r *GormOrderRepository) GetActiveByCourier(
	ctx context.Context,
	courierID kernel.UUID,
) ([]*order.Order, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "courier_id = ? AND status IN ?", courierID.Bytes(), courierBoundStatuses).
		Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// DeleteTerminatedBefore removes delivered and cancelled orders whose last
// update predates the cutoff. Returns the number of removed orders.
func (r *GormOrderRepository) DeleteTerminatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", terminalStatuses, cutoff).
		Delete(&OrderDTO{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func toDomainSlice(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
