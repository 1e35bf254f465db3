package queries

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderTrackingQueryHandler assembles the live tracking view of an order:
// status, courier position, geofence zone, arrival estimate, and the resolved
// destination address.
//
// Degradation rules: a missing destination or missing telemetry yields a view
// without zone and estimate; a failing reverse geocoder yields the "lat,lng"
// textual form. Only the order itself being absent is an error.
type GetOrderTrackingQueryHandler struct {
	db        *gorm.DB
	estimator services.ProximityEstimator
	planner   ports.RoutePlanner
	logger    *slog.Logger
}

// NewGetOrderTrackingQueryHandler creates a handler for tracking view
// queries. planner may be nil; address resolution then always falls back.
func NewGetOrderTrackingQueryHandler(
	db *gorm.DB,
	estimator services.ProximityEstimator,
	planner ports.RoutePlanner,
	logger *slog.Logger,
) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{
		db:        db,
		estimator: estimator,
		planner:   planner,
		logger:    logger.With("component", "order_tracking"),
	}
}

type orderTrackingRow struct {
	ID        uuid.UUID
	Requester uuid.UUID
	Facility  uuid.UUID
	Courier   *uuid.UUID
	Status    string
	Address   string
	DestLat   *float64
	DestLng   *float64
}

type positionRow struct {
	Lat            float64
	Lng            float64
	Speed          float64
	Bearing        float64
	Accuracy       float64
	SampledAt      time.Time
	ActiveTracking bool
}

// Handle executes the tracking query.
// Returns errs.ErrObjectNotFound for an unknown order and
// ErrNotOrderParticipant when the caller has no stake in it.
func (h GetOrderTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetOrderTrackingQuery,
) (OrderTrackingResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderTrackingResponse{}, err
	}

	row, err := h.loadOrder(ctx, query.OrderID())
	if err != nil {
		return OrderTrackingResponse{}, err
	}

	if err = h.authorize(query.CallerID(), row); err != nil {
		return OrderTrackingResponse{}, err
	}

	response := OrderTrackingResponse{
		OrderID: query.OrderID(),
		Status:  row.Status,
		Address: row.Address,
	}

	if row.Courier != nil {
		courierID, idErr := kernel.UUIDFromBytes(row.Courier[:])
		if idErr != nil {
			return OrderTrackingResponse{}, idErr
		}
		response.CourierID = &courierID
	}

	destination, hasDestination := h.destination(row)
	if hasDestination {
		response.ResolvedAddress = h.resolveAddress(ctx, destination, row.Address)
	}

	position, err := h.loadPosition(ctx, response.CourierID)
	if err != nil {
		return OrderTrackingResponse{}, err
	}
	if position == nil {
		return response, nil
	}

	response.Position = &TrackedPosition{
		Lat:       position.Point().Lat(),
		Lng:       position.Point().Lng(),
		Speed:     position.Speed(),
		Bearing:   position.Bearing(),
		Accuracy:  position.Accuracy(),
		SampledAt: position.SampledAt(),
	}

	if !hasDestination {
		return response, nil
	}

	estimate, err := h.estimator.Estimate(ctx, position, destination)
	if err != nil {
		return OrderTrackingResponse{}, err
	}

	arrivalSeconds := int64(estimate.Arrival / time.Second)
	response.Zone = estimate.Zone.String()
	response.ArrivalSeconds = &arrivalSeconds
	response.Approximate = estimate.Approximate

	return response, nil
}

func (h GetOrderTrackingQueryHandler) loadOrder(ctx context.Context, orderID kernel.UUID) (orderTrackingRow, error) {
	var row orderTrackingRow

	err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			requester_id AS requester,
			facility_id AS facility,
			courier_id AS courier,
			status,
			address,
			dest_lat,
			dest_lng
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Row().Scan(
		&row.ID, &row.Requester, &row.Facility, &row.Courier,
		&row.Status, &row.Address, &row.DestLat, &row.DestLng,
	)
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return orderTrackingRow{}, errs.NewObjectNotFoundErrorWithCause("orderID", orderID.String(), err)
	}
	if err != nil {
		return orderTrackingRow{}, err
	}

	return row, nil
}

func (h GetOrderTrackingQueryHandler) authorize(callerID kernel.UUID, row orderTrackingRow) error {
	caller := callerID.Bytes()
	if caller == row.Requester || caller == row.Facility {
		return nil
	}
	if row.Courier != nil && caller == *row.Courier {
		return nil
	}
	return ErrNotOrderParticipant
}

func (h GetOrderTrackingQueryHandler) destination(row orderTrackingRow) (kernel.GeoPoint, bool) {
	if row.DestLat == nil || row.DestLng == nil {
		return kernel.GeoPoint{}, false
	}

	point, err := kernel.NewGeoPoint(*row.DestLat, *row.DestLng)
	if err != nil {
		return kernel.GeoPoint{}, false
	}
	return point, true
}

func (h GetOrderTrackingQueryHandler) resolveAddress(
	ctx context.Context,
	destination kernel.GeoPoint,
	stored string,
) string {
	if h.planner == nil {
		return destination.String()
	}

	resolved, err := h.planner.ReverseGeocode(ctx, destination)
	if err != nil || resolved == "" {
		h.logger.DebugContext(ctx, "reverse geocoding unavailable", "error", err)
		if stored != "" {
			return stored
		}
		return destination.String()
	}
	return resolved
}

func (h GetOrderTrackingQueryHandler) loadPosition(
	ctx context.Context,
	courierID *kernel.UUID,
) (*courier.Position, error) {
	if courierID == nil {
		return nil, nil
	}

	var row positionRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			lat,
			lng,
			speed,
			bearing,
			accuracy,
			sampled_at,
			active_tracking
		FROM courier_positions
		WHERE courier_id = ?
	`, courierID.Bytes()).Row().Scan(
		&row.Lat, &row.Lng, &row.Speed, &row.Bearing,
		&row.Accuracy, &row.SampledAt, &row.ActiveTracking,
	)
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	point, err := kernel.NewGeoPoint(row.Lat, row.Lng)
	if err != nil {
		return nil, err
	}

	return courier.RestorePosition(
		*courierID, point,
		row.Speed, row.Bearing, row.Accuracy,
		row.SampledAt, row.ActiveTracking,
	)
}
