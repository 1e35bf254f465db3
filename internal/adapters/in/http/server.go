// Package http exposes the dispatch API over echo. Callers identify
// themselves with the X-User-Id header; every operation re-checks that the
// caller actually holds the role it claims for the target order, so the
// header only selects an identity, it never grants one.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// userIDHeader carries the authenticated caller's identity. Verification of
// the header's authenticity is the gateway's job; this service only enforces
// per-order party checks.
const userIDHeader = "X-User-Id"

var errIdentityRequired = errors.New("X-User-Id header with a valid user id is required")

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrder       commands.CreateOrderCommandHandler
	advanceStatus     commands.AdvanceOrderStatusCommandHandler
	assignCourier     commands.AssignCourierCommandHandler
	acceptAssignment  commands.AcceptAssignmentCommandHandler
	rejectAssignment  commands.RejectAssignmentCommandHandler
	confirmArrival    commands.ConfirmArrivalCommandHandler
	confirmCompletion commands.ConfirmCompletionCommandHandler
	reportPosition    commands.ReportPositionCommandHandler

	courierAssignments queries.GetCourierAssignmentsQueryHandler
	orderTracking      queries.GetOrderTrackingQueryHandler

	bus ports.EventBus
}

// NewServer creates an HTTP server with the required command and query
// handlers. The event bus feeds the streaming tracking endpoint.
func NewServer(
	createOrder commands.CreateOrderCommandHandler,
	advanceStatus commands.AdvanceOrderStatusCommandHandler,
	assignCourier commands.AssignCourierCommandHandler,
	acceptAssignment commands.AcceptAssignmentCommandHandler,
	rejectAssignment commands.RejectAssignmentCommandHandler,
	confirmArrival commands.ConfirmArrivalCommandHandler,
	confirmCompletion commands.ConfirmCompletionCommandHandler,
	reportPosition commands.ReportPositionCommandHandler,
	courierAssignments queries.GetCourierAssignmentsQueryHandler,
	orderTracking queries.GetOrderTrackingQueryHandler,
	bus ports.EventBus,
) *Server {
	return &Server{
		createOrder:        createOrder,
		advanceStatus:      advanceStatus,
		assignCourier:      assignCourier,
		acceptAssignment:   acceptAssignment,
		rejectAssignment:   rejectAssignment,
		confirmArrival:     confirmArrival,
		confirmCompletion:  confirmCompletion,
		reportPosition:     reportPosition,
		courierAssignments: courierAssignments,
		orderTracking:      orderTracking,
		bus:                bus,
	}
}

// RegisterRoutes mounts all API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/:orderID/status", s.AdvanceOrderStatus)
	api.POST("/orders/:orderID/assign", s.AssignCourier)
	api.POST("/orders/:orderID/accept", s.AcceptAssignment)
	api.POST("/orders/:orderID/reject", s.RejectAssignment)
	api.POST("/orders/:orderID/arrival", s.ConfirmArrival)
	api.POST("/orders/:orderID/complete", s.ConfirmCompletion)
	api.GET("/orders/:orderID/tracking", s.GetOrderTracking)
	api.GET("/orders/:orderID/track", s.TrackOrder)
	api.POST("/couriers/:courierID/position", s.ReportPosition)
	api.GET("/couriers/:courierID/assignments", s.GetCourierAssignments)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders. The caller becomes the order's
// requester.
func (s *Server) CreateOrder(c echo.Context) error {
	requesterID, err := callerID(c)
	if err != nil {
		return writeError(c, err)
	}

	var request CreateOrderRequest
	if err = c.Bind(&request); err != nil {
		return writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	facilityID, err := parseID(request.FacilityID, "facility_id")
	if err != nil {
		return writeError(c, err)
	}

	var destination *kernel.GeoPoint
	if request.Destination != nil {
		point, pointErr := kernel.NewGeoPoint(request.Destination.Lat, request.Destination.Lng)
		if pointErr != nil {
			return writeError(c, pointErr)
		}
		destination = &point
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(
		orderID, requesterID, facilityID,
		request.Address, destination, request.Amount, request.Items,
	)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.createOrder.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, CreateOrderResponse{OrderID: orderID.String()})
}

// AdvanceOrderStatus handles POST /api/v1/orders/:orderID/status. The caller
// must be the order's facility; the target must be a facility-owned status.
func (s *Server) AdvanceOrderStatus(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	var request AdvanceStatusRequest
	if err = c.Bind(&request); err != nil {
		return writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	cmd, err := commands.NewAdvanceOrderStatusCommand(orderID, callerUUID, order.Status(request.Status))
	if err != nil {
		return writeError(c, err)
	}

	if err = s.advanceStatus.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AssignCourier handles POST /api/v1/orders/:orderID/assign.
func (s *Server) AssignCourier(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	var request AssignCourierRequest
	if err = c.Bind(&request); err != nil {
		return writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	courierUUID, err := parseID(request.CourierID, "courier_id")
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewAssignCourierCommand(orderID, courierUUID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.assignCourier.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AcceptAssignment handles POST /api/v1/orders/:orderID/accept. The caller
// must be the proposed courier.
func (s *Server) AcceptAssignment(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewAcceptAssignmentCommand(orderID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.acceptAssignment.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RejectAssignment handles POST /api/v1/orders/:orderID/reject.
func (s *Server) RejectAssignment(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewRejectAssignmentCommand(orderID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.rejectAssignment.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ConfirmArrival handles POST /api/v1/orders/:orderID/arrival.
func (s *Server) ConfirmArrival(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewConfirmArrivalCommand(orderID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.confirmArrival.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ConfirmCompletion handles POST /api/v1/orders/:orderID/complete. The
// caller must be the order's requester.
func (s *Server) ConfirmCompletion(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	cmd, err := commands.NewConfirmCompletionCommand(orderID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.confirmCompletion.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ReportPosition handles POST /api/v1/couriers/:courierID/position. The
// caller must be the courier named in the path.
func (s *Server) ReportPosition(c echo.Context) error {
	callerUUID, err := callerID(c)
	if err != nil {
		return writeError(c, err)
	}

	courierUUID, err := parseID(c.Param("courierID"), "courierID")
	if err != nil {
		return writeError(c, err)
	}

	var request ReportPositionRequest
	if err = c.Bind(&request); err != nil {
		return writeError(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	cmd, err := commands.NewReportPositionCommand(
		courierUUID, callerUUID,
		request.Lat, request.Lng,
		request.Speed, request.Bearing,
		request.Accuracy, request.SampledAt,
	)
	if err != nil {
		return writeError(c, err)
	}

	if err = s.reportPosition.Handle(c.Request().Context(), cmd); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetCourierAssignments handles GET /api/v1/couriers/:courierID/assignments.
func (s *Server) GetCourierAssignments(c echo.Context) error {
	callerUUID, err := callerID(c)
	if err != nil {
		return writeError(c, err)
	}

	courierUUID, err := parseID(c.Param("courierID"), "courierID")
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewGetCourierAssignmentsQuery(courierUUID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	assignments, err := s.courierAssignments.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	response := make([]CourierAssignmentPayload, len(assignments))
	for i, assignment := range assignments {
		payload := CourierAssignmentPayload{
			OrderID:  assignment.OrderID.String(),
			Status:   assignment.Status,
			Address:  assignment.Address,
			Amount:   assignment.Amount,
			AcceptBy: assignment.AcceptBy,
		}
		if assignment.DestLat != nil && assignment.DestLng != nil {
			payload.Destination = &GeoPointPayload{Lat: *assignment.DestLat, Lng: *assignment.DestLng}
		}
		response[i] = payload
	}

	return c.JSON(http.StatusOK, response)
}

// GetOrderTracking handles GET /api/v1/orders/:orderID/tracking.
func (s *Server) GetOrderTracking(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewGetOrderTrackingQuery(orderID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	tracking, err := s.orderTracking.Handle(c.Request().Context(), query)
	if err != nil {
		return writeError(c, err)
	}

	payload := OrderTrackingPayload{
		OrderID:         tracking.OrderID.String(),
		Status:          tracking.Status,
		Address:         tracking.Address,
		ResolvedAddress: tracking.ResolvedAddress,
		Zone:            tracking.Zone,
		ArrivalSeconds:  tracking.ArrivalSeconds,
		Approximate:     tracking.Approximate,
	}
	if tracking.CourierID != nil {
		courierStr := tracking.CourierID.String()
		payload.CourierID = &courierStr
	}
	if tracking.Position != nil {
		payload.Position = &TrackedPositionPayload{
			Lat:       tracking.Position.Lat,
			Lng:       tracking.Position.Lng,
			Speed:     tracking.Position.Speed,
			Bearing:   tracking.Position.Bearing,
			Accuracy:  tracking.Position.Accuracy,
			SampledAt: tracking.Position.SampledAt,
		}
	}

	return c.JSON(http.StatusOK, payload)
}

// TrackOrder handles GET /api/v1/orders/:orderID/track. It streams position
// updates as newline-delimited JSON until the client disconnects. The
// tracking query runs first so authorization and existence errors surface
// before the stream starts.
func (s *Server) TrackOrder(c echo.Context) error {
	orderID, callerUUID, err := orderAndCaller(c)
	if err != nil {
		return writeError(c, err)
	}

	query, err := queries.NewGetOrderTrackingQuery(orderID, callerUUID)
	if err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	if _, err = s.orderTracking.Handle(ctx, query); err != nil {
		return writeError(c, err)
	}

	updates, err := s.bus.Subscribe(ctx, ports.OrderTopic(orderID.String()))
	if err != nil {
		return writeError(c, err)
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	encoder := json.NewEncoder(response)
	for update := range updates {
		if err = encoder.Encode(update); err != nil {
			return nil
		}
		response.Flush()
	}

	return nil
}

func callerID(c echo.Context) (kernel.UUID, error) {
	raw := c.Request().Header.Get(userIDHeader)
	if raw == "" {
		return kernel.UUID{}, errIdentityRequired
	}

	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errIdentityRequired
	}
	return id, nil
}

func orderAndCaller(c echo.Context) (kernel.UUID, kernel.UUID, error) {
	callerUUID, err := callerID(c)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	orderID, err := parseID(c.Param("orderID"), "orderID")
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}

	return orderID, callerUUID, nil
}

func parseID(raw, paramName string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(paramName, err)
	}
	return id, nil
}
