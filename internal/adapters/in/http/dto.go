package http

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the uniform error payload of the API.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GeoPointPayload carries a coordinate pair in request and response bodies.
type GeoPointPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateOrderRequest is the body of POST /api/v1/orders. The caller is the
// requester; the facility is named explicitly.
type CreateOrderRequest struct {
	FacilityID  string           `json:"facility_id"`
	Address     string           `json:"address"`
	Destination *GeoPointPayload `json:"destination,omitempty"`
	Amount      float64          `json:"amount"`
	Items       json.RawMessage  `json:"items,omitempty"`
}

// CreateOrderResponse returns the identifier of the created order.
type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

// AdvanceStatusRequest is the body of POST /api/v1/orders/:orderID/status.
type AdvanceStatusRequest struct {
	Status string `json:"status"`
}

// AssignCourierRequest is the body of POST /api/v1/orders/:orderID/assign.
type AssignCourierRequest struct {
	CourierID string `json:"courier_id"`
}

// ReportPositionRequest is the body of POST /api/v1/couriers/:courierID/position.
// Speed and bearing are optional; omitted values are derived from the
// previously stored sample. A zero sampled_at means "now".
type ReportPositionRequest struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     *float64  `json:"speed,omitempty"`
	Bearing   *float64  `json:"bearing,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	SampledAt time.Time `json:"sampled_at,omitempty"`
}

// CourierAssignmentPayload is one entry of a courier's work list.
type CourierAssignmentPayload struct {
	OrderID     string           `json:"order_id"`
	Status      string           `json:"status"`
	Address     string           `json:"address"`
	Destination *GeoPointPayload `json:"destination,omitempty"`
	Amount      float64          `json:"amount"`
	AcceptBy    *time.Time       `json:"accept_by,omitempty"`
}

// TrackedPositionPayload is the courier telemetry part of a tracking view.
type TrackedPositionPayload struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     float64   `json:"speed"`
	Bearing   float64   `json:"bearing"`
	Accuracy  float64   `json:"accuracy"`
	SampledAt time.Time `json:"sampled_at"`
}

// OrderTrackingPayload is the body of GET /api/v1/orders/:orderID/tracking.
type OrderTrackingPayload struct {
	OrderID         string                  `json:"order_id"`
	Status          string                  `json:"status"`
	Address         string                  `json:"address"`
	ResolvedAddress string                  `json:"resolved_address,omitempty"`
	CourierID       *string                 `json:"courier_id,omitempty"`
	Position        *TrackedPositionPayload `json:"position,omitempty"`
	Zone            string                  `json:"zone,omitempty"`
	ArrivalSeconds  *int64                  `json:"arrival_seconds,omitempty"`
	Approximate     bool                    `json:"approximate,omitempty"`
}
