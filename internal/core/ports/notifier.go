package ports

import (
	"context"
	"time"
)

// NotificationKind identifies the delivery event a notification reports.
type NotificationKind string

const (
	NotificationAssignmentOffered  NotificationKind = "assignment_offered"
	NotificationAssignmentExpired  NotificationKind = "assignment_expired"
	NotificationAssignmentRejected NotificationKind = "assignment_rejected"
	NotificationOrderAccepted      NotificationKind = "order_accepted"
	NotificationCourierArrived     NotificationKind = "courier_arrived"
	NotificationOrderDelivered     NotificationKind = "order_delivered"
)

// Notification is a delivery lifecycle event addressed to one party of an
// order. RecipientID keys partitioning so one recipient's notifications stay
// ordered.
type Notification struct {
	RecipientID string           `json:"recipient_id"`
	Kind        NotificationKind `json:"kind"`
	OrderID     string           `json:"order_id"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// Notifier publishes delivery lifecycle notifications. Implementations
// deliver asynchronously; a returned error means the event could not be
// enqueued, and callers log it without failing the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
