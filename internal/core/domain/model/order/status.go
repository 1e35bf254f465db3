package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery order. The string
// values are the exact tokens persisted to the store and exposed over the
// API; they must never be renamed.
//
// State transitions:
//
//	pending ──> confirmed ──> preparing ──> ready_for_delivery
//	   │            │                             │        ▲
//	   │            │                             ▼        │ (reject / expire)
//	   └─> cancelled <┘          assigned_pending_acceptance
//	                                              │ (accept)
//	                                              ▼
//	                      in_transit ──> arrived_pending_confirmation
//	                           │                  │
//	                           └──────────────────┴──> delivered
//
// Status is a value object that validates transitions through the edge
// table below; no other transition is ever observable in the store.
type Status string

const (
	// Pending is the initial status set by the requester-facing subsystem.
	Pending Status = "pending"
	// Confirmed means the facility acknowledged the order.
	Confirmed Status = "confirmed"
	// Preparing means the facility is preparing the items.
	Preparing Status = "preparing"
	// ReadyForDelivery means the order awaits courier assignment.
	ReadyForDelivery Status = "ready_for_delivery"
	// AssignedPendingAcceptance means a courier was proposed and must
	// accept or reject within the acceptance window.
	AssignedPendingAcceptance Status = "assigned_pending_acceptance"
	// InTransit means the courier accepted and is delivering.
	InTransit Status = "in_transit"
	// ArrivedPendingConfirmation means the courier flagged arrival and the
	// requester must confirm receipt.
	ArrivedPendingConfirmation Status = "arrived_pending_confirmation"
	// Delivered is the successful terminal status.
	Delivered Status = "delivered"
	// Cancelled is the unsuccessful terminal status.
	Cancelled Status = "cancelled"
)

// legalEdges is the authoritative transition table. A transition is legal
// iff the target status appears in the slice keyed by the source status.
var legalEdges = map[Status][]Status{
	Pending:                    {Confirmed, Cancelled},
	Confirmed:                  {Preparing, Cancelled},
	Preparing:                  {ReadyForDelivery},
	ReadyForDelivery:           {AssignedPendingAcceptance},
	AssignedPendingAcceptance:  {InTransit, ReadyForDelivery},
	InTransit:                  {ArrivedPendingConfirmation, Delivered},
	ArrivedPendingConfirmation: {Delivered},
	Delivered:                  {},
	Cancelled:                  {},
}

// Validate checks that the status is one of the enumerated tokens.
func (s Status) Validate() error {
	if _, ok := legalEdges[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

// String implements fmt.Stringer, returning the persisted token.
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving to the target status is a legal edge.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range legalEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo returns the target status if the edge is legal, or an
// invalid-state error naming the legal alternatives otherwise.
func (s Status) TransitionTo(to Status) (Status, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if err := to.Validate(); err != nil {
		return "", err
	}
	if !s.CanTransitionTo(to) {
		return "", fmt.Errorf("%w: %s -> %s (legal: %s)",
			ErrInvalidStateTransition, s, to, s.describeNext())
	}
	return to, nil
}

// NextStatuses returns all legal target statuses from the current one.
func (s Status) NextStatuses() []Status {
	return append([]Status(nil), legalEdges[s]...)
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return len(legalEdges[s]) == 0 && s.Validate() == nil
}

// RequiresCourier reports whether the status implies a courier assignment.
// The courier id must be set exactly for these statuses.
func (s Status) RequiresCourier() bool {
	switch s {
	case AssignedPendingAcceptance, InTransit, ArrivedPendingConfirmation, Delivered:
		return true
	default:
		return false
	}
}

// TracksPosition reports whether position updates of the assigned or
// prospective courier are broadcast to the order's topic.
func (s Status) TracksPosition() bool {
	switch s {
	case Preparing, ReadyForDelivery, AssignedPendingAcceptance, InTransit:
		return true
	default:
		return false
	}
}

func (s Status) describeNext() string {
	next := legalEdges[s]
	if len(next) == 0 {
		return "none, terminal state"
	}
	tokens := make([]string, len(next))
	for i, n := range next {
		tokens[i] = string(n)
	}
	return strings.Join(tokens, ", ")
}
