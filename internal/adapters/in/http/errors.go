package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// forbiddenErrors are party-check failures: the caller is authenticated but
// has no right to act on this order or courier.
var forbiddenErrors = []error{
	commands.ErrNotOrderFacility,
	commands.ErrNotPositionOwner,
	order.ErrNotAssignedCourier,
	order.ErrNotOrderRequester,
	queries.ErrNotAssignmentsOwner,
	queries.ErrNotOrderParticipant,
}

// conflictErrors mean the order moved on before this request took effect:
// illegal transition, elapsed acceptance window, or a lost update race.
var conflictErrors = []error{
	order.ErrInvalidStateTransition,
	order.ErrAssignmentExpired,
	commands.ErrOrderNoLongerAvailable,
}

// validationErrors cover malformed input rejected before any state change.
var validationErrors = []error{
	errs.ErrValueIsInvalid,
	errs.ErrValueIsOutOfRange,
	errs.ErrValueIsRequired,
	commands.ErrAddressIsRequired,
	commands.ErrAmountIsInvalid,
	commands.ErrStatusNotAdvanceable,
}

// writeError maps a use case error onto the API taxonomy: 400 for
// validation, 401 for a missing identity, 403 for party checks, 404 for
// unknown objects, 409 for state conflicts, 500 for everything else.
func writeError(c echo.Context, err error) error {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}

	return c.JSON(status, ErrorResponse{
		Code:    status,
		Message: message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errIdentityRequired):
		return http.StatusUnauthorized
	case matchesAny(err, validationErrors):
		return http.StatusBadRequest
	case matchesAny(err, forbiddenErrors):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case matchesAny(err, conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
