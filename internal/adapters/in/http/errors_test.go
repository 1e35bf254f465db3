package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor_MapsErrorTaxonomy(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "missing identity",
			err:      errIdentityRequired,
			expected: http.StatusUnauthorized,
		},
		{
			name:     "required value",
			err:      errs.NewValueIsRequiredError("address"),
			expected: http.StatusBadRequest,
		},
		{
			name:     "out of range coordinate",
			err:      errs.NewValueIsOutOfRangeError("lat", 91, -90, 90),
			expected: http.StatusBadRequest,
		},
		{
			name:     "negative amount",
			err:      commands.ErrAmountIsInvalid,
			expected: http.StatusBadRequest,
		},
		{
			name:     "target outside facility progression",
			err:      commands.ErrStatusNotAdvanceable,
			expected: http.StatusBadRequest,
		},
		{
			name:     "caller is not the facility",
			err:      commands.ErrNotOrderFacility,
			expected: http.StatusForbidden,
		},
		{
			name:     "caller is not the assigned courier",
			err:      order.ErrNotAssignedCourier,
			expected: http.StatusForbidden,
		},
		{
			name:     "caller has no stake in the order",
			err:      queries.ErrNotOrderParticipant,
			expected: http.StatusForbidden,
		},
		{
			name:     "unknown order",
			err:      errs.NewObjectNotFoundError("order", "a5b6"),
			expected: http.StatusNotFound,
		},
		{
			name:     "illegal transition",
			err:      fmt.Errorf("%w: delivered -> pending", order.ErrInvalidStateTransition),
			expected: http.StatusConflict,
		},
		{
			name:     "elapsed acceptance window",
			err:      order.ErrAssignmentExpired,
			expected: http.StatusConflict,
		},
		{
			name:     "lost transition race",
			err:      commands.ErrOrderNoLongerAvailable,
			expected: http.StatusConflict,
		},
		{
			name:     "unexpected failure",
			err:      errors.New("connection reset"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, statusFor(tc.err))
		})
	}
}
