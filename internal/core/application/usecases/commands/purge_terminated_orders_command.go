package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrPurgeTerminatedOrdersCommandIsNotConstructed = errors.New(
	"PurgeTerminatedOrdersCommand must be created via NewPurgeTerminatedOrdersCommand constructor",
)

// PurgeTerminatedOrdersCommand removes delivered and cancelled orders older
// than the retention period. Terminal orders carry no further state
// transitions, so removal is a plain delete rather than a guarded update.
type PurgeTerminatedOrdersCommand struct { //nolint:recvcheck //using for validation
	retention time.Duration

	guard guard.ConstructorGuard
}

// NewPurgeTerminatedOrdersCommand creates a retention cleanup command.
// The retention period must be positive.
func NewPurgeTerminatedOrdersCommand(retention time.Duration) (PurgeTerminatedOrdersCommand, error) {
	if retention <= 0 {
		return PurgeTerminatedOrdersCommand{}, errs.NewValueIsInvalidError("retention")
	}

	return PurgeTerminatedOrdersCommand{
		retention: retention,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c PurgeTerminatedOrdersCommand) Validate() error {
	return c.guard.Validate(ErrPurgeTerminatedOrdersCommandIsNotConstructed)
}

// Retention returns how long terminal orders are kept before removal.
func (c PurgeTerminatedOrdersCommand) Retention() time.Duration {
	return c.retention
}
