package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrSweepExpiredAssignmentsCommandIsNotConstructed = errors.New(
	"SweepExpiredAssignmentsCommand must be created via NewSweepExpiredAssignmentsCommand constructor",
)

// SweepExpiredAssignmentsCommand triggers one pass of the lazy assignment
// timeout sweep. The command carries no parameters; expiry is evaluated
// against the wall clock at handling time.
type SweepExpiredAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

// NewSweepExpiredAssignmentsCommand creates a sweep trigger.
func NewSweepExpiredAssignmentsCommand() SweepExpiredAssignmentsCommand {
	return SweepExpiredAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c SweepExpiredAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrSweepExpiredAssignmentsCommandIsNotConstructed)
}
