// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
//
// Every status change is persisted through a conditional transition guarded
// by the expected previous status. When the guard matches zero rows a
// concurrent caller won the race and handlers surface the uniform
// ErrOrderNoLongerAvailable instead of leaking which racer got there first.
package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/ports"
)

// ErrOrderNoLongerAvailable is the uniform outcome of losing a transition
// race: the order moved on before this caller's conditional update applied.
var ErrOrderNoLongerAvailable = errors.New("order is no longer available")

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// PositionRepoFactory provides access to position repository within a transaction.
	PositionRepoFactory interface {
		PositionRepository() ports.PositionRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used when commands only modify order aggregates.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// PositionUoW manages transactions for courier telemetry operations.
	PositionUoW interface {
		TxManager
		PositionRepoFactory
	}

	// PositionUoWFactory creates new position unit of work instances.
	PositionUoWFactory interface {
		Create() PositionUoW
	}

	// UoW manages transactions across order and telemetry state.
	// Used for commands that read both aggregate types, such as position
	// ingestion fanning out to the courier's trackable orders.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   positionRepo := uow.PositionRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		PositionRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
