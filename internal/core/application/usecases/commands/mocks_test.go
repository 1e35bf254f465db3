package commands_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ApplyTransition(
	ctx context.Context,
	o *order.Order,
	fromStatus order.Status,
) (bool, error) {
	args := m.Called(ctx, o, fromStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetExpiredAssignments(ctx context.Context, now time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAssignmentsForCourier(
	ctx context.Context,
	courierID kernel.UUID,
) ([]*order.Order, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetActiveByCourier(ctx context.Context, courierID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) DeleteTerminatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockPositionRepository struct{ mock.Mock }

func (m *MockPositionRepository) Get(ctx context.Context, courierID kernel.UUID) (*courier.Position, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Position), args.Error(1)
}

func (m *MockPositionRepository) Upsert(ctx context.Context, position *courier.Position) (bool, error) {
	args := m.Called(ctx, position)
	return args.Bool(0), args.Error(1)
}

func (m *MockPositionRepository) StopTracking(ctx context.Context, courierID kernel.UUID) error {
	args := m.Called(ctx, courierID)
	return args.Error(0)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) PositionRepository() ports.PositionRepository {
	args := m.Called()
	return args.Get(0).(ports.PositionRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

type MockEventBus struct{ mock.Mock }

func (m *MockEventBus) Publish(ctx context.Context, update ports.PositionUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, topic string) (<-chan ports.PositionUpdate, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan ports.PositionUpdate), args.Error(1)
}

// restoreOrder builds an aggregate in the given status with consistent
// courier and assignment fields.
func restoreOrder(
	t *testing.T,
	orderID, requesterID, facilityID kernel.UUID,
	courierID *kernel.UUID,
	status order.Status,
	assignedAt *time.Time,
) *order.Order {
	t.Helper()

	destination, err := kernel.NewGeoPoint(5.3411, -4.0267)
	require.NoError(t, err)

	created := time.Now().UTC().Add(-time.Hour)

	aggregate, err := order.RestoreOrder(
		orderID, requesterID, facilityID, courierID,
		status,
		"12 Rue des Jardins, Cocody", &destination,
		8600, json.RawMessage(`[{"name":"paracetamol","qty":2}]`),
		created, created,
		assignedAt, nil, nil, nil,
	)
	require.NoError(t, err)
	return aggregate
}
