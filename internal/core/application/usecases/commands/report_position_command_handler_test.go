package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewReportPositionCommand_CoordinateValidation(t *testing.T) {
	courierID := kernel.NewUUID()

	_, err := commands.NewReportPositionCommand(courierID, courierID, 91, 0, nil, nil, 0, time.Time{})
	require.Error(t, err)

	_, err = commands.NewReportPositionCommand(courierID, courierID, 0, -181, nil, nil, 0, time.Time{})
	require.Error(t, err)

	_, err = commands.NewReportPositionCommand(courierID, courierID, 90, 180, nil, nil, 0, time.Time{})
	require.NoError(t, err)
}

func TestReportPositionCommandHandler_Handle_CallerMustBeCourier(t *testing.T) {
	ctx := t.Context()

	cmd, err := commands.NewReportPositionCommand(
		kernel.NewUUID(), kernel.NewUUID(), 5.34, -4.02, nil, nil, 10, time.Time{})
	require.NoError(t, err)

	factory := new(MockUoWFactory)
	handler := commands.NewReportPositionCommandHandler(factory, new(MockEventBus), discardLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrNotPositionOwner)
	factory.AssertNotCalled(t, "Create")
}

func TestReportPositionCommandHandler_Handle_FirstSampleBroadcastsToTrackableOrders(t *testing.T) {
	ctx := t.Context()

	courierID := kernel.NewUUID()
	assignedAt := time.Now().UTC().Add(-time.Minute)

	inTransit := restoreOrder(t, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), &courierID,
		order.InTransit, nil)
	pendingAcceptance := restoreOrder(t, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), &courierID,
		order.AssignedPendingAcceptance, &assignedAt)
	arrived := restoreOrder(t, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), &courierID,
		order.ArrivedPendingConfirmation, nil)

	cmd, err := commands.NewReportPositionCommand(
		courierID, courierID, 5.3411, -4.0267, nil, nil, 10, time.Time{})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	positionRepo := new(MockPositionRepository)
	uow := new(MockUoW)
	bus := new(MockEventBus)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("PositionRepository").Return(positionRepo).Once(),
		positionRepo.On("Get", ctx, courierID).Return(nil, errs.ErrObjectNotFound).Once(),
		positionRepo.On("Upsert", ctx, mock.AnythingOfType("*courier.Position")).Return(true, nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAssignmentsForCourier", ctx, courierID).
			Return([]*order.Order{inTransit, pendingAcceptance, arrived}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		bus.On("Publish", ctx, mock.MatchedBy(func(u ports.PositionUpdate) bool {
			return u.OrderID == inTransit.ID().String() && u.Speed == 0 && u.Bearing == 0
		})).Return(nil).Once(),
		bus.On("Publish", ctx, mock.MatchedBy(func(u ports.PositionUpdate) bool {
			return u.OrderID == pendingAcceptance.ID().String()
		})).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReportPositionCommandHandler(factory, bus, discardLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	// arrived_pending_confirmation is not a trackable status.
	bus.AssertNumberOfCalls(t, "Publish", 2)
	positionRepo.AssertExpectations(t)
}

func TestReportPositionCommandHandler_Handle_DerivesMotionFromPreviousSample(t *testing.T) {
	ctx := t.Context()

	courierID := kernel.NewUUID()
	start := time.Now().UTC().Add(-100 * time.Second)

	prevPoint, err := kernel.NewGeoPoint(0, 0)
	require.NoError(t, err)
	prev, err := courier.RestorePosition(courierID, prevPoint, 0, 0, 10, start, true)
	require.NoError(t, err)

	inTransit := restoreOrder(t, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), &courierID,
		order.InTransit, nil)

	cmd, err := commands.NewReportPositionCommand(
		courierID, courierID, 0, 1, nil, nil, 10, start.Add(100*time.Second))
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	positionRepo := new(MockPositionRepository)
	uow := new(MockUoW)
	bus := new(MockEventBus)

	var stored *courier.Position
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("PositionRepository").Return(positionRepo).Once(),
		positionRepo.On("Get", ctx, courierID).Return(prev, nil).Once(),
		positionRepo.On("Upsert", ctx, mock.AnythingOfType("*courier.Position")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*courier.Position)
			}).Return(true, nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAssignmentsForCourier", ctx, courierID).
			Return([]*order.Order{inTransit}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		bus.On("Publish", ctx, mock.AnythingOfType("ports.PositionUpdate")).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReportPositionCommandHandler(factory, bus, discardLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 1111.95, stored.Speed(), 1)
	assert.InDelta(t, 90, stored.Bearing(), 0.01)
}

func TestReportPositionCommandHandler_Handle_StaleSampleDroppedSilently(t *testing.T) {
	ctx := t.Context()

	courierID := kernel.NewUUID()
	now := time.Now().UTC()

	prevPoint, err := kernel.NewGeoPoint(5.3411, -4.0267)
	require.NoError(t, err)
	prev, err := courier.RestorePosition(courierID, prevPoint, 3, 90, 10, now, true)
	require.NoError(t, err)

	cmd, err := commands.NewReportPositionCommand(
		courierID, courierID, 5.3412, -4.0268, nil, nil, 10, now.Add(-time.Minute))
	require.NoError(t, err)

	positionRepo := new(MockPositionRepository)
	uow := new(MockUoW)
	bus := new(MockEventBus)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("PositionRepository").Return(positionRepo).Once(),
		positionRepo.On("Get", ctx, courierID).Return(prev, nil).Once(),
		positionRepo.On("Upsert", ctx, mock.AnythingOfType("*courier.Position")).Return(false, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReportPositionCommandHandler(factory, bus, discardLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	bus.AssertNotCalled(t, "Publish")
}

func TestReportPositionCommandHandler_Handle_BroadcastFailureIsNotFatal(t *testing.T) {
	ctx := t.Context()

	courierID := kernel.NewUUID()

	inTransit := restoreOrder(t, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), &courierID,
		order.InTransit, nil)

	cmd, err := commands.NewReportPositionCommand(
		courierID, courierID, 5.3411, -4.0267, nil, nil, 10, time.Time{})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	positionRepo := new(MockPositionRepository)
	uow := new(MockUoW)
	bus := new(MockEventBus)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("PositionRepository").Return(positionRepo).Once(),
		positionRepo.On("Get", ctx, courierID).Return(nil, errs.ErrObjectNotFound).Once(),
		positionRepo.On("Upsert", ctx, mock.AnythingOfType("*courier.Position")).Return(true, nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAssignmentsForCourier", ctx, courierID).
			Return([]*order.Order{inTransit}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		bus.On("Publish", ctx, mock.AnythingOfType("ports.PositionUpdate")).
			Return(assert.AnError).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewReportPositionCommandHandler(factory, bus, discardLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	bus.AssertExpectations(t)
}
