package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAcceptAssignmentCommandHandler_Handle_SuccessWithinWindow(t *testing.T) {
	ctx := t.Context()

	orderID := kernel.NewUUID()
	requesterID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	assignedAt := time.Now().UTC().Add(-time.Minute)
	testOrder := restoreOrder(t, orderID, requesterID, kernel.NewUUID(), &courierID,
		order.AssignedPendingAcceptance, &assignedAt)

	cmd, err := commands.NewAcceptAssignmentCommand(orderID, courierID)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	notifier := new(MockNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		orderRepo.On("ApplyTransition", ctx, testOrder, order.AssignedPendingAcceptance).Return(true, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Kind == ports.NotificationOrderAccepted &&
				n.RecipientID == requesterID.String()
		})).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptAssignmentCommandHandler(factory, notifier, discardLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.InTransit, testOrder.Status())
	assert.Nil(t, testOrder.AssignedAt())

	orderRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAcceptAssignmentCommandHandler_Handle_ExpiredWindowReleasesOrder(t *testing.T) {
	ctx := t.Context()

	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	assignedAt := time.Now().UTC().Add(-5 * time.Minute)
	testOrder := restoreOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), &courierID,
		order.AssignedPendingAcceptance, &assignedAt)

	cmd, err := commands.NewAcceptAssignmentCommand(orderID, courierID)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	notifier := new(MockNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Twice(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		orderRepo.On("ApplyTransition", ctx, testOrder, order.AssignedPendingAcceptance).Return(true, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("Notify", ctx, mock.MatchedBy(func(n ports.Notification) bool {
			return n.Kind == ports.NotificationAssignmentExpired &&
				n.RecipientID == courierID.String()
		})).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptAssignmentCommandHandler(factory, notifier, discardLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrAssignmentExpired)
	assert.Equal(t, order.ReadyForDelivery, testOrder.Status())
	assert.Nil(t, testOrder.CourierID())
	assert.Nil(t, testOrder.AssignedAt())

	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestAcceptAssignmentCommandHandler_Handle_ExpiredResolutionLostRace(t *testing.T) {
	ctx := t.Context()

	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	assignedAt := time.Now().UTC().Add(-5 * time.Minute)
	testOrder := restoreOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), &courierID,
		order.AssignedPendingAcceptance, &assignedAt)

	cmd, err := commands.NewAcceptAssignmentCommand(orderID, courierID)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	notifier := new(MockNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Twice(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		orderRepo.On("ApplyTransition", ctx, testOrder, order.AssignedPendingAcceptance).Return(false, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptAssignmentCommandHandler(factory, notifier, discardLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrOrderNoLongerAvailable)
	notifier.AssertNotCalled(t, "Notify")
}

func TestAcceptAssignmentCommandHandler_Handle_WrongCourier(t *testing.T) {
	ctx := t.Context()

	orderID := kernel.NewUUID()
	assignedCourier := kernel.NewUUID()
	otherCourier := kernel.NewUUID()

	assignedAt := time.Now().UTC().Add(-time.Minute)
	testOrder := restoreOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), &assignedCourier,
		order.AssignedPendingAcceptance, &assignedAt)

	cmd, err := commands.NewAcceptAssignmentCommand(orderID, otherCourier)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockOrderUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptAssignmentCommandHandler(factory, new(MockNotifier), discardLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrNotAssignedCourier)
	assert.Equal(t, order.AssignedPendingAcceptance, testOrder.Status())
}

func TestAcceptAssignmentCommandHandler_Handle_OrderAlreadyReleased(t *testing.T) {
	ctx := t.Context()

	orderID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	// Sweep already released the order back to ready_for_delivery.
	testOrder := restoreOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), nil,
		order.ReadyForDelivery, nil)

	cmd, err := commands.NewAcceptAssignmentCommand(orderID, courierID)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockOrderUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, orderID).Return(testOrder, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewAcceptAssignmentCommandHandler(factory, new(MockNotifier), discardLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrInvalidStateTransition)
}
