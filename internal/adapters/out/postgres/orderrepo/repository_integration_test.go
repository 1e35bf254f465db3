package orderrepo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()

	testOrder := suite.createPendingOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	suite.assertOrderCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_ExistingOrder_RoundTrips() {
	ctx := context.Background()

	testOrder := suite.createPendingOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Equal(testOrder.ID(), retrieved.ID())
	suite.Equal(testOrder.RequesterID(), retrieved.RequesterID())
	suite.Equal(testOrder.FacilityID(), retrieved.FacilityID())
	suite.Nil(retrieved.CourierID())
	suite.Equal(order.Pending, retrieved.Status())
	suite.Equal(testOrder.Address(), retrieved.Address())
	suite.Require().NotNil(retrieved.Destination())
	suite.InDelta(testOrder.Destination().Lat(), retrieved.Destination().Lat(), 1e-9)
	suite.InDelta(testOrder.Destination().Lng(), retrieved.Destination().Lng(), 1e-9)
	suite.InDelta(testOrder.Amount(), retrieved.Amount(), 1e-9)
	suite.JSONEq(string(testOrder.Items()), string(retrieved.Items()))
	suite.WithinDuration(testOrder.CreatedAt(), retrieved.CreatedAt(), time.Millisecond)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestApplyTransition_MatchingStatus_Applies() {
	ctx := context.Background()

	testOrder := suite.createPendingOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	suite.Require().NoError(testOrder.Confirm(time.Now().UTC()))

	applied, err := suite.repository.ApplyTransition(ctx, testOrder, order.Pending)
	suite.Require().NoError(err)
	suite.True(applied)

	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, retrieved.Status())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestApplyTransition_StaleStatus_NotApplied() {
	ctx := context.Background()

	now := time.Now().UTC()
	testOrder := suite.restoreOrder(order.Confirmed, nil, nil, now)
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	// A racer that still believes the order is pending matches zero rows.
	applied, err := suite.repository.ApplyTransition(ctx, testOrder, order.Pending)
	suite.Require().NoError(err)
	suite.False(applied)

	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, retrieved.Status())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestApplyTransition_SecondRacerLoses() {
	ctx := context.Background()

	testOrder := suite.createPendingOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), mock.Anything).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	suite.Require().NoError(testOrder.Confirm(time.Now().UTC()))

	applied, err := suite.repository.ApplyTransition(ctx, testOrder, order.Pending)
	suite.Require().NoError(err)
	suite.True(applied)

	// Replaying the same guarded update matches zero rows.
	applied, err = suite.repository.ApplyTransition(ctx, testOrder, order.Pending)
	suite.Require().NoError(err)
	suite.False(applied)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestApplyTransition_ReleaseClearsCourierColumns() {
	ctx := context.Background()

	now := time.Now().UTC()
	courierID := kernel.NewUUID()
	assignedAt := now.Add(-time.Minute)

	testOrder := suite.restoreOrder(order.AssignedPendingAcceptance, &courierID, &assignedAt, now)
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	suite.Require().NoError(testOrder.Reject(courierID, now))

	applied, err := suite.repository.ApplyTransition(ctx, testOrder, order.AssignedPendingAcceptance)
	suite.Require().NoError(err)
	suite.True(applied)

	retrieved, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.ReadyForDelivery, retrieved.Status())
	suite.Nil(retrieved.CourierID())
	suite.Nil(retrieved.AssignedAt())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetExpiredAssignments_ReturnsOnlyElapsedProposals() {
	ctx := context.Background()

	now := time.Now().UTC()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(3)

	expiredCourier := kernel.NewUUID()
	expiredAt := now.Add(-order.AcceptanceWindow - time.Minute)
	expired := suite.restoreOrder(order.AssignedPendingAcceptance, &expiredCourier, &expiredAt, now)
	suite.Require().NoError(suite.repository.Add(ctx, expired))

	freshCourier := kernel.NewUUID()
	freshAt := now.Add(-time.Minute)
	fresh := suite.restoreOrder(order.AssignedPendingAcceptance, &freshCourier, &freshAt, now)
	suite.Require().NoError(suite.repository.Add(ctx, fresh))

	transitCourier := kernel.NewUUID()
	inTransit := suite.restoreOrder(order.InTransit, &transitCourier, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, inTransit))

	expiredOrders, err := suite.repository.GetExpiredAssignments(ctx, now)
	suite.Require().NoError(err)

	suite.Require().Len(expiredOrders, 1)
	suite.Equal(expired.ID(), expiredOrders[0].ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAssignmentsForCourier_ExcludesArrivedAndOthers() {
	ctx := context.Background()

	now := time.Now().UTC()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(4)

	courierID := kernel.NewUUID()
	assignedAt := now.Add(-time.Minute)

	proposed := suite.restoreOrder(order.AssignedPendingAcceptance, &courierID, &assignedAt, now)
	suite.Require().NoError(suite.repository.Add(ctx, proposed))

	carried := suite.restoreOrder(order.InTransit, &courierID, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, carried))

	arrived := suite.restoreOrder(order.ArrivedPendingConfirmation, &courierID, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, arrived))

	otherCourier := kernel.NewUUID()
	foreign := suite.restoreOrder(order.InTransit, &otherCourier, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, foreign))

	assignments, err := suite.repository.GetAssignmentsForCourier(ctx, courierID)
	suite.Require().NoError(err)

	suite.Require().Len(assignments, 2)
	ids := []kernel.UUID{assignments[0].ID(), assignments[1].ID()}
	suite.Contains(ids, proposed.ID())
	suite.Contains(ids, carried.ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetActiveByCourier_IncludesArrived() {
	ctx := context.Background()

	now := time.Now().UTC()
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(3)

	courierID := kernel.NewUUID()

	carried := suite.restoreOrder(order.InTransit, &courierID, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, carried))

	arrived := suite.restoreOrder(order.ArrivedPendingConfirmation, &courierID, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, arrived))

	delivered := suite.restoreOrder(order.Delivered, &courierID, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, delivered))

	active, err := suite.repository.GetActiveByCourier(ctx, courierID)
	suite.Require().NoError(err)

	suite.Require().Len(active, 2)
	ids := []kernel.UUID{active[0].ID(), active[1].ID()}
	suite.Contains(ids, carried.ID())
	suite.Contains(ids, arrived.ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestDeleteTerminatedBefore_RemovesOnlyOldTerminals() {
	ctx := context.Background()

	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour)
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(4)

	deliveredCourier := kernel.NewUUID()
	oldDelivered := suite.restoreOrderAt(order.Delivered, &deliveredCourier, nil, old)
	suite.Require().NoError(suite.repository.Add(ctx, oldDelivered))

	oldCancelled := suite.restoreOrderAt(order.Cancelled, nil, nil, old)
	suite.Require().NoError(suite.repository.Add(ctx, oldCancelled))

	recentCourier := kernel.NewUUID()
	recentDelivered := suite.restoreOrderAt(order.Delivered, &recentCourier, nil, now)
	suite.Require().NoError(suite.repository.Add(ctx, recentDelivered))

	oldPending := suite.restoreOrderAt(order.Pending, nil, nil, old)
	suite.Require().NoError(suite.repository.Add(ctx, oldPending))

	removed, err := suite.repository.DeleteTerminatedBefore(ctx, now.Add(-24*time.Hour))
	suite.Require().NoError(err)
	suite.Equal(int64(2), removed)

	suite.assertOrderCount(2)
	suite.tracker.AssertExpectations(suite.T())
}

// createPendingOrder creates a fresh order through the aggregate constructor.
func (suite *OrderRepositoryIntegrationTestSuite) createPendingOrder() *order.Order {
	destination, err := kernel.NewGeoPoint(5.3411, -4.0267)
	suite.Require().NoError(err)

	testOrder, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"12 Rue des Jardins, Cocody",
		&destination,
		8600,
		json.RawMessage(`[{"name":"attieke poisson","quantity":2}]`),
		time.Now().UTC(),
	)
	suite.Require().NoError(err)
	return testOrder
}

// restoreOrder reconstructs an order at the given status with updatedAt now.
func (suite *OrderRepositoryIntegrationTestSuite) restoreOrder(
	status order.Status, courierID *kernel.UUID, assignedAt *time.Time, now time.Time,
) *order.Order {
	return suite.restoreOrderAt(status, courierID, assignedAt, now)
}

// restoreOrderAt reconstructs an order at the given status with createdAt and
// updatedAt pinned to the given instant.
func (suite *OrderRepositoryIntegrationTestSuite) restoreOrderAt(
	status order.Status, courierID *kernel.UUID, assignedAt *time.Time, at time.Time,
) *order.Order {
	destination, err := kernel.NewGeoPoint(5.3411, -4.0267)
	suite.Require().NoError(err)

	var deliveredAt *time.Time
	if status == order.Delivered {
		deliveredAt = &at
	}

	testOrder, err := order.RestoreOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), courierID,
		status,
		"12 Rue des Jardins, Cocody",
		&destination,
		8600,
		json.RawMessage(`[{"name":"attieke poisson","quantity":2}]`),
		at, at,
		assignedAt, deliveredAt, deliveredAt, nil,
	)
	suite.Require().NoError(err)
	return testOrder
}

// assertOrderCount verifies the number of orders in the database.
func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
