package cmd

import (
	"log/slog"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/kafkanotify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/redisbus"
	"dispatch/internal/adapters/out/routing"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	defaultRoutingTimeout = 5 * time.Second
	defaultOrderRetention = 30 * 24 * time.Hour
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	notifier   *kafkanotify.KafkaNotifier
	bus        *redisbus.RedisEventBus
	planner    ports.RoutePlanner
	retention  time.Duration
	logger     *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddr})

	var planner ports.RoutePlanner
	if config.RoutingServiceURL != "" {
		planner = routing.NewClient(config.RoutingServiceURL, parseDuration(config.RoutingTimeout, defaultRoutingTimeout))
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		notifier:   kafkanotify.NewKafkaNotifier([]string{config.KafkaHost}, config.KafkaNotificationsTopic, logger),
		bus:        redisbus.NewRedisEventBus(redisClient, logger),
		planner:    planner,
		retention:  parseDuration(config.OrderRetention, defaultOrderRetention),
		logger:     logger,
	}
}

// Close releases outbound connections. Call during shutdown after the HTTP
// server and jobs stopped.
func (c *CompositionRoot) Close() error {
	return c.notifier.Close()
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateAdvanceOrderStatusCommandHandler() commands.AdvanceOrderStatusCommandHandler {
	return commands.NewAdvanceOrderStatusCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateAcceptAssignmentCommandHandler() commands.AcceptAssignmentCommandHandler {
	return commands.NewAcceptAssignmentCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateRejectAssignmentCommandHandler() commands.RejectAssignmentCommandHandler {
	return commands.NewRejectAssignmentCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateConfirmArrivalCommandHandler() commands.ConfirmArrivalCommandHandler {
	return commands.NewConfirmArrivalCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateConfirmCompletionCommandHandler() commands.ConfirmCompletionCommandHandler {
	return commands.NewConfirmCompletionCommandHandler(c.uoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateReportPositionCommandHandler() commands.ReportPositionCommandHandler {
	return commands.NewReportPositionCommandHandler(c.uoWFactory(), c.bus, c.logger)
}

func (c *CompositionRoot) CreateSweepExpiredAssignmentsCommandHandler() commands.SweepExpiredAssignmentsCommandHandler {
	return commands.NewSweepExpiredAssignmentsCommandHandler(c.orderUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreatePurgeTerminatedOrdersCommandHandler() commands.PurgeTerminatedOrdersCommandHandler {
	return commands.NewPurgeTerminatedOrdersCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateGetCourierAssignmentsQueryHandler() queries.GetCourierAssignmentsQueryHandler {
	sweeper := c.CreateSweepExpiredAssignmentsCommandHandler()
	return queries.NewGetCourierAssignmentsQueryHandler(c.gormDB, sweeper, c.logger)
}

func (c *CompositionRoot) CreateGetOrderTrackingQueryHandler() queries.GetOrderTrackingQueryHandler {
	estimator := services.NewProximityEstimator(c.planner)
	return queries.NewGetOrderTrackingQueryHandler(c.gormDB, estimator, c.planner, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateSweepExpiredAssignmentsCommandHandler(),
		c.CreatePurgeTerminatedOrdersCommandHandler(),
		c.retention,
		c.logger,
	)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateAdvanceOrderStatusCommandHandler(),
		c.CreateAssignCourierCommandHandler(),
		c.CreateAcceptAssignmentCommandHandler(),
		c.CreateRejectAssignmentCommandHandler(),
		c.CreateConfirmArrivalCommandHandler(),
		c.CreateConfirmCompletionCommandHandler(),
		c.CreateReportPositionCommandHandler(),
		c.CreateGetCourierAssignmentsQueryHandler(),
		c.CreateGetOrderTrackingQueryHandler(),
		c.bus,
	)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
