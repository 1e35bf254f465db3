package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/postgres/positionrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(postgres.Open(postgresDSN(configs)), &gorm.Config{})
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := gormDB.AutoMigrate(&orderrepo.OrderDTO{}, &positionrepo.PositionDTO{}); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	root := cmd.NewCompositionRoot(configs, gormDB, logger)
	defer func() {
		if err := root.Close(); err != nil {
			logger.Error("closing outbound connections failed", "error", err)
		}
	}()

	jobManager := root.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		logger.Error("starting jobs failed", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	e := echo.New()
	root.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil {
			logger.Info("http server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:                goDotEnvVariable("HTTP_PORT"),
		DBHost:                  goDotEnvVariable("DB_HOST"),
		DBPort:                  goDotEnvVariable("DB_PORT"),
		DBUser:                  goDotEnvVariable("DB_USER"),
		DBPassword:              goDotEnvVariable("DB_PASSWORD"),
		DBName:                  goDotEnvVariable("DB_NAME"),
		DBSslMode:               goDotEnvVariable("DB_SSLMODE"),
		RedisAddr:               goDotEnvVariable("REDIS_ADDR"),
		KafkaHost:               goDotEnvVariable("KAFKA_HOST"),
		KafkaNotificationsTopic: goDotEnvVariable("KAFKA_NOTIFICATIONS_TOPIC"),
		RoutingServiceURL:       goDotEnvVariable("ROUTING_SERVICE_URL"),
		RoutingTimeout:          goDotEnvVariable("ROUTING_TIMEOUT"),
		OrderRetention:          goDotEnvVariable("ORDER_RETENTION"),
	}
}

func postgresDSN(c cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}
