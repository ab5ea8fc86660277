package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rescuelink/dispatch/internal/jobs"
	"github.com/rescuelink/dispatch/internal/pkg/config"
	"github.com/rescuelink/dispatch/internal/pkg/database"
	"github.com/rescuelink/dispatch/internal/pkg/health"
	"github.com/rescuelink/dispatch/internal/pkg/logger"
	"github.com/rescuelink/dispatch/internal/pkg/middleware"
	natspkg "github.com/rescuelink/dispatch/internal/pkg/nats"
	nrpkg "github.com/rescuelink/dispatch/internal/pkg/newrelic"
	"github.com/rescuelink/dispatch/internal/pkg/server"
	wspkg "github.com/rescuelink/dispatch/internal/pkg/websocket"
	dispatchsvc "github.com/rescuelink/dispatch/services/dispatch"
	"github.com/rescuelink/dispatch/services/dispatch/gateway"
	"github.com/rescuelink/dispatch/services/dispatch/handler"
	wsHandler "github.com/rescuelink/dispatch/services/dispatch/handler/websocket"
	"github.com/rescuelink/dispatch/services/dispatch/repository"
	"github.com/rescuelink/dispatch/services/dispatch/usecase"
	"go.uber.org/zap"
)

func main() {
	appName := "dispatch-service"
	configPath := "config/dispatch.env"
	configs := config.InitConfig(configPath)

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)
	if nrApp != nil {
		if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		}
	}

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()

	zapLogger.Info("Starting application",
		zap.String("app", appName),
		zap.String("version", configs.App.Version),
		zap.String("environment", configs.App.Environment),
	)

	// Initialize PostgreSQL database connection
	db, err := database.NewPostgresDB(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis client
	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize NATS
	natsClient, err := natspkg.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsClient.Close()

	// Initialize repositories
	responderRepo := repository.NewResponderRepository(configs, db, redisClient)
	requestRepo := repository.NewRequestRepository(configs, db)

	var notifyQueue dispatchsvc.NotificationQueue
	if configs.Notify.Backend == "redis" {
		notifyQueue = repository.NewRedisNotificationQueue(redisClient)
	} else {
		notifyQueue = repository.NewMemoryNotificationQueue()
	}

	// Initialize gateway
	dispatchGW := gateway.NewDispatchGW(natspkg.NewProducerFromClient(natsClient))

	// Push transport is optional; poll-only deployments skip the manager
	var wsManager *wspkg.Manager
	var transport dispatchsvc.OfferTransport
	if configs.Notify.Transport == "push" {
		wsManager = wspkg.NewManager(configs.JWT)
		transport = wsHandler.NewWebSocketHandler(wsManager)
	}

	// Initialize usecase
	dispatchUC := usecase.NewDispatchUC(configs, responderRepo, requestRepo, notifyQueue, dispatchGW, transport)

	// Initialize handlers
	h := handler.NewHandler(configs, dispatchUC, natsClient, wsManager)

	// Initialize NATS consumers
	if err := h.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", zap.Error(err))
	}

	// Start the pending-request retry job
	retryJob := jobs.NewRetryJob(configs, requestRepo, dispatchUC)
	retryJob.Start()

	// Register shutdown hooks
	shutdownManager := server.NewShutdownManager(zapLogger)
	shutdownManager.Register(func(ctx context.Context) error {
		retryJob.Stop()
		return nil
	})
	shutdownManager.Register(func(ctx context.Context) error {
		h.StopNATSConsumers()
		return nil
	})

	// Initialize Echo router
	e := echo.New()

	// Add middlewares
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.NewRelicMiddleware(nrApp))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	// Register health endpoints
	health.RegisterHealthEndpoints(e, appName)

	// Register service routes
	h.RegisterRoutes(e)

	// Start server with graceful shutdown
	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Error("Server exited with error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	shutdownManager.Shutdown(ctx)
}
