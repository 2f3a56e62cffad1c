package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/southcentralhub/supportdesk/internal/api/http"
	"github.com/southcentralhub/supportdesk/internal/api/http/handlers"
	"github.com/southcentralhub/supportdesk/internal/auth"
	"github.com/southcentralhub/supportdesk/internal/config"
	"github.com/southcentralhub/supportdesk/internal/events"
	"github.com/southcentralhub/supportdesk/internal/observability"
	"github.com/southcentralhub/supportdesk/internal/service"
	"github.com/southcentralhub/supportdesk/internal/store"
	"github.com/southcentralhub/supportdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.StaffPassword == "" && cfg.Auth.StaffPasswordHash == "" {
		logger.Warn("no staff password configured; admin login will always fail")
	}

	memStore := store.NewMemStore()
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketStore:  memStore,
		MessageStore: memStore,
		Dispatcher:   dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	verifier := auth.NewPasswordVerifier(cfg.Auth)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTLMinutes)
	staffAuth := auth.NewStaffMiddleware(tokens, cfg.Auth.RequireStaffToken)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, memStore),
		Tickets:   handlers.NewTicketsHandler(ticketService),
		Auth:      handlers.NewAuthHandler(verifier, tokens, logger),
		StaffAuth: staffAuth,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
