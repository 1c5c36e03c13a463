package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/schedulo/practicum-api/internal/config"
	appointmentHandler "github.com/schedulo/practicum-api/internal/handler/appointment"
	availabilityHandler "github.com/schedulo/practicum-api/internal/handler/availability"
	engagementHandler "github.com/schedulo/practicum-api/internal/handler/engagement"
	healthHandler "github.com/schedulo/practicum-api/internal/handler/health"
	prometheusHandler "github.com/schedulo/practicum-api/internal/handler/prometheus"
	slotHandler "github.com/schedulo/practicum-api/internal/handler/slot"
	"github.com/schedulo/practicum-api/internal/middleware"
	"github.com/schedulo/practicum-api/internal/repository/postgres"
	"github.com/schedulo/practicum-api/internal/router"
	appointmentService "github.com/schedulo/practicum-api/internal/service/appointment"
	auditService "github.com/schedulo/practicum-api/internal/service/audit"
	availabilityService "github.com/schedulo/practicum-api/internal/service/availability"
	engagementService "github.com/schedulo/practicum-api/internal/service/engagement"
	slotService "github.com/schedulo/practicum-api/internal/service/slot"
	"github.com/schedulo/practicum-api/pkg/metrics"
	"github.com/schedulo/practicum-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	engagementRepo := postgres.NewEngagementRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	txRunner := postgres.NewTxRunner(db)

	// Services
	auditSvc := auditService.NewService(auditRepo)
	availabilitySvc := availabilityService.NewService(availabilityRepo, txRunner, outboxRepo, auditSvc, cfg.Scheduling.WindowCacheTTL)
	engagementSvc := engagementService.NewService(engagementRepo, txRunner, outboxRepo, auditSvc)
	checker := appointmentService.NewConflictChecker(engagementRepo, appointmentRepo, availabilitySvc)
	appointmentSvc := appointmentService.NewService(appointmentRepo, txRunner, checker, outboxRepo, auditSvc, appointmentService.Config{
		MinDuration: time.Duration(cfg.Scheduling.MinDurationMinutes) * time.Minute,
		MaxDuration: time.Duration(cfg.Scheduling.MaxDurationMinutes) * time.Minute,
		TxTimeout:   cfg.Server.TxTimeout,
	})
	slotSvc := slotService.NewService(engagementRepo, appointmentRepo, availabilitySvc, cfg.Scheduling.DefaultGranularityMinutes)

	m := metrics.NewMetrics("schedulo", "api")
	v := validator.New()
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	r := router.NewRouter(
		authMiddleware,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
		},
		[]router.Handler{
			healthHandler.NewHandler(db),
			prometheusHandler.NewHandler(),
		},
		[]router.Handler{
			slotHandler.NewHandler(slotSvc, m),
			appointmentHandler.NewHandler(appointmentSvc, auditSvc, v, m),
			availabilityHandler.NewHandler(availabilitySvc, v),
			engagementHandler.NewHandler(engagementSvc, v),
		},
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
