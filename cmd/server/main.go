package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yhamdan/ardsouq/internal"
	"github.com/yhamdan/ardsouq/internal/email"
	"github.com/yhamdan/ardsouq/internal/handler"
	"github.com/yhamdan/ardsouq/internal/metrics"
	"github.com/yhamdan/ardsouq/internal/middleware"
	"github.com/yhamdan/ardsouq/internal/repository"
	"github.com/yhamdan/ardsouq/internal/service"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize mail notifier
	notifier := email.NewSMTPNotifier(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, logger)

	// Initialize services
	planService := service.NewPlanService(repo.Plans, logger)
	quotaService := service.NewQuotaService(repo.Accounts, repo.Listings, planService, logger)
	expiryService := service.NewExpiryService(repo.Accounts, repo.Listings, planService, logger)
	reconcileService := service.NewReconcileService(repo.Listings, planService, logger)
	listingService := service.NewListingService(repo.Listings, repo.Accounts, quotaService, expiryService, notifier, logger)
	subscriptionService := service.NewSubscriptionService(repo.Subscriptions, repo.Accounts, planService, reconcileService, logger)
	accountService := service.NewAccountService(repo.Accounts, repo.Listings, repo.Subscriptions, logger)

	// Start the grace-period sweep
	sweep := service.NewSweep(repo.Accounts, reconcileService, service.SweepConfig{
		Interval:  cfg.SweepInterval,
		GraceDays: cfg.GraceDays,
	}, logger)
	if cfg.SweepEnabled {
		sweep.Start(ctx)
		defer sweep.Stop()
	}

	// Initialize middleware
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	identityMw := middleware.NewIdentityMiddleware(repo.Accounts, cfg.AdminEmails, logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	writeLimiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, logger)
	rateLimitMw := middleware.NewRateLimitMiddleware(writeLimiter, logger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService, logger)
	ownerHandler := handler.NewOwnerHandler(listingService, subscriptionService, logger)
	adminHandler := handler.NewAdminHandler(listingService, subscriptionService, planService, accountService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Public registration, rate limited per client IP
	accountHandler.RegisterRoutes(mux, rateLimitMw.Limit)

	// Guarded route stacks
	requireOwner := middleware.Stack(identityMw.Handler, identityMw.RequireAccount)
	requireAdmin := middleware.Stack(identityMw.Handler, identityMw.RequireAdmin)

	ownerHandler.RegisterRoutes(mux, requireOwner)
	adminHandler.RegisterRoutes(mux, requireAdmin)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: loggingMw.Handler(metrics.Middleware(mux)),
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
