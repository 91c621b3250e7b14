package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wanderly/agency-api/docs"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/config"
	"github.com/wanderly/agency-api/internal/database"
	"github.com/wanderly/agency-api/internal/http/handler"
	"github.com/wanderly/agency-api/internal/http/middleware"
	"github.com/wanderly/agency-api/internal/http/router"
	"github.com/wanderly/agency-api/internal/jobs"
	"github.com/wanderly/agency-api/internal/logger"
	"github.com/wanderly/agency-api/internal/payment"
	"github.com/wanderly/agency-api/internal/reporting"
	"github.com/wanderly/agency-api/internal/repository"
	"github.com/wanderly/agency-api/internal/service"
	"github.com/wanderly/agency-api/internal/storage"
	"github.com/wanderly/agency-api/internal/supplier"
	"go.uber.org/zap"
)

// @title Wanderly Agency API
// @version 1.0
// @description Travel agency back office API for quotes, bookings, refunds, and commissions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@wanderly.travel

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "agency-api-staging.wanderly.travel"
	case "production":
		docs.SwaggerInfo.Host = "api.wanderly.travel"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets.
	// In development: uses environment variables.
	// In staging/production: fetches from Azure Key Vault.
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Schema migrations are owned by cmd/migrate (goose); AutoMigrate only
	// keeps a local development database in step.
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Reporting warehouse connection (optional, read-only). The dashboard
	// falls back to local figures when it is absent.
	var reportingClient *reporting.Client
	if cfg.Reporting.Enabled {
		reportingClient, err = reporting.NewClient(&cfg.Reporting, log)
		if err != nil {
			log.Warn("Reporting warehouse connection failed, continuing without it",
				zap.Error(err),
			)
			reportingClient = nil
		} else {
			log.Info("Reporting warehouse connected",
				zap.Int("max_open_conns", cfg.Reporting.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.Reporting.QueryTimeout),
			)
		}
	} else {
		log.Info("Reporting warehouse not configured, skipping")
	}

	// Outbound clients
	paymentGateway := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.TimeoutDuration(), log)
	supplierClient := supplier.NewHTTPClient(cfg.Supplier.BaseURL, cfg.Supplier.APIKey, cfg.Supplier.TimeoutDuration(), log)

	// Initialize repositories
	contactRepo := repository.NewContactRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize services
	refundCalculator := service.NewRefundCalculator(cfg.Refund.ClawbackRate, cfg.Refund.ServiceFeeRate)
	commissionService := service.NewCommissionService(commissionRepo, activityRepo, log)
	refundService := service.NewRefundService(paymentRepo, quoteRepo, refundRepo, activityRepo, paymentGateway, refundCalculator, commissionService, log)
	quoteService := service.NewQuoteService(quoteRepo, contactRepo, bookingRepo, taskRepo, expenseRepo, commissionRepo, activityRepo, sequenceRepo, cfg.Commission.DefaultRate, log)
	paymentService := service.NewPaymentService(paymentRepo, quoteRepo, log)
	taskService := service.NewTaskService(taskRepo, log)
	executionService := service.NewBookingExecutionService(taskRepo, quoteRepo, bookingRepo, expenseRepo, supplierClient, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, quoteRepo, bookingRepo, sequenceRepo, log)
	expenseService := service.NewExpenseService(expenseRepo, log)
	contactService := service.NewContactService(contactRepo, log)
	bookingService := service.NewBookingService(bookingRepo, log)
	documentService := service.NewDocumentService(documentRepo, bookingRepo, fileStorage, log)
	activityService := service.NewActivityService(activityRepo, log)
	dashboardService := service.NewDashboardService(quoteRepo, bookingRepo, taskRepo, invoiceRepo, commissionRepo, paymentRepo, reportingClient, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	refundHandler := handler.NewRefundHandler(refundService, log)
	taskHandler := handler.NewTaskHandler(taskService, executionService, log)
	commissionHandler := handler.NewCommissionHandler(commissionService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	expenseHandler := handler.NewExpenseHandler(expenseService, log)
	paymentHandler := handler.NewPaymentHandler(paymentService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	bookingHandler := handler.NewBookingHandler(bookingService, log)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		reportingClient,
		authMiddleware,
		rateLimiter,
		quoteHandler,
		refundHandler,
		taskHandler,
		commissionHandler,
		invoiceHandler,
		expenseHandler,
		paymentHandler,
		contactHandler,
		bookingHandler,
		documentHandler,
		dashboardHandler,
		activityHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.QuoteExpiryEnabled {
		scheduler = jobs.NewScheduler(log)

		// runStartupSweep=true catches quotes that expired while the
		// service was down
		if err := jobs.RegisterQuoteExpiryJob(
			scheduler,
			quoteRepo,
			log,
			cfg.Jobs.QuoteExpiryCron,
			cfg.Jobs.QuoteExpiryTimeoutDuration(),
			true,
		); err != nil {
			log.Error("Failed to register quote expiry job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with quote expiry job",
				zap.String("cron_expr", cfg.Jobs.QuoteExpiryCron),
				zap.Duration("timeout", cfg.Jobs.QuoteExpiryTimeoutDuration()),
			)
		}
	} else {
		log.Info("Quote expiry job disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if reportingClient != nil {
			if err := reportingClient.Close(); err != nil {
				log.Warn("Error closing reporting warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
