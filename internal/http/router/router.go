package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/config"
	"github.com/wanderly/agency-api/internal/database"
	"github.com/wanderly/agency-api/internal/http/handler"
	"github.com/wanderly/agency-api/internal/http/middleware"
	"github.com/wanderly/agency-api/internal/reporting"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/wanderly/agency-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	reporting         *reporting.Client
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	quoteHandler      *handler.QuoteHandler
	refundHandler     *handler.RefundHandler
	taskHandler       *handler.TaskHandler
	commissionHandler *handler.CommissionHandler
	invoiceHandler    *handler.InvoiceHandler
	expenseHandler    *handler.ExpenseHandler
	paymentHandler    *handler.PaymentHandler
	contactHandler    *handler.ContactHandler
	bookingHandler    *handler.BookingHandler
	documentHandler   *handler.DocumentHandler
	dashboardHandler  *handler.DashboardHandler
	activityHandler   *handler.ActivityHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	reportingClient *reporting.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	quoteHandler *handler.QuoteHandler,
	refundHandler *handler.RefundHandler,
	taskHandler *handler.TaskHandler,
	commissionHandler *handler.CommissionHandler,
	invoiceHandler *handler.InvoiceHandler,
	expenseHandler *handler.ExpenseHandler,
	paymentHandler *handler.PaymentHandler,
	contactHandler *handler.ContactHandler,
	bookingHandler *handler.BookingHandler,
	documentHandler *handler.DocumentHandler,
	dashboardHandler *handler.DashboardHandler,
	activityHandler *handler.ActivityHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		reporting:         reportingClient,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		quoteHandler:      quoteHandler,
		refundHandler:     refundHandler,
		taskHandler:       taskHandler,
		commissionHandler: commissionHandler,
		invoiceHandler:    invoiceHandler,
		expenseHandler:    expenseHandler,
		paymentHandler:    paymentHandler,
		contactHandler:    contactHandler,
		bookingHandler:    bookingHandler,
		documentHandler:   documentHandler,
		dashboardHandler:  dashboardHandler,
		activityHandler:   activityHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check. The reporting warehouse is optional and
	// reported but never fails readiness.
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		if rt.reporting != nil {
			if status, err := rt.reporting.HealthCheck(r.Context()); err != nil {
				checks["reporting"] = map[string]interface{}{
					"status": "unhealthy",
					"error":  err.Error(),
				}
			} else {
				checks["reporting"] = status
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": map[bool]string{true: "healthy", false: "unhealthy"}[allHealthy],
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.ListQuotes)
				r.Post("/", rt.quoteHandler.CreateQuote)
				r.Get("/search", rt.quoteHandler.SearchQuotes)
				r.Get("/{id}", rt.quoteHandler.GetQuote)
				r.Put("/{id}", rt.quoteHandler.UpdateQuote)
				r.Delete("/{id}", rt.quoteHandler.DeleteQuote)

				// Lifecycle endpoints
				r.Post("/{id}/send", rt.quoteHandler.SendQuote)
				r.Post("/{id}/accept", rt.quoteHandler.AcceptQuote)
				r.Post("/{id}/reject", rt.quoteHandler.RejectQuote)
				r.Post("/{id}/cancel", rt.quoteHandler.CancelQuote)

				// Sub-resources
				r.Get("/{id}/payments", rt.paymentHandler.ListQuotePayments)
				r.Get("/{id}/booking", rt.bookingHandler.GetQuoteBooking)
			})

			// Payments and refunds
			r.Route("/payments", func(r chi.Router) {
				r.Post("/", rt.paymentHandler.RecordPayment)
				r.Post("/refund", rt.refundHandler.ProcessRefund)
				r.Post("/refund/preview", rt.refundHandler.PreviewRefund)
				r.Get("/{id}", rt.paymentHandler.GetPayment)
			})

			// Booking tasks
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", rt.taskHandler.ListTasks)
				r.Post("/execute", rt.taskHandler.ExecuteTask)
				r.Get("/{id}", rt.taskHandler.GetTask)
				r.Post("/{id}/complete", rt.taskHandler.CompleteTask)
			})

			// Bookings
			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", rt.bookingHandler.ListBookings)
				r.Get("/{id}", rt.bookingHandler.GetBooking)
				r.Get("/{id}/documents", rt.documentHandler.ListBookingDocuments)
				r.Post("/{id}/documents", rt.documentHandler.UploadDocument)
			})

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/{id}", rt.documentHandler.DownloadDocument)
				r.Delete("/{id}", rt.documentHandler.DeleteDocument)
			})

			// Commissions
			r.Route("/commissions", func(r chi.Router) {
				r.Get("/", rt.commissionHandler.ListCommissions)
				r.Get("/{id}", rt.commissionHandler.GetCommission)
				r.Post("/{id}/approve", rt.commissionHandler.ApproveCommission)
				r.Post("/{id}/pay", rt.commissionHandler.PayCommission)
				r.Post("/{id}/dispute", rt.commissionHandler.DisputeCommission)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.ListInvoices)
				r.Post("/", rt.invoiceHandler.GenerateInvoice)
				r.Get("/{id}", rt.invoiceHandler.GetInvoice)
				r.Post("/{id}/pay", rt.invoiceHandler.MarkInvoicePaid)
				r.Post("/{id}/void", rt.invoiceHandler.VoidInvoice)
			})

			// Expenses
			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", rt.expenseHandler.ListExpenses)
				r.Get("/{id}", rt.expenseHandler.GetExpense)
				r.Put("/{id}/status", rt.expenseHandler.UpdateExpenseStatus)
			})

			// Contacts
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", rt.contactHandler.ListContacts)
				r.Post("/", rt.contactHandler.CreateContact)
				r.Get("/{id}", rt.contactHandler.GetContact)
				r.Put("/{id}", rt.contactHandler.UpdateContact)
				r.Delete("/{id}", rt.contactHandler.DeleteContact)
			})

			// Dashboard
			r.Get("/dashboard/metrics", rt.dashboardHandler.GetMetrics)

			// Activities
			r.Route("/activities", func(r chi.Router) {
				r.Get("/", rt.activityHandler.ListRecentActivities)
				r.Get("/{targetType}/{targetId}", rt.activityHandler.ListTargetActivities)
			})
		})
	})

	return r
}
