package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/solterra/ventas-api/docs" // Swagger docs
	"github.com/solterra/ventas-api/internal/clock"
	"github.com/solterra/ventas-api/internal/config"
	"github.com/solterra/ventas-api/internal/database"
	"github.com/solterra/ventas-api/internal/handlers"
	"github.com/solterra/ventas-api/internal/jobs"
	"github.com/solterra/ventas-api/internal/middleware"
	"github.com/solterra/ventas-api/internal/repository"
	"github.com/solterra/ventas-api/internal/services"
	"github.com/solterra/ventas-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Ventas API
// @version 1.0
// @description REST API for Solterra Real Estate Sales Management

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.EnableEmailNotifications && cfg.ResendAPIKey == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY not set. Set it in .env and ensure the From domain is verified in Resend dashboard.")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, cfg, clock.System{})

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, worker)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", h.Health.Index)

		// Unit inventory
		units := v1.Group("/units")
		{
			units.GET("", h.Unit.Index)
			units.POST("", h.Unit.Create)
			units.GET("/:unit_id", h.Unit.Show)
			units.PUT("/:unit_id", h.Unit.Update)
		}

		// Clients
		clients := v1.Group("/clients")
		{
			clients.GET("", h.Client.Index)
			clients.POST("", h.Client.Create)
			clients.GET("/:client_id", h.Client.Show)
			clients.PUT("/:client_id", h.Client.Update)
			clients.DELETE("/:client_id", h.Client.Delete)
		}

		// Sale cases and their lifecycle transitions
		cases := v1.Group("/cases")
		{
			cases.GET("", h.Case.Index)
			cases.POST("", h.Case.Create)
			cases.GET("/:case_id", h.Case.Show)
			cases.PUT("/:case_id", h.Case.Update)
			cases.POST("/:case_id/activate", h.Case.Activate)
			// Resuming an on-hold case is the same transition; the
			// existing schedule is kept
			cases.POST("/:case_id/resume", h.Case.Activate)
			cases.POST("/:case_id/generate-contract", h.Case.GenerateContract)
			cases.POST("/:case_id/execute", h.Case.Execute)
			cases.POST("/:case_id/cancel", h.Case.Cancel)
			cases.POST("/:case_id/hold", h.Case.Hold)
			cases.GET("/:case_id/summary", h.Case.Summary)

			// Payment schedule
			// Static route first so "next-unpaid" is not matched as :installment_id
			cases.GET("/:case_id/installments", h.Case.Installments)
			cases.GET("/:case_id/installments/next-unpaid", h.Payment.NextUnpaid)
			cases.POST("/:case_id/installments/:installment_id/waive", h.Case.WaiveInstallment)

			// Payments of a case
			cases.GET("/:case_id/payments", h.Payment.ByCase)
			cases.POST("/:case_id/payments", h.Payment.Create)
		}

		// Payments across cases
		payments := v1.Group("/payments")
		{
			payments.GET("", h.Payment.Index)
			payments.GET("/:payment_id", h.Payment.Show)
			payments.POST("/:payment_id/verify", h.Payment.Verify)
		}

		// Reports
		reports := v1.Group("/reports")
		{
			reports.GET("/overdue", h.Report.OverdueCSV)
			reports.GET("/collection", h.Report.CollectionXLSX)
			reports.GET("/cases/:case_id/statement", h.Report.CaseStatementPDF)
		}

		// Notifications
		// Static route first so "read-all" is not matched as :notification_id
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", h.Notification.Index)
			notifications.POST("/read-all", h.Notification.MarkAllRead)
			notifications.POST("/:notification_id/read", h.Notification.MarkRead)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Mark overdue installments every hour, running once at startup
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Refreshing overdue installment statuses...")
		return svcs.Payment.RefreshOverdueStatuses(ctx)
	})

	// Daily overdue digest emails for clients with unpaid installments,
	// plus in-app reminders for installments due within a week
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sending daily payment reminder emails...")
		if err := svcs.Payment.SendDailyPaymentReminderEmails(ctx); err != nil {
			return err
		}
		return svcs.Payment.NotifyUpcomingInstallments(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
