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

	_ "github.com/sjperalta/arrendamientos-api/docs" // Swagger docs
	"github.com/sjperalta/arrendamientos-api/internal/config"
	"github.com/sjperalta/arrendamientos-api/internal/database"
	"github.com/sjperalta/arrendamientos-api/internal/handlers"
	"github.com/sjperalta/arrendamientos-api/internal/jobs"
	"github.com/sjperalta/arrendamientos-api/internal/metrics"
	"github.com/sjperalta/arrendamientos-api/internal/middleware"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/internal/services"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Arrendamientos API
// @version 1.0
// @description Installment scheduling, pricing and invoicing for rural land leases

// @host localhost:8081
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

	// Initialize Sentry (GlitchTip) when DSN is configured
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

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		logger.Info("Database migrated")
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	m := metrics.New()

	// Initialize services
	clock := services.SystemClock{Location: cfg.Location()}
	svcs := services.NewServices(repos, worker, cfg, clock, m)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, m, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "timezone", cfg.Timezone)
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

func setupRouter(h *handlers.Handlers, m *metrics.Metrics, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(m.Middleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus scrape endpoint
	router.GET("/metrics", m.Handler())

	// API v1 routes
	h.RegisterRoutes(router.Group("/api/v1"))

	return router
}

// scheduleJobs registers the calendar sweeps. Each runs in the configured
// timezone; the overdue sweep goes first so the lease expiry sweep sees
// up to date payment statuses.
func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	loc := cfg.Location()

	sweep := func(job string) jobs.Job {
		return func(ctx context.Context) error {
			_, err := svcs.Sweep.Run(ctx, job)
			return err
		}
	}

	worker.ScheduleCalendar(services.JobOverdueSweep, jobs.DailyAt(cfg.OverdueSweepHour, 0, loc), func(ctx context.Context) error {
		if err := sweep(services.JobOverdueSweep)(ctx); err != nil {
			return err
		}
		return sweep(services.JobLeaseExpiry)(ctx)
	})

	worker.ScheduleCalendar(services.JobMonthlyPricing, jobs.MonthlyAt(1, cfg.PricingSweepHour, 0, loc), sweep(services.JobMonthlyPricing))

	worker.ScheduleCalendar(services.JobMidMonthPricing, jobs.MonthlyAt(cfg.MidMonthSweepDay, cfg.PricingSweepHour, 0, loc), sweep(services.JobMidMonthPricing))

	logger.Info("Scheduled recurring jobs",
		"overdue_hour", cfg.OverdueSweepHour,
		"pricing_hour", cfg.PricingSweepHour,
		"mid_month_day", cfg.MidMonthSweepDay,
	)
}
