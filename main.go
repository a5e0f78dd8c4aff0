package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/di"
	"github.com/DesarrolloRWD/adp-rh-console/internal/domain"
	"github.com/DesarrolloRWD/adp-rh-console/internal/middleware"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/config"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/database"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/kafka"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/logger"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/redis"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: "rh-console",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting RH Console...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    "rh-console",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Redis holds the session mirror and the permission override table
	redisClient, err := redis.NewClient(ctx, &redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		MaxRetries:   3,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// PostgreSQL backs the authorization audit log
	var db *database.PostgresDB
	if cfg.Audit.Enabled {
		db, err = database.NewPostgres(ctx, &database.PostgresConfig{
			Host:            cfg.Audit.Database.Host,
			Port:            cfg.Audit.Database.Port,
			User:            cfg.Audit.Database.User,
			Password:        cfg.Audit.Database.Password,
			Database:        cfg.Audit.Database.DBName,
			SSLMode:         cfg.Audit.Database.SSLMode,
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
			MaxRetries:      3,
			RetryInterval:   time.Second,
			EnableTracing:   cfg.OTel.Enabled,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Audit database connection failed: %v", err))
		}
		defer db.Close()
		appLog.Info("Audit database connected")
	}

	// Kafka carries session lifecycle events
	var producer *kafka.Producer
	if cfg.Events.Enabled {
		producer, err = kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:  cfg.Events.Brokers,
			ClientID: cfg.Events.ClientID,
		})
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Kafka connection failed: %v", err))
		}
		appLog.Info("Kafka producer connected")
	}

	// Build dependency injection container
	container, err := di.NewContainer(&di.ContainerConfig{
		Config:   cfg,
		Redis:    redisClient,
		DB:       db,
		Producer: producer,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}
	defer container.Publisher.Close()

	// Apply the persisted permission override, if any
	if err := container.PermissionService.LoadOverride(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to load permission override, using defaults: %v", err))
	}

	// One sweep of stale session mirrors at startup; the cleanup worker
	// repeats it on schedule.
	if purged, err := container.SessionRepo.PurgeExpired(ctx, time.Now()); err != nil {
		appLog.Warn(fmt.Sprintf("Startup session sweep failed: %v", err))
	} else if purged > 0 {
		appLog.Info(fmt.Sprintf("Startup session sweep purged %d stale records", purged))
	}

	// Start background workers
	if container.AuditWorker != nil {
		if err := container.AuditWorker.Start(ctx); err != nil {
			appLog.Fatal(fmt.Sprintf("Failed to start audit worker: %v", err))
		}
		defer container.AuditWorker.Stop()
	}
	if err := container.CleanupWorker.Start(); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start cleanup worker: %v", err))
	}
	defer container.CleanupWorker.Stop()

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware("rh-console"))
	}

	registerRoutes(router, container)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("RH Console listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func registerRoutes(router *gin.Engine, c *di.Container) {
	// Health check endpoints
	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)

	// Static assets bypass the gatekeeper
	router.Static("/static", "./web/static")

	// Server-rendered pages, all behind the gatekeeper
	pages := router.Group("")
	pages.Use(c.Gatekeeper.Handle())
	{
		pages.GET("/", func(ctx *gin.Context) {}) // gatekeeper always redirects the root
		pages.GET("/login", c.PagesHandler.Login)
		pages.GET("/dashboard", c.PagesHandler.Dashboard)
		pages.GET("/user", c.PagesHandler.Users)
		pages.GET("/reports", c.PagesHandler.Reports)
		pages.GET("/admin", c.PagesHandler.Admin)
		pages.GET("/admin/roles", c.PagesHandler.AdminRoles)
		pages.GET("/access-denied", c.PagesHandler.AccessDenied)
		pages.GET("/blocked", c.PagesHandler.Blocked)
	}

	// JSON API
	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORS())
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", c.AuthHandler.Login)
			auth.POST("/logout", c.AuthHandler.Logout)
			auth.GET("/me", c.Guard.RequireAuth(), c.AuthHandler.Me)
		}

		// Session re-evaluation for the hydrated client; anonymous callers get
		// an unauthenticated verdict, not an error.
		v1.GET("/session", c.SessionHandler.Get)

		users := v1.Group("/users")
		users.Use(c.Guard.RequirePermissions(authz.PermUsersView))
		{
			users.GET("", c.UserHandler.List)
			users.GET("/:id", c.UserHandler.Get)
			users.POST("", c.Guard.RequirePermissions(authz.PermUsersCreate), c.UserHandler.Create)
			users.PUT("/:id", c.Guard.RequirePermissions(authz.PermUsersEdit), c.UserHandler.Update)
			users.PUT("/:id/status", c.Guard.RequirePermissions(authz.PermUsersManageStatus), c.UserHandler.UpdateStatus)
		}

		attendance := v1.Group("/attendance")
		attendance.Use(c.Guard.RequirePermissions(authz.PermAttendanceView))
		{
			attendance.GET("", c.AttendanceHandler.List)
			attendance.GET("/export", c.Guard.RequirePermissions(authz.PermAttendanceExport), c.AttendanceHandler.Export)
			attendance.GET("/:id", c.Guard.RequirePermissions(authz.PermAttendanceViewDetails), c.AttendanceHandler.Get)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("/permissions", c.Guard.RequirePermissions(authz.PermSettingsView), c.SettingsHandler.GetPermissions)
			settings.PUT("/permissions",
				c.Guard.RequireRoles(domain.RoleAdmin),
				c.Guard.RequirePermissions(authz.PermSettingsEdit),
				c.SettingsHandler.UpdatePermissions,
			)
		}
	}
}
