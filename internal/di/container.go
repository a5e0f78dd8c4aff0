// Package di wires the console's dependency graph.
package di

import (
	"github.com/DesarrolloRWD/adp-rh-console/internal/authz"
	"github.com/DesarrolloRWD/adp-rh-console/internal/events"
	"github.com/DesarrolloRWD/adp-rh-console/internal/handler"
	"github.com/DesarrolloRWD/adp-rh-console/internal/middleware"
	"github.com/DesarrolloRWD/adp-rh-console/internal/repository"
	"github.com/DesarrolloRWD/adp-rh-console/internal/service"
	"github.com/DesarrolloRWD/adp-rh-console/internal/session"
	"github.com/DesarrolloRWD/adp-rh-console/internal/token"
	"github.com/DesarrolloRWD/adp-rh-console/internal/upstream"
	"github.com/DesarrolloRWD/adp-rh-console/internal/worker"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/config"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/database"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/kafka"
	"github.com/DesarrolloRWD/adp-rh-console/pkg/redis"
)

// Container holds all dependencies for the console
type Container struct {
	// Infrastructure
	Redis *redis.Client
	DB    *database.PostgresDB

	// Authorization core
	Codec     *token.Codec
	Catalog   *authz.Catalog
	Routes    *authz.RouteTable
	StoreCfg  session.StoreConfig
	Evaluator *session.Evaluator

	// Repositories
	SessionRepo *repository.RedisSessionRepository
	CatalogRepo *repository.RedisCatalogRepository
	AuditRepo   *repository.PostgresAuditRepository

	// Events and workers
	Publisher     events.Publisher
	AuditWorker   *worker.AuditWorker
	CleanupWorker *worker.CleanupWorker

	// Services
	Upstream          *upstream.Client
	AuthService       service.AuthService
	DirectoryService  service.DirectoryService
	AttendanceService service.AttendanceService
	PermissionService service.PermissionService

	// Enforcement points
	Gatekeeper *middleware.Gatekeeper
	Guard      *middleware.Guard

	// Handlers
	HealthHandler     *handler.HealthHandler
	AuthHandler       *handler.AuthHandler
	SessionHandler    *handler.SessionHandler
	UserHandler       *handler.UserHandler
	AttendanceHandler *handler.AttendanceHandler
	SettingsHandler   *handler.SettingsHandler
	PagesHandler      *handler.PagesHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config   *config.Config
	Redis    *redis.Client
	DB       *database.PostgresDB // nil when auditing is disabled
	Producer *kafka.Producer      // nil when event publishing is disabled
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		Redis: cfg.Redis,
		DB:    cfg.DB,
	}

	// Authorization core
	c.Codec = token.NewCodec()
	c.Catalog = authz.NewCatalog()
	c.Routes = authz.DefaultRouteTable()
	c.StoreCfg = session.StoreConfigFrom(&cfg.Config.Session)
	c.Evaluator = session.NewEvaluator(c.Codec, c.Catalog)

	// Repositories
	c.SessionRepo = repository.NewRedisSessionRepository(cfg.Redis.Client())
	c.CatalogRepo = repository.NewRedisCatalogRepository(cfg.Redis.Client())
	if cfg.DB != nil {
		c.AuditRepo = repository.NewPostgresAuditRepository(cfg.DB.Pool())
	}

	// Events
	if cfg.Producer != nil {
		c.Publisher = events.NewKafkaPublisher(cfg.Producer, cfg.Config.Events.Topic)
	} else {
		c.Publisher = events.NoopPublisher{}
	}

	// Workers
	var auditSink middleware.AuditSink
	if c.AuditRepo != nil && cfg.Config.Audit.Enabled {
		c.AuditWorker = worker.NewAuditWorker(c.AuditRepo, &worker.AuditWorkerConfig{
			QueueSize:     cfg.Config.Audit.QueueSize,
			FlushInterval: cfg.Config.Audit.FlushInterval,
			BatchSize:     100,
		})
		auditSink = c.AuditWorker
	}
	var auditSweeper worker.AuditSweeper
	if c.AuditRepo != nil {
		auditSweeper = c.AuditRepo
	}
	c.CleanupWorker = worker.NewCleanupWorker(
		cfg.Config.Audit.SweepSchedule,
		cfg.Config.Audit.Retention,
		auditSweeper,
		c.SessionRepo,
	)

	// Services
	c.Upstream = upstream.NewClient(&cfg.Config.Upstream)
	c.AuthService = service.NewAuthService(c.Upstream, c.Codec, c.Routes, c.Publisher)
	c.DirectoryService = service.NewDirectoryService(c.Upstream)
	c.AttendanceService = service.NewAttendanceService(c.Upstream)
	c.PermissionService = service.NewPermissionService(c.Catalog, c.CatalogRepo)

	// Enforcement points
	c.Gatekeeper = middleware.NewGatekeeper(c.StoreCfg, c.Evaluator, c.Routes, c.Codec, c.SessionRepo, auditSink)
	c.Guard = middleware.NewGuard(c.StoreCfg, c.Evaluator, c.Codec, c.SessionRepo)

	// Handlers
	pages, err := handler.NewPagesHandler()
	if err != nil {
		return nil, err
	}
	c.PagesHandler = pages
	c.HealthHandler = handler.NewHealthHandler(cfg.Redis, cfg.DB)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, c.Catalog, c.StoreCfg, c.Codec, c.SessionRepo)
	c.SessionHandler = handler.NewSessionHandler(c.StoreCfg, c.Evaluator, c.Routes, c.Codec, c.SessionRepo)
	c.UserHandler = handler.NewUserHandler(c.DirectoryService)
	c.AttendanceHandler = handler.NewAttendanceHandler(c.AttendanceService)
	c.SettingsHandler = handler.NewSettingsHandler(c.PermissionService)

	return c, nil
}
