package server

import (
	"context"
	"fmt"
	nethttp "net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pbs-admin/backend/internal/api/middleware"
	api "github.com/pbs-admin/backend/internal/http"
	"github.com/pbs-admin/backend/internal/infrastructure/config"
	"github.com/pbs-admin/backend/internal/infrastructure/monitoring"
	"github.com/pbs-admin/backend/internal/logging"
	"github.com/pbs-admin/backend/internal/providers/backup"
	"github.com/pbs-admin/backend/internal/providers/files"
	"github.com/pbs-admin/backend/internal/providers/system"
	"github.com/pbs-admin/backend/internal/service"
	"github.com/pbs-admin/backend/internal/shared/paths"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	http     *nethttp.Server
	registry *service.Registry
	backups  *backup.Manager
	roots    paths.Roots
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Initializing backend",
		zap.String("app", cfg.App.Name),
		zap.String("port", cfg.Server.Port),
	)

	// Resolve and create the permitted roots before anything touches
	// them. The guard skips roots that cannot be canonicalized, so a
	// root that failed to materialize denies access rather than
	// granting it.
	var roots paths.Roots
	if cfg.App.BaseDir != "" {
		roots = paths.RootsUnder(cfg.App.BaseDir, cfg.App.Name)
	} else {
		roots, err = paths.DefaultRoots(cfg.App.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve application roots: %w", err)
		}
	}
	if err := roots.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to create application roots: %w", err)
	}
	logger.Info("Application roots ready",
		zap.String("data", roots.Data),
		zap.String("backups", roots.Backups),
		zap.String("scratch", roots.Scratch),
	)

	guard := paths.NewGuard(roots.All()...)
	dbPath := filepath.Join(roots.Data, cfg.App.DatabaseFile)
	backups := backup.NewManager(dbPath, roots.Backups, logger)

	metrics := monitoring.NewMetrics()

	registry := service.NewRegistry()
	registerProviders(registry, guard, roots, backups, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(registry, backups, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Backup convenience endpoints
	router.GET("/backups", handlers.ListBackups)
	router.POST("/backups", handlers.CreateBackup)
	router.POST("/backups/restore", handlers.RestoreBackup)
	router.DELETE("/backups/:name", handlers.DeleteBackup)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized")

	return &Server{
		http: &nethttp.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
		},
		registry: registry,
		backups:  backups,
		roots:    roots,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, letting in-flight requests
// finish. A restore that is mid-flight completes or rolls back before
// the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Shutdown did not complete cleanly", zap.Error(err))
		return err
	}

	s.logger.Sync()
	return nil
}

func registerProviders(
	registry *service.Registry,
	guard *paths.Guard,
	roots paths.Roots,
	backups *backup.Manager,
	logger *logging.Logger,
) {
	filesProvider := files.NewProvider(guard, roots.Data, logger)
	if err := registry.Register(filesProvider); err != nil {
		logger.Warn("Failed to register files provider", zap.Error(err))
	}

	backupProvider := backup.NewProvider(backups)
	if err := registry.Register(backupProvider); err != nil {
		logger.Warn("Failed to register backup provider", zap.Error(err))
	}

	systemProvider := system.NewProvider(roots, logger)
	if err := registry.Register(systemProvider); err != nil {
		logger.Warn("Failed to register system provider", zap.Error(err))
	}

	stats := registry.Stats()
	logger.Info("Service providers registered",
		zap.Any("services", stats["total_services"]),
		zap.Any("tools", stats["total_tools"]),
	)
}
