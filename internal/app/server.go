// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"accounts_backend/internal/config"
	"accounts_backend/internal/jobs"
	"accounts_backend/internal/middleware"
	"accounts_backend/internal/platform/database"
	"accounts_backend/internal/provision"
	"accounts_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger
	db         *gorm.DB

	// Handlers
	userHandler *user.Handler

	// Jobs
	integrityAuditJob *jobs.IntegrityAuditJob
}

// NewServer creates a new instance of our application server. All wiring is
// explicit and happens here, including the one after-save registration that
// attaches the provisioner to the user repository; there is no global
// registry behind this.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	userRepo user.Repository,
	provisioner *provision.Provisioner,
	userHandler *user.Handler,
	integrityAuditJob *jobs.IntegrityAuditJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Every user insert must provision a profile, so the hook is registered
	// before any route can reach the repository.
	userRepo.AfterSave(provisioner.UserSaved)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Accounts API is healthy!"})
	})

	v1 := router.Group("/api/v1")
	userHandler.RegisterRoutes(v1)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:        httpServer,
		router:            router,
		cfg:               cfg,
		logger:            logger,
		db:                db,
		userHandler:       userHandler,
		integrityAuditJob: integrityAuditJob,
	}, nil
}

// Migrate applies the embedded schema migrations. Called once from main
// before the server starts accepting traffic.
func (s *Server) Migrate(ctx context.Context) error {
	s.logger.Info("Applying database migrations...")
	if err := database.RunMigrations(ctx, s.db); err != nil {
		return err
	}
	s.logger.Info("Database migrations up to date.")
	return nil
}

func (s *Server) Start() error {
	if s.integrityAuditJob != nil {
		if err := s.integrityAuditJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start integrity audit job", zap.Error(err))
		}
	} else {
		s.logger.Info("Integrity audit job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.integrityAuditJob != nil {
		s.integrityAuditJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
