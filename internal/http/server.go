// Package http provides the HTTP server, router assembly, and request middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RouterConfig carries the handlers and middlewares the router wires up.
// Guards are injected as plain gin middlewares so routes compose them by
// nesting.
type RouterConfig struct {
	RegisterHandler         gin.HandlerFunc
	LoginHandler            gin.HandlerFunc
	WhoamiHandler           gin.HandlerFunc
	GetUserHandler          gin.HandlerFunc
	ListUsersHandler        gin.HandlerFunc
	CreateEnrollmentHandler gin.HandlerFunc
	ListEnrollmentsHandler  gin.HandlerFunc

	AuthenticationMiddleware gin.HandlerFunc
	InstructorMiddleware     gin.HandlerFunc
	LoginRateLimitMiddleware gin.HandlerFunc
	MetricsMiddleware        gin.HandlerFunc

	CORSEnabled      bool
	CORSAllowOrigins string
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	logger *slog.Logger
	db     *sql.DB
}

// NewServer creates the API server and assembles the router. The db handle is
// used only by the readiness probe; a nil db reports not ready.
func NewServer(
	cfg RouterConfig,
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	s := &Server{
		logger: logger,
		db:     db,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsMiddleware != nil {
		router.Use(cfg.MetricsMiddleware)
	}

	router.GET("/healthz", s.healthHandler)
	router.GET("/readyz", s.readinessHandler)

	v1 := router.Group("/v1")
	{
		// Credential endpoints are unauthenticated, so they carry their own
		// per-IP rate limit when one is configured.
		credentials := v1.Group("")
		if cfg.LoginRateLimitMiddleware != nil {
			credentials.Use(cfg.LoginRateLimitMiddleware)
		}
		credentials.POST("/auth/register", cfg.RegisterHandler)
		credentials.POST("/auth/login", cfg.LoginHandler)

		authenticated := v1.Group("", cfg.AuthenticationMiddleware)
		{
			authenticated.GET("/auth/whoami", cfg.WhoamiHandler)
			authenticated.GET("/users/:id", cfg.GetUserHandler)
			authenticated.GET("/users/:id/enrollments", cfg.ListEnrollmentsHandler)
			authenticated.POST("/enrollments", cfg.CreateEnrollmentHandler)

			// Listing exposes the whole user table, so it is gated on the
			// instructor role.
			authenticated.GET("/users", cfg.InstructorMiddleware, cfg.ListUsersHandler)
		}
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The database
// is the only hard dependency.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	if s.db == nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
