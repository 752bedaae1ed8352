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

	"github.com/allisson/healthshare/internal/config"
	linkHTTP "github.com/allisson/healthshare/internal/link/http"
	reportsHTTP "github.com/allisson/healthshare/internal/reports/http"
	sharingHTTP "github.com/allisson/healthshare/internal/sharing/http"
)

// Handlers groups the domain handlers wired into the router.
type Handlers struct {
	Token  *sharingHTTP.TokenHandler
	Grant  *sharingHTTP.GrantHandler
	Report *reportsHTTP.ReportHandler
	Link   *linkHTTP.LinkHandler
}

// Server represents the main HTTP API server.
type Server struct {
	config   *config.Config
	db       *sql.DB
	handlers *Handlers
	logger   *slog.Logger
	server   *http.Server
}

// NewServer creates a new HTTP server with its routes registered.
func NewServer(
	cfg *config.Config,
	db *sql.DB,
	handlers *Handlers,
	logger *slog.Logger,
) *Server {
	s := &Server{
		config:   cfg,
		db:       db,
		handlers: handlers,
		logger:   logger,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      s.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter builds the gin engine with middleware and all v1 routes.
func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		s.config.CORSEnabled,
		s.config.CORSAllowOrigins,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Public link routes. Opening a bearer link requires only the encrypted
	// data and the access code, so no identity is established here; the open
	// endpoint is IP rate limited instead.
	public := router.Group("/v1/links")
	{
		openHandlers := []gin.HandlerFunc{}
		if s.config.RateLimitOpenEnabled {
			openHandlers = append(openHandlers, OpenRateLimitMiddleware(
				s.config.RateLimitOpenRequestsPerSec,
				s.config.RateLimitOpenBurst,
				s.logger,
			))
		}
		openHandlers = append(openHandlers, s.handlers.Link.OpenHandler)
		public.POST("/open", openHandlers...)
		public.GET("/qr", s.handlers.Link.QRHandler)
	}

	// Identified routes behind the gateway identity headers.
	v1 := router.Group("/v1")
	v1.Use(IdentityMiddleware(s.logger))
	if s.config.RateLimitEnabled {
		v1.Use(CallerRateLimitMiddleware(
			s.config.RateLimitRequestsPerSec,
			s.config.RateLimitBurst,
			s.logger,
		))
	}
	{
		v1.POST("/tokens", s.handlers.Token.CreateHandler)
		v1.GET("/tokens", s.handlers.Token.ListHandler)
		v1.PUT("/tokens/:id/deactivate", s.handlers.Token.DeactivateHandler)
		v1.GET("/tokens/by-secret/:secret", s.handlers.Token.GetBySecretHandler)
		v1.POST("/tokens/by-secret/:secret/accept", s.handlers.Token.AcceptHandler)

		v1.GET("/grants", s.handlers.Grant.ListHandler)

		v1.GET("/reports", s.handlers.Report.ListHandler)
		v1.GET("/reports/:id", s.handlers.Report.GetHandler)

		v1.POST("/links", s.handlers.Link.MintHandler)
		v1.POST("/links/deliver", s.handlers.Link.DeliverHandler)
	}

	return router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking the
// database connection.
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
