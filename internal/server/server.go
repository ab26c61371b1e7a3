// Package server is the optional state monitor: a small HTTP service that
// exposes the panel's derived state as JSON and streams every change over
// a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alkime/radiopanel/internal/config"
	"github.com/alkime/radiopanel/internal/panel"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

const (
	serviceName     = "radiopanel"
	shutdownTimeout = 5 * time.Second
)

// StateSource returns the latest device state. It must be safe to call from
// request goroutines.
type StateSource interface {
	State() panel.DeviceState
}

// Server represents the monitor HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	state  StateSource
	hub    *Hub
}

// New creates a new Server instance
func New(cfg *config.Config, state StateSource, logger *slog.Logger) *Server {
	// The monitor shares the terminal with the TUI, so gin never writes to
	// stdout: release mode and slog request logging.
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("Failed to set trusted proxies", "error", err)
	}

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		state:  state,
		hub:    NewHub(logger, HubConfig{}),
	}

	setupSecurityMiddleware(router, cfg, logger)
	server.setupRoutes()

	return server
}

// Router exposes the gin engine for tests and embedding.
func (s *Server) Router() *gin.Engine { return s.router }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start runs the websocket hub and forwards updates to it until ctx is
// done. It does not listen; Run does.
func (s *Server) Start(ctx context.Context, updates <-chan panel.DeviceState) {
	go s.hub.Run(ctx)
	go RunBroadcaster(ctx, s.hub, updates, s.logger)
}

// Run starts the hub and serves HTTP on the configured monitor address
// until ctx is done.
func (s *Server) Run(ctx context.Context, updates <-chan panel.DeviceState) error {
	s.Start(ctx, updates)

	httpServer := &http.Server{
		Addr:              s.config.MonitorAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Monitor listening", "addr", s.config.MonitorAddr)
		errC <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("monitor server failed: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down monitor: %w", err)
		}

		return nil
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.GET("/state", s.handleState)
	}

	s.router.GET("/ws", s.handleStateWS)

	// Serve a dashboard from disk when configured; explicit routes win.
	if dir := s.config.MonitorStaticDir; dir != "" {
		s.router.Use(static.Serve("/", static.LocalFile(dir, true)))
		s.logger.Debug("Serving static files", "dir", dir)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// handleState returns the latest derived device state.
func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.State())
}
