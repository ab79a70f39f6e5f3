// Package http provides the HTTP adapter over the workflow engine. It is a
// thin translation layer: identity arrives as a trusted header, requests
// become engine/aggregator calls, and engine errors map onto status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/aggregator"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/export"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/repository"
	"github.com/Vriksh-Net/vriksh-reimbursement-app/internal/workflow"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates the HTTP server and wires all routes
func NewServer(
	config ServerConfig,
	engine *workflow.Engine,
	agg *aggregator.Aggregator,
	excelWriter *export.ExcelWriter,
	reportRepo *repository.ReportRepository,
	eventRepo *repository.EventRepository,
	userRepo *repository.UserRepository,
	categoryRepo *repository.CategoryRepository,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		handlers: NewHandlers(
			engine, agg, excelWriter,
			reportRepo, eventRepo, userRepo, categoryRepo,
			logger,
		),
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api")
	api.Use(s.handlers.ActorMiddleware())
	{
		api.POST("/reports", s.handlers.SubmitReport)
		api.GET("/reports", s.handlers.ListReports)
		api.GET("/reports/:id/tracking", s.handlers.GetTrackingView)
		api.POST("/reports/:id/transition", s.handlers.RequestTransition)

		api.GET("/analytics/summary", s.handlers.GetAggregateSummary)
		api.GET("/analytics/export", s.handlers.ExportAggregate)

		api.GET("/users", s.handlers.ListUsers)
		api.GET("/categories", s.handlers.ListCategories)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
