// Package server exposes chat sessions over a REST API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dinotidus/internal/agent"
	"dinotidus/internal/logging"
	"dinotidus/pkg/neural"
)

// Server routes REST requests to the session registry and keeps request
// metrics.
type Server struct {
	registry  *agent.Registry
	log       *logging.Logger
	startTime time.Time

	mu             sync.RWMutex
	totalTurns     uint64
	totalTrainings uint64
	failedRequests uint64
	totalLatencyNs uint64
}

func New(registry *agent.Registry, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		registry:  registry,
		log:       log,
		startTime: time.Now(),
	}
}

// Router builds the gin engine. mode is a gin mode name; empty means release.
func (s *Server) Router(mode string) *gin.Engine {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log.Zap()))

	api := router.Group("/api/v1")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/metrics", s.handleMetrics)

		api.GET("/sessions", s.handleListSessions)
		api.POST("/sessions", s.handleCreateSession)
		api.DELETE("/sessions/:id", s.handleDeleteSession)
		api.GET("/sessions/:id/stats", s.handleStats)
		api.GET("/sessions/:id/examples", s.handleExamples)
		api.GET("/sessions/:id/model", s.handleSaveModel)
		api.PUT("/sessions/:id/model", s.handleLoadModel)
		api.POST("/sessions/:id/reset", s.handleReset)

		api.POST("/chat", s.handleChat)
		api.POST("/train", s.handleTrain)
		api.POST("/train/batch", s.handleTrainBatch)
	}
	return router
}

// Serve serves on lis until ctx ends, then shuts down within timeout.
func (s *Server) Serve(ctx context.Context, lis net.Listener, mode string, timeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Router(mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API server listening on %s", lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("API server stopped")
	return nil
}

func requestLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) recordTurn(latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failedRequests++
		return
	}
	s.totalTurns++
	s.totalLatencyNs += uint64(latency.Nanoseconds())
}

func (s *Server) recordTraining(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failedRequests++
		return
	}
	s.totalTrainings += uint64(n)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, agent.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, neural.ErrDeserialization):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request %s failed: %v", c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
