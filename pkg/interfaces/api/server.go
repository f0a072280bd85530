// Package api exposes tracking results over HTTP for the dashboard
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/vsinha/acompreq/pkg/application/dto"
	"github.com/vsinha/acompreq/pkg/application/services"
)

const shutdownTimeout = 10 * time.Second

// Tracker runs one tracking pass; *services.TrackingService implements it
type Tracker interface {
	Run(ctx context.Context, req services.RunRequest) (*dto.RunResult, error)
}

// Server serves the requisition follow-up API. Every request recomputes the result.
type Server struct {
	tracker Tracker
	logger  *slog.Logger
	clock   func() time.Time
}

func NewServer(tracker Tracker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tracker: tracker,
		logger:  logger,
		clock:   time.Now,
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestIDMiddleware(), loggerMiddleware(s.logger), recoveryMiddleware(s.logger))
	router.Use(gzip.Gzip(gzip.BestSpeed))

	router.GET("/healthz", s.health)

	api := router.Group("/api")
	{
		api.GET("/requisitions", s.listRequisitions)
		api.GET("/requisitions/pending", s.listPendingLines)
		api.GET("/digests", s.listDigests)
		api.GET("/digests/:administrator", s.getDigest)
	}

	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
