// Package api serves the signal history and on-demand analysis over HTTP.
//
//   - api.go: handler, dependencies and routes (this file)
//   - handler.go: HTTP request handlers
//   - middleware.go: middleware functions
//   - validator.go: request validation
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"signalBot/internal/domain"
	"signalBot/internal/ports"
	"signalBot/internal/report"
	"signalBot/internal/strategy/analytics"
)

// Constants
const (
	DefaultTimeout      = 30 * time.Second
	DefaultLimit        = 20
	MaxLimit            = 500
	ServiceName         = "signalbot"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// SignalService is the slice of the application service the API drives.
type SignalService interface {
	AnalyzePair(ctx context.Context, pair string) (*domain.Signal, error)
	Stats(ctx context.Context) (*analytics.SignalStats, error)
	LastRun() time.Time
}

// Handler handles HTTP requests using the Gin framework.
type Handler struct {
	service   SignalService
	repo      ports.SignalRepository
	formatter report.Formatter
	metrics   http.Handler // Optional
	logger    ports.Logger
	now       func() time.Time
}

// NewHandler creates an API handler. metrics may be nil.
func NewHandler(service SignalService, repo ports.SignalRepository, formatter report.Formatter, metrics http.Handler, logger ports.Logger) (*Handler, error) {
	if service == nil || repo == nil || logger == nil {
		return nil, errMissingDependencies
	}
	return &Handler{
		service:   service,
		repo:      repo,
		formatter: formatter,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// SetupRoutes configures all API routes.
func (h *Handler) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", h.HealthCheck)
	router.GET("/signals", h.ListSignals)
	router.GET("/signals/export", h.ExportSignals)
	router.GET("/signals/:pair/latest", h.LatestSignal)
	router.GET("/stats", h.GetStats)
	router.GET("/analyze/:pair", h.AnalyzePair)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}
	return router
}

// Server wraps the router in an http.Server bound to addr.
func (h *Handler) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
