package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"signalBot/internal/ports"
	"signalBot/internal/utils"
)

var errMissingDependencies = errors.New("missing required dependencies for API handler")

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(c *gin.Context) {
	body := gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"version":   ServiceVersion,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}
	if last := h.service.LastRun(); !last.IsZero() {
		body["last_run"] = last.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

// ListSignals handles GET /signals?limit=N, newest first.
func (h *Handler) ListSignals(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	records, err := h.repo.FindRecent(ctx, limit)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	if records == nil {
		records = []*ports.SignalRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// ExportSignals handles GET /signals/export?format=json|csv&limit=N.
func (h *Handler) ExportSignals(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	format, err := parseFormat(c.Query("format"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	limit, err := parseLimit(c.DefaultQuery("limit", "500"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	records, err := h.repo.FindRecent(ctx, limit)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.Status(http.StatusOK)
	switch format {
	case formatCSV:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="signals_history.csv"`)
		err = utils.WriteHistoryCSV(c.Writer, records)
	default:
		c.Header("Content-Type", "application/json; charset=utf-8")
		err = utils.WriteHistoryJSON(c.Writer, records)
	}
	if err != nil {
		h.logger.Error(ctx, err, "Failed to write export", map[string]interface{}{"format": format})
	}
}

// LatestSignal handles GET /signals/:pair/latest.
func (h *Handler) LatestSignal(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	pair, err := normalizePair(c.Param("pair"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	record, err := h.repo.FindLatestByPair(ctx, pair)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	if record == nil {
		h.handleError(c, ports.ErrNotFound, http.StatusNotFound, "No signal for "+pair)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	pair, count, _ := stats.MostActivePair()
	c.JSON(http.StatusOK, gin.H{
		"total_signals":      stats.TotalSignals,
		"buy_signals":        stats.BuySignals,
		"sell_signals":       stats.SellSignals,
		"strong_signals":     stats.StrongSignals,
		"moderate_signals":   stats.ModerateSignals,
		"weak_signals":       stats.WeakSignals,
		"average_confluence": stats.AverageConfluence,
		"average_rr":         stats.AverageRewardToRisk,
		"signals_by_pair":    stats.SignalsByPair,
		"most_active_pair":   pair,
		"most_active_count":  count,
		"daily_counts":       stats.GetDailyCounts(),
		"max_direction_run":  stats.MaxDirectionStreak,
	})
}

// AnalyzePair handles GET /analyze/:pair. It runs a fresh analysis without
// delivering or storing the result.
func (h *Handler) AnalyzePair(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	pair, err := normalizePair(c.Param("pair"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}
	sig, err := h.service.AnalyzePair(ctx, pair)
	if err != nil {
		status, msg := statusFor(err)
		h.handleError(c, err, status, msg)
		return
	}
	if sig == nil {
		c.JSON(http.StatusOK, gin.H{"pair": pair, "direction": "HOLD", "signal": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pair":       pair,
		"direction":  sig.Direction,
		"signal":     sig,
		"confluence": sig.Confluence(),
		"report":     h.formatter.Format(sig),
	})
}

// statusFor maps service errors to an HTTP status and a user message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ports.ErrUnsupportedPair), errors.Is(err, ports.ErrInvalidRequest):
		return http.StatusBadRequest, "Pair not supported by the data source"
	case errors.Is(err, ports.ErrRateLimited):
		return http.StatusTooManyRequests, "Data source rate limit exceeded"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ports.ErrTimeout):
		return http.StatusGatewayTimeout, "Analysis timed out"
	default:
		return http.StatusBadGateway, "Market data unavailable"
	}
}

// handleError logs the error and sends the JSON error body.
func (h *Handler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := c.GetString(RequestIDContextKey)
	if requestID == "" {
		requestID = "unknown"
	}

	h.logger.Error(c.Request.Context(), err, "API error", map[string]interface{}{
		"request_id":  requestID,
		"method":      c.Request.Method,
		"path":        c.Request.URL.Path,
		"status_code": statusCode,
	})

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

// handleValidationError handles validation errors specifically.
func (h *Handler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}
