// Package http provides the HTTP surface of the conversion gateway.
package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wagov/convertd/errors"
	"github.com/wagov/convertd/gateway"
	"github.com/wagov/convertd/health"
	"github.com/wagov/convertd/metric"
)

// getOrGenerateRequestID extracts the request ID from headers or generates
// a new one so conversions can be traced across log lines
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
		return reqID
	}
	return uuid.NewString()
}

// Gateway serves the conversion route over HTTP
type Gateway struct {
	config    gateway.Config
	converter *gateway.Converter
	metrics   *metric.Metrics
	logger    *slog.Logger

	// Lifecycle state (atomic operations)
	running atomic.Bool

	// Protects startTime and lastActivity for concurrent reads
	mu        sync.RWMutex
	startTime time.Time

	// Request counters (atomic operations)
	requestsTotal  atomic.Uint64
	requestsFailed atomic.Uint64
	lastActivity   time.Time
}

// NewGateway creates a new HTTP gateway from configuration
func NewGateway(
	config gateway.Config,
	converter *gateway.Converter,
	metrics *metric.Metrics,
	logger *slog.Logger,
) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Gateway", "NewGateway", "config validation")
	}

	if converter == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Gateway", "NewGateway",
			"converter is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		config:    config,
		converter: converter,
		metrics:   metrics,
		logger:    logger,
	}, nil
}

// Start marks the gateway as serving
func (g *Gateway) Start(_ context.Context) error {
	if g.running.Load() {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Gateway", "Start",
			"gateway already running")
	}

	g.mu.Lock()
	g.running.Store(true)
	g.startTime = time.Now()
	g.mu.Unlock()

	return nil
}

// Stop marks the gateway as stopped
func (g *Gateway) Stop(_ time.Duration) error {
	if !g.running.Load() {
		return nil
	}

	g.mu.Lock()
	g.running.Store(false)
	g.mu.Unlock()

	return nil
}

// RegisterHTTPHandlers registers gateway routes with the HTTP mux
func (g *Gateway) RegisterHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /{input}/to/{output}", g.handleConvert)
	mux.HandleFunc("OPTIONS /{input}/to/{output}", g.handlePreflight)
	mux.HandleFunc("GET /formats", g.handleFormats)
	mux.HandleFunc("GET /healthz", health.Handler(g.Health))
}

// handleConvert runs the resolve→parse→encode pipeline for one request
func (g *Gateway) handleConvert(w http.ResponseWriter, r *http.Request) {
	requestID := getOrGenerateRequestID(r)
	w.Header().Set("X-Request-ID", requestID)

	g.requestsTotal.Add(1)
	g.mu.Lock()
	g.lastActivity = time.Now()
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.RequestsInFlight.Inc()
		defer g.metrics.RequestsInFlight.Dec()
	}

	if g.config.EnableCORS {
		g.applyCORS(w, r)
	}

	input := r.PathValue("input")
	output := r.PathValue("output")

	// Close body when done (must be before any error returns to prevent resource leak)
	defer r.Body.Close()

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		g.writeError(w, http.StatusBadRequest, "", "", "failed to read request body")
		g.requestsFailed.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), g.config.Timeout())
	defer cancel()

	start := time.Now()
	converted, err := g.converter.Convert(ctx, input, output, rawBody)
	duration := time.Since(start)

	if err != nil {
		status, stage, format := g.classifyError(err, input)
		g.logger.Warn("conversion failed",
			"request_id", requestID,
			"input", input,
			"output", output,
			"stage", stage,
			"error", err)

		if g.metrics != nil {
			g.metrics.RecordConversion(input, output, "error", duration)
			if stage != "" {
				g.metrics.RecordConversionError(stage)
			}
		}

		g.writeError(w, status, stage, format, err.Error())
		g.requestsFailed.Add(1)
		return
	}

	contentType := g.converter.ContentType(output)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(converted); err != nil {
		// Can't write an error response at this point
		g.requestsFailed.Add(1)
		return
	}

	if g.metrics != nil {
		g.metrics.RecordConversion(input, output, "success", duration)
		g.metrics.RecordBytes(len(rawBody), len(converted))
	}

	g.logger.Debug("conversion complete",
		"request_id", requestID,
		"input", input,
		"output", output,
		"bytes_in", len(rawBody),
		"bytes_out", len(converted),
		"duration", duration)
}

// handlePreflight answers CORS preflight requests for the conversion route
func (g *Gateway) handlePreflight(w http.ResponseWriter, r *http.Request) {
	if g.config.EnableCORS {
		g.applyCORS(w, r)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFormats lists the registered format identifiers
func (g *Gateway) handleFormats(w http.ResponseWriter, r *http.Request) {
	if g.config.EnableCORS {
		g.applyCORS(w, r)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	data, _ := json.Marshal(map[string]any{
		"formats": g.converter.Formats(),
	})
	_, _ = w.Write(data)
}

// applyCORS applies CORS headers to the response
func (g *Gateway) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")

	allowed := false
	for _, allowedOrigin := range g.config.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			allowed = true
			break
		}
	}

	if allowed {
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "3600")
	}
}

// classifyError maps a pipeline failure to an HTTP status, the failing
// stage, and the offending format identifier
func (g *Gateway) classifyError(err error, fallbackFormat string) (status int, stage, format string) {
	var convErr *gateway.ConversionError
	if stderrors.As(err, &convErr) {
		switch convErr.Stage {
		case gateway.StageResolve:
			return http.StatusNotFound, string(convErr.Stage), convErr.Format
		case gateway.StageParse:
			return http.StatusBadRequest, string(convErr.Stage), convErr.Format
		case gateway.StageEncode:
			return http.StatusInternalServerError, string(convErr.Stage), convErr.Format
		}
	}

	// Fallback for errors raised outside the pipeline stages
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest, "", fallbackFormat
	case errors.IsTransient(err):
		if strings.Contains(err.Error(), "deadline") || strings.Contains(err.Error(), "timeout") {
			return http.StatusGatewayTimeout, "", fallbackFormat
		}
		return http.StatusServiceUnavailable, "", fallbackFormat
	default:
		return http.StatusInternalServerError, "", fallbackFormat
	}
}

// writeError writes a machine-readable error response identifying the
// failing stage and the offending format identifier
func (g *Gateway) writeError(w http.ResponseWriter, statusCode int, stage, format, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":  message,
		"status": statusCode,
	}
	if stage != "" {
		response["stage"] = stage
	}
	if format != "" {
		response["format"] = format
	}

	data, _ := json.Marshal(response)
	_, _ = w.Write(data)
}

// Health returns the current health status of the gateway
func (g *Gateway) Health() health.Status {
	g.mu.RLock()
	startTime := g.startTime
	g.mu.RUnlock()

	var status health.Status
	if g.running.Load() {
		status = health.Healthy("gateway")
	} else {
		status = health.Unhealthy("gateway", "gateway not started")
	}

	return status.WithMetrics(&health.Metrics{
		Uptime:     time.Since(startTime),
		ErrorCount: int(g.requestsFailed.Load()),
		Formats:    g.converter.Formats(),
	})
}

// RequestStats reports total and failed request counts since startup
func (g *Gateway) RequestStats() (total, failed uint64) {
	return g.requestsTotal.Load(), g.requestsFailed.Load()
}
