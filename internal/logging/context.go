package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

type contextKey string

const (
	loggerKey  contextKey = "logger"
	traceIDKey contextKey = "trace_id"
)

// GenerateTraceID generates a new trace ID
func GenerateTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext retrieves the logger from context
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return Default()
}

// NewContext creates a new context with the logger
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithTraceContext adds a trace ID to the context and returns a logger with it
func WithTraceContext(ctx context.Context) (context.Context, *Logger) {
	traceID := GenerateTraceID()
	l := Default().WithTraceID(traceID)
	newCtx := context.WithValue(ctx, traceIDKey, traceID)
	newCtx = context.WithValue(newCtx, loggerKey, l)
	return newCtx, l
}

// SignalContext creates a logger context for signal evaluation
func SignalContext(signalID, symbol, direction string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"signal_id": signalID,
		"symbol":    symbol,
		"direction": direction,
	}).WithComponent("signal")
}

// OptimizerContext creates a logger context for indicator optimization runs
func OptimizerContext(symbol string, windowSize int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"symbol":      symbol,
		"window_size": windowSize,
	}).WithComponent("optimizer")
}

// FilterContext creates a logger context for confluence filter evaluation
func FilterContext(symbol, timeframe, regime string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"symbol":    symbol,
		"timeframe": timeframe,
		"regime":    regime,
	}).WithComponent("filters")
}

// GateContext creates a logger context for decision gate evaluation
func GateContext(symbol string, confidence, riskScore float64) *Logger {
	return Default().WithFields(map[string]interface{}{
		"symbol":     symbol,
		"confidence": confidence,
		"risk_score": riskScore,
	}).WithComponent("reflex")
}

// ProviderContext creates a logger context for reasoning provider calls
func ProviderContext(provider, model string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"provider": provider,
		"model":    model,
	}).WithComponent("reasoning")
}

// APIContext creates a logger context for API operations
func APIContext(method, path string, statusCode int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
	}).WithComponent("api")
}

// WebSocketContext creates a logger context for WebSocket operations
func WebSocketContext(clientID, channel string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"client_id": clientID,
		"channel":   channel,
	}).WithComponent("websocket")
}

// HTTPMiddleware is a middleware that adds logging to HTTP requests
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = GenerateTraceID()
		}

		// Create logger with request context
		l := Default().WithTraceID(traceID).WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"remote_addr": r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		}).WithComponent("http")

		// Add logger to context
		ctx := NewContext(r.Context(), l)
		r = r.WithContext(ctx)

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}

		// Call next handler
		next.ServeHTTP(wrapped, r)

		// Log request completion
		duration := time.Since(start)
		l.WithDuration(duration).WithField("status_code", wrapped.statusCode).Info("Request completed")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// DatabaseContext creates a logger context for database operations
func DatabaseContext(operation, table string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"operation": operation,
		"table":     table,
	}).WithComponent("database")
}
