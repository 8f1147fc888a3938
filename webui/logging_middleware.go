package webui

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"imagestudio/logging"
)

// LoggingMiddleware logs one structured entry per HTTP request with method,
// path, status code, duration and client address. Server errors log at
// error level, client errors at warn, everything else at info.
type LoggingMiddleware struct {
	logger       *logging.Logger
	skipPaths    map[string]bool
	logUserAgent bool
}

// LoggingMiddlewareConfig holds configuration for the LoggingMiddleware
type LoggingMiddlewareConfig struct {
	// SkipPaths are paths to skip logging (e.g. /health)
	SkipPaths []string

	// LogUserAgent whether to include user agent in logs (default: false)
	LogUserAgent bool
}

// NewLoggingMiddleware creates a LoggingMiddleware writing to logger.
func NewLoggingMiddleware(logger *logging.Logger, config LoggingMiddlewareConfig) *LoggingMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &LoggingMiddleware{
		logger:       logger.Named("http"),
		skipPaths:    skipPaths,
		logUserAgent: config.LogUserAgent,
	}
}

// Handler wraps next with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default if not explicitly set
		}

		next.ServeHTTP(wrapped, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", getClientIP(r)),
			zap.Int64("bytes", wrapped.bytesWritten),
		}
		if m.logUserAgent {
			fields = append(fields, zap.String("user_agent", r.UserAgent()))
		}

		switch {
		case wrapped.statusCode >= 500:
			m.logger.Error("request", fields...)
		case wrapped.statusCode >= 400:
			m.logger.Warn("request", fields...)
		default:
			m.logger.Info("request", fields...)
		}
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

// WriteHeader captures the status code
func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Write captures the bytes written and ensures header is written
func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher if the underlying writer supports it
func (w *responseWriterWrapper) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// getClientIP extracts the client IP, preferring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
