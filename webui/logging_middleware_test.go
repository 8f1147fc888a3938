package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"imagestudio/logging"
)

func newObservedLogger() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestLoggingMiddleware_LogsRequest(t *testing.T) {
	logger, logs := newObservedLogger()
	m := NewLoggingMiddleware(logger, LoggingMiddlewareConfig{})

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.InfoLevel {
		t.Errorf("level = %v, want info", e.Level)
	}
	fields := e.ContextMap()
	if fields["method"] != "POST" || fields["path"] != "/generate" {
		t.Errorf("method/path = %v %v", fields["method"], fields["path"])
	}
	if fields["status"] != int64(200) {
		t.Errorf("status = %v, want 200", fields["status"])
	}
	if fields["bytes"] != int64(5) {
		t.Errorf("bytes = %v, want 5", fields["bytes"])
	}
	if fields["remote_addr"] != "203.0.113.7" {
		t.Errorf("remote_addr = %v", fields["remote_addr"])
	}
	if _, ok := fields["user_agent"]; ok {
		t.Error("user agent logged without LogUserAgent")
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusSeeOther, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusServiceUnavailable, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		logger, logs := newObservedLogger()
		m := NewLoggingMiddleware(logger, LoggingMiddlewareConfig{LogUserAgent: true})
		handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "test-agent")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.All()
		if len(entries) != 1 {
			t.Fatalf("status %d: log entries = %d", tt.status, len(entries))
		}
		if entries[0].Level != tt.want {
			t.Errorf("status %d: level = %v, want %v", tt.status, entries[0].Level, tt.want)
		}
		if entries[0].ContextMap()["user_agent"] != "test-agent" {
			t.Errorf("status %d: user agent not logged", tt.status)
		}
	}
}

func TestLoggingMiddleware_SkipPaths(t *testing.T) {
	logger, logs := newObservedLogger()
	m := NewLoggingMiddleware(logger, LoggingMiddlewareConfig{SkipPaths: []string{"/health"}})

	called := false
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !called {
		t.Error("skipped path must still reach the handler")
	}
	if logs.Len() != 0 {
		t.Errorf("log entries = %d, want 0", logs.Len())
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": "4.3.2.1"}, "9.9.9.9:1", "4.3.2.1"},
		{"remote addr", nil, "9.9.9.9:1", "9.9.9.9:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
