// Package webui serves the studio as server-rendered HTML. Every action is a
// form POST followed by a redirect back to the page, so one request/redirect
// cycle re-renders the whole session view.
package webui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"imagestudio/core"
	"imagestudio/logging"
	"imagestudio/studio"
)

// Server is the studio HTTP server. It wires together:
//   - SessionStore for per-browser studio sessions
//   - LoggingMiddleware for request logging
//   - the studio.Controller that runs generations
//
// In setup mode (no controller, missing credential) every route except
// /health renders the setup instructions with 503.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	logger     *logging.Logger
	controller *studio.Controller
	sessions   *SessionStore
	cookies    CookieConfig
	setup      *core.ConfigError
	loggingMw  *LoggingMiddleware
}

// ServerConfig configures the Server.
type ServerConfig struct {
	Host string
	Port int

	// ReadTimeout for HTTP requests (default: 30s)
	ReadTimeout time.Duration

	// WriteTimeout must outlast one generation (default: 150s)
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// SessionTTL is the inactivity timeout of a studio session (default: 24h)
	SessionTTL time.Duration

	// SecureCookies sets the Secure flag on the session cookie
	SecureCookies bool

	// LogSkipPaths are paths to skip logging
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         core.DefaultHost,
		Port:         core.DefaultPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: core.DefaultInferenceTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
		SessionTTL:   core.DefaultSessionTTL,
		LogSkipPaths: []string{"/health"},
	}
}

// NewServer creates a Server that generates images through controller.
func NewServer(config ServerConfig, controller *studio.Controller, logger *logging.Logger) (*Server, error) {
	if controller == nil {
		return nil, errors.New("webui: controller cannot be nil")
	}
	return newServer(config, controller, nil, logger), nil
}

// NewSetupServer creates a Server that only shows the setup instructions in
// setup.
func NewSetupServer(config ServerConfig, setup *core.ConfigError, logger *logging.Logger) (*Server, error) {
	if setup == nil {
		return nil, errors.New("webui: setup error cannot be nil")
	}
	return newServer(config, nil, setup, logger), nil
}

func newServer(config ServerConfig, controller *studio.Controller, setup *core.ConfigError, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = core.DefaultSessionTTL
	}
	logger = logger.Named("webui")

	s := &Server{
		mux:        http.NewServeMux(),
		config:     config,
		logger:     logger,
		controller: controller,
		setup:      setup,
		cookies:    DefaultCookieConfig(config.SessionTTL),
		loggingMw: NewLoggingMiddleware(logger, LoggingMiddlewareConfig{
			SkipPaths: config.LogSkipPaths,
		}),
	}
	s.cookies.Secure = config.SecureCookies

	if controller != nil {
		s.sessions = NewSessionStore(config.SessionTTL, cleanupInterval(config.SessionTTL), controller.NewSession)
		s.sessions.OnEvicted(func(_ string, sess *studio.Session) {
			logger.Debug("session expired",
				zap.String("session_id", sess.ID),
				zap.Int("history", sess.Len()),
			)
		})
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	logger.Info("WebUI server created",
		zap.String("addr", s.httpServer.Addr),
		zap.Bool("setup_mode", setup != nil),
	)
	return s
}

// cleanupInterval purges expired sessions a few times per TTL.
func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	if interval > time.Hour {
		interval = time.Hour
	}
	return interval
}

// setupRoutes configures all the HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	if s.setup != nil {
		s.mux.HandleFunc("/", s.handleSetup)
		return
	}

	s.mux.HandleFunc("GET /{$}", s.withSession(s.handleIndex))
	s.mux.HandleFunc("POST /generate", s.withSession(s.handleGenerate))
	s.mux.HandleFunc("POST /random", s.withSession(s.handleRandom))
	s.mux.HandleFunc("POST /history/toggle", s.withSession(s.handleToggleHistory))
	s.mux.HandleFunc("POST /history/clear", s.withSession(s.handleClearHistory))
	s.mux.HandleFunc("POST /history/{index}/delete", s.withSession(s.handleDeleteEntry))
	s.mux.HandleFunc("GET /history/{index}/download", s.withSession(s.handleDownload))
	s.mux.HandleFunc("GET /history/{index}/image", s.withSession(s.handleImage))
	s.mux.HandleFunc("GET /history/{index}/thumbnail", s.withSession(s.handleThumbnail))
	s.mux.HandleFunc("POST /notice/dismiss", s.withSession(s.handleDismissNotice))
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return s.loggingMw.Handler(s.mux)
}

// Start listens until Shutdown is called. It returns nil after a graceful
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("WebUI server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight generations
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down WebUI server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}
	s.logger.Info("WebUI server stopped")
	return nil
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// SetupMode reports whether the server only serves setup instructions.
func (s *Server) SetupMode() bool {
	return s.setup != nil
}

// Sessions returns the session store, nil in setup mode.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}
