package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"imagestudio/core"
	"imagestudio/logging"
)

// DefaultTimeout bounds the whole cleanup sequence.
const DefaultTimeout = 30 * time.Second

// Manager coordinates graceful shutdown. The first SIGINT/SIGTERM (or a call
// to Trigger) cancels Context; a second signal exits the process at once.
// Shutdown then runs the registered handlers within the timeout.
//
// Usage:
//
//	manager := shutdown.NewManager(logger, shutdown.WithTimeout(cfg.ShutdownTimeout))
//	manager.Register("http", 0, server.Shutdown)
//	manager.Register("audit-db", 20, func(context.Context) error { return database.Close() })
//	manager.Start()
//	<-manager.Context().Done()
//	err := manager.Shutdown()
type Manager struct {
	logger   *logging.Logger
	timeout  time.Duration
	registry *Registry
	exit     func(code int)

	ctx    context.Context
	cancel context.CancelFunc

	startOnce    sync.Once
	shutdownOnce sync.Once
	sigChan      chan os.Signal
	signals      atomic.Int32
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout sets the cleanup timeout. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithExit replaces os.Exit for the forced exit on a second signal.
func WithExit(exit func(code int)) Option {
	return func(m *Manager) {
		m.exit = exit
	}
}

// NewManager creates a Manager.
func NewManager(logger *logging.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:   logger.Named("shutdown"),
		timeout:  DefaultTimeout,
		registry: NewRegistry(),
		exit:     os.Exit,
		ctx:      ctx,
		cancel:   cancel,
		sigChan:  make(chan os.Signal, 2),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context is cancelled when shutdown has been requested.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup handler; lower priority runs first.
func (m *Manager) Register(name string, priority int, fn Func) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("Registered shutdown handler",
		zap.String("name", name),
		zap.Int("priority", priority),
	)
}

// Start listens for SIGINT and SIGTERM. Calling Start again is a no-op.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
		go m.watch()
	})
}

func (m *Manager) watch() {
	for {
		select {
		case sig := <-m.sigChan:
			m.handleSignal(sig)
		case <-m.ctx.Done():
			// Keep listening so a second signal can still force the exit
			for sig := range m.sigChan {
				m.handleSignal(sig)
			}
			return
		}
	}
}

func (m *Manager) handleSignal(sig os.Signal) {
	if m.signals.Add(1) == 1 {
		m.logger.Info("Received shutdown signal, initiating graceful shutdown",
			zap.String("signal", sig.String()),
		)
		m.cancel()
		return
	}
	m.logger.Warn("Received second signal, forcing immediate shutdown")
	_ = m.logger.Sync()
	m.exit(core.ExitCodeForSignal(sig))
}

// Trigger requests shutdown without a signal, as a service stop does.
func (m *Manager) Trigger() {
	m.cancel()
}

// Shutdown runs the registered handlers once, bounded by the timeout.
func (m *Manager) Shutdown() error {
	var err error
	m.shutdownOnce.Do(func() {
		m.cancel()
		err = m.run()
	})
	return err
}

func (m *Manager) run() error {
	start := time.Now()
	m.logger.Info("Initiating graceful shutdown",
		zap.Duration("timeout", m.timeout),
		zap.Strings("handlers", m.registry.Names()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	err := m.registry.Run(ctx, func(name string, took time.Duration, err error) {
		if err != nil {
			m.logger.Error("Cleanup handler failed",
				zap.String("name", name),
				zap.Duration("duration", took),
				zap.Error(err),
			)
			return
		}
		m.logger.Debug("Cleanup handler finished",
			zap.String("name", name),
			zap.Duration("duration", took),
		)
	})

	if err != nil {
		m.logger.Error("Shutdown completed with errors",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}
	m.logger.Info("Graceful shutdown completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// RegisteredHandlers returns handler names in execution order.
func (m *Manager) RegisteredHandlers() []string {
	return m.registry.Names()
}
