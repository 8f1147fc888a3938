package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"imagestudio/catalog"
	"imagestudio/core"
	"imagestudio/core/validation"
	"imagestudio/db"
	"imagestudio/imagegen"
	"imagestudio/logging"
	"imagestudio/shutdown"
	"imagestudio/studio"
	"imagestudio/webui"
)

// envFile is loaded from the working directory when present.
const envFile = ".env"

// auditCleanupInterval is how often expired audit rows are purged.
const auditCleanupInterval = 6 * time.Hour

func main() {
	if HandleServiceCommand(os.Args) {
		return
	}

	handled, err := RunAsService()
	if handled {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(core.ExitCodeError)
		}
		return
	}

	os.Exit(run(nil))
}

// run starts the studio and blocks until a signal arrives or stop is closed.
// It returns the process exit code.
func run(stop <-chan struct{}) int {
	// Load .env file if it exists
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Warning: failed to read %s: %v\n", envFile, err)
	}

	cfg, err := core.LoadConfig()
	if err != nil {
		if cerr, ok := core.IsConfigError(err); ok {
			validation.PrintSetupInstructions(os.Stderr, cerr)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		}
		return core.ExitCodeError
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		if cerr, ok := core.IsConfigError(err); ok {
			validation.PrintSetupInstructions(os.Stderr, cerr)
		}
		logger.Error("Failed to load catalog", zap.Error(err))
		return core.ExitCodeError
	}

	result := validation.NewStartupSuite(cfg, cat, envFile).Validate()
	logStartupResult(logger, result)

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.ModelName),
		zap.String("addr", cfg.Addr()),
		zap.Duration("inference_timeout", cfg.InferenceTimeout),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("history_limit", cfg.HistoryLimit),
		zap.Int("generate_rate_per_minute", cfg.GenerateRatePerMinute),
		zap.Bool("audit", cfg.AuditEnabled()),
		zap.Bool("dev_mode", cfg.DevMode),
		zap.String("version", core.Version),
	)

	manager := shutdown.NewManager(logger, shutdown.WithTimeout(cfg.ShutdownTimeout))
	manager.Start()
	if stop != nil {
		go func() {
			select {
			case <-stop:
				manager.Trigger()
			case <-manager.Context().Done():
			}
		}()
	}

	code := serve(manager, cfg, cat, logger)

	// Handlers registered before an early failure still run here
	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		code = core.ExitCodeError
	}
	logger.Info("Goodbye!", zap.String("exit", core.ExitCodeName(code)))
	return code
}

// serve builds the server for cfg and runs it until the manager's context is
// cancelled. A missing credential starts the setup-only server.
func serve(manager *shutdown.Manager, cfg *core.Config, cat *catalog.Catalog, logger *logging.Logger) int {
	ctx := manager.Context()
	serverCfg := serverConfig(cfg)

	var (
		srv      *webui.Server
		database *db.Database
		err      error
	)

	if cerr := cfg.CredentialError(); cerr != nil {
		validation.PrintSetupInstructions(os.Stdout, cerr)
		logger.Warn("Starting in setup mode", zap.String("variable", cfg.CredentialVariable()))
		srv, err = webui.NewSetupServer(serverCfg, cerr, logger)
		if err != nil {
			logger.Error("Failed to create server", zap.Error(err))
			return core.ExitCodeError
		}
	} else {
		provider, err := imagegen.NewProviderFromConfig(ctx, cfg)
		if err != nil {
			logger.Error("Failed to create inference provider", zap.Error(err))
			return core.ExitCodeError
		}

		opts := studio.Options{
			HistoryLimit:  cfg.HistoryLimit,
			RatePerMinute: cfg.GenerateRatePerMinute,
			Burst:         cfg.GenerateBurst,
		}

		if cfg.AuditEnabled() {
			database, err = db.Open(ctx, cfg.AuditDBPath)
			if err != nil {
				logger.Error("Failed to open audit database", zap.String("path", cfg.AuditDBPath), zap.Error(err))
				return core.ExitCodeError
			}
			recorder := db.NewAuditRecorder(db.NewRepository(database), logger)
			opts.Recorder = recorder

			manager.Register("audit-recorder", 10, func(context.Context) error {
				recorder.Close(cfg.ShutdownTimeout / 2)
				return nil
			})
			manager.Register("audit-db", 20, func(context.Context) error {
				return database.Close()
			})
		}

		controller, err := studio.NewController(cat, provider, logger, opts)
		if err != nil {
			logger.Error("Failed to create studio", zap.Error(err))
			return core.ExitCodeError
		}

		srv, err = webui.NewServer(serverCfg, controller, logger)
		if err != nil {
			logger.Error("Failed to create server", zap.Error(err))
			return core.ExitCodeError
		}
	}

	manager.Register("http", 0, srv.Shutdown)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	if database != nil && cfg.AuditRetentionDays > 0 {
		g.Go(func() error {
			database.RunCleanupScheduler(gctx, cfg.AuditRetentionDays, auditCleanupInterval, func(res db.CleanupResult, err error) {
				if err != nil {
					logger.Warn("Audit cleanup failed", zap.Error(err))
					return
				}
				if res.Deleted > 0 {
					logger.Info("Audit cleanup", zap.Int64("deleted", res.Deleted), zap.Duration("took", res.Duration))
				}
			})
			return nil
		})
	}

	fmt.Printf("\n  Image Studio is running at http://%s\n\n", srv.Addr())

	// gctx also ends when Start fails to listen
	<-gctx.Done()

	code := core.ExitCodeSuccess
	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		code = core.ExitCodeError
	}
	if err := g.Wait(); err != nil {
		logger.Error("Server failed", zap.Error(err))
		code = core.ExitCodeError
	}
	return code
}

func newLogger(cfg *core.Config) (*logging.Logger, error) {
	defaultLevel := zapcore.InfoLevel
	if cfg.DevMode {
		defaultLevel = zapcore.DebugLevel
	}
	level := logging.ParseLevel(cfg.LogLevel, defaultLevel)
	return logging.NewLoggerWithOptions(cfg.DevMode, cfg.LogFile, logging.Options{
		Level: &level,
		File:  logging.DefaultFileWriterConfig(),
	})
}

func serverConfig(cfg *core.Config) webui.ServerConfig {
	sc := webui.DefaultServerConfig()
	sc.Host = cfg.Host
	sc.Port = cfg.Port
	sc.SessionTTL = cfg.SessionTTL
	if minWrite := cfg.InferenceTimeout + 30*time.Second; sc.WriteTimeout < minWrite {
		sc.WriteTimeout = minWrite
	}
	return sc
}

// logStartupResult records the startup checks. Failures never stop the
// process: a missing credential is served as the setup page.
func logStartupResult(logger *logging.Logger, result validation.SuiteResult) {
	for _, step := range result.Steps {
		switch step.Status {
		case validation.StepFailed:
			logger.Warn("Startup check failed",
				zap.String("check", step.Name),
				zap.String("message", step.Message),
				zap.Error(step.Error),
			)
		case validation.StepWarning:
			logger.Warn("Startup check warning",
				zap.String("check", step.Name),
				zap.String("message", step.Message),
				zap.Error(step.Error),
			)
		}
	}
	logger.Info(result.Summary())
}
