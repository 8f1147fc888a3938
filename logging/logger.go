// Package logging provides the structured logger used across imagestudio.
//
// Logger wraps zap and composes:
//   - FileWriter (lumberjack rotation)
//   - MultiCore (console + file tee)
//   - SensitiveFilter (credential redaction)
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the main logging organism. It wraps zap.Logger and redacts
// credentials from every field before it reaches an encoder.
//
// This organism composes:
//   - FileWriter molecule (log file rotation via lumberjack)
//   - MultiCore molecule (tee output to console + file)
//   - SensitiveFilter atom (provider token redaction)
//
// Example:
//
//	logger, err := NewLogger(true, "imagestudio.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("server started", zap.String("addr", "localhost:8501"))
type Logger struct {
	// zap is the underlying structured logger
	zap *zap.Logger

	// sugar is the sugared logger for printf-style logging
	sugar *zap.SugaredLogger

	// isDevelopment selects the coloured console encoder and debug level
	isDevelopment bool

	// logFilePath is the rotated JSON log file, empty for loggers built from a core
	logFilePath string
}

// Options tunes NewLoggerWithOptions. Zero values fall back to the
// development/production defaults.
type Options struct {
	// Level overrides the default level (debug in development, info otherwise)
	Level *zapcore.Level

	// File configures rotation of the log file
	File FileWriterConfig
}

// NewLogger creates a Logger for the given environment.
//
// Development mode writes coloured console output at debug level; production
// writes JSON at info level. Both tee into a rotated JSON log file at
// logFilePath (100MB, 5 backups, 30 days, compressed).
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	return NewLoggerWithOptions(isDevelopment, logFilePath, Options{File: DefaultFileWriterConfig()})
}

// NewLoggerWithOptions creates a Logger with an explicit level and rotation
// policy.
func NewLoggerWithOptions(isDevelopment bool, logFilePath string, opts Options) (*Logger, error) {
	if logFilePath == "" {
		return nil, fmt.Errorf("logging: log file path cannot be empty")
	}

	level := zapcore.InfoLevel
	if isDevelopment {
		level = zapcore.DebugLevel
	}
	if opts.Level != nil {
		level = *opts.Level
	}

	fileWriter := NewFileWriterWithConfig(logFilePath, opts.File)
	core := NewMultiCoreWithWriters(level, zapcore.Lock(zapcore.AddSync(stdoutWriter{})), fileWriter, isDevelopment)

	return newLogger(core, isDevelopment, logFilePath), nil
}

// NewLoggerFromCore wraps an existing zapcore.Core. Tests use it with
// zaptest/observer cores.
func NewLoggerFromCore(core zapcore.Core) *Logger {
	return newLogger(core, false, "")
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return newLogger(zapcore.NewNopCore(), false, "")
}

func newLogger(core zapcore.Core, isDevelopment bool, path string) *Logger {
	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1), // Skip this wrapper layer
	)
	return &Logger{
		zap:           zapLogger,
		sugar:         zapLogger.Sugar(),
		isDevelopment: isDevelopment,
		logFilePath:   path,
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, redactFields(fields)...)
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, redactFields(fields)...)
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, redactFields(fields)...)
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, redactFields(fields)...)
}

// Fatal logs a message at FatalLevel then calls os.Exit(1).
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, redactFields(fields)...)
}

// Infow logs at InfoLevel with loosely-typed key-value pairs.
//
// Example:
//
//	logger.Infow("generation finished", "style", "Watercolor", "duration_ms", 12500)
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, redactKeysAndValues(keysAndValues)...)
}

// Warnw logs at WarnLevel with loosely-typed key-value pairs.
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, redactKeysAndValues(keysAndValues)...)
}

// Errorw logs at ErrorLevel with loosely-typed key-value pairs.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, redactKeysAndValues(keysAndValues)...)
}

// With creates a child logger that adds fields to every entry.
//
// Example:
//
//	sessionLogger := logger.With(zap.String("session", shortID))
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.zap.With(redactFields(fields)...)
	return &Logger{
		zap:           child,
		sugar:         child.Sugar(),
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// Named adds a sub-logger name, e.g. "http", "controller", "inference".
func (l *Logger) Named(name string) *Logger {
	child := l.zap.Named(name)
	return &Logger{
		zap:           child,
		sugar:         child.Sugar(),
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// Zap returns the underlying zap.Logger for libraries that want one.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// IsDevelopment returns true if the logger is configured for development mode.
func (l *Logger) IsDevelopment() bool {
	return l.isDevelopment
}

// LogFilePath returns the path to the log file.
func (l *Logger) LogFilePath() string {
	return l.logFilePath
}

// redactFields filters sensitive data from zap.Field values.
func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}

	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		result[i] = redactField(field)
	}
	return result
}

func redactField(field zap.Field) zap.Field {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder)
	}

	if field.Type == zapcore.StringType {
		if redacted := RedactSensitiveData(field.String); redacted != field.String {
			return zap.String(field.Key, redacted)
		}
	}

	// Errors from inference clients can echo request headers
	if field.Type == zapcore.ErrorType {
		if err, ok := field.Interface.(error); ok && err != nil {
			msg := err.Error()
			if redacted := RedactSensitiveData(msg); redacted != msg {
				return zap.String(field.Key, redacted)
			}
		}
	}

	return field
}

// redactKeysAndValues filters sensitive data from sugared key-value pairs.
func redactKeysAndValues(keysAndValues []interface{}) []interface{} {
	if len(keysAndValues) == 0 {
		return keysAndValues
	}

	result := make([]interface{}, len(keysAndValues))
	copy(result, keysAndValues)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if IsSensitiveField(key) {
			result[i+1] = RedactedPlaceholder
			continue
		}
		if value, ok := result[i+1].(string); ok {
			result[i+1] = RedactSensitiveData(value)
		}
	}

	return result
}
