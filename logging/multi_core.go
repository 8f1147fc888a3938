package logging

import (
	"os"

	"go.uber.org/zap/zapcore"
)

// stdoutWriter forwards to os.Stdout and treats Sync as a no-op; syncing a
// terminal returns EINVAL on Linux.
type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdoutWriter) Sync() error                 { return nil }

// NewMultiCoreWithWriters creates a zapcore.Core that tees output to a
// console writer and a file writer.
//
// This is a molecule that composes the encoder config atoms from
// encoder_config.go. The file side always uses the JSON encoder. The console
// side is human-readable with colours when isDev is true and JSON otherwise.
//
// Example:
//
//	var buf bytes.Buffer
//	core := NewMultiCoreWithWriters(zapcore.DebugLevel, zapcore.AddSync(&buf), NewFileWriter("app.log"), true)
//	logger := zap.New(core)
func NewMultiCoreWithWriters(level zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, isDev bool) zapcore.Core {
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(NewEncoderConfig()),
		fileWriter,
		level,
	)

	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}

	consoleCore := zapcore.NewCore(
		consoleEncoder,
		consoleWriter,
		level,
	)

	return zapcore.NewTee(consoleCore, fileCore)
}
