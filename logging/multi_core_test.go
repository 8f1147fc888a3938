package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type bufferSyncer struct{ bytes.Buffer }

func (b *bufferSyncer) Sync() error { return nil }

func TestNewMultiCoreWithWriters_TeesToBoth(t *testing.T) {
	var console, file bufferSyncer

	core := NewMultiCoreWithWriters(zapcore.InfoLevel, &console, &file, true)
	logger := zap.New(core)
	logger.Info("image generated", zap.String("style", "Watercolor"))
	_ = logger.Sync()

	if !strings.Contains(console.String(), "image generated") {
		t.Errorf("console output missing message: %q", console.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(file.Bytes()), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v (%q)", err, file.String())
	}
	if entry[FieldMessage] != "image generated" {
		t.Errorf("file message = %v, want %q", entry[FieldMessage], "image generated")
	}
	if entry["style"] != "Watercolor" {
		t.Errorf("file style = %v, want Watercolor", entry["style"])
	}
}

func TestNewMultiCoreWithWriters_ProductionConsoleIsJSON(t *testing.T) {
	var console, file bufferSyncer

	logger := zap.New(NewMultiCoreWithWriters(zapcore.InfoLevel, &console, &file, false))
	logger.Info("started")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(console.Bytes()), &entry); err != nil {
		t.Fatalf("production console output should be JSON: %v (%q)", err, console.String())
	}
}

func TestNewMultiCoreWithWriters_RespectsLevel(t *testing.T) {
	var console, file bufferSyncer

	logger := zap.New(NewMultiCoreWithWriters(zapcore.WarnLevel, &console, &file, false))
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(file.String(), "dropped") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(file.String(), "kept") {
		t.Error("warn entry should be written")
	}
}
