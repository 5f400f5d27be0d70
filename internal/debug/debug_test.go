package debug

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hjs-etl/internal/logger"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(&logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestDebugTiming(t *testing.T) {
	logs := observe(t)

	DebugTiming(true, "companies batch 1")()

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries, want 2", len(entries))
	}
	if entries[0].Message != "Starting: companies batch 1" {
		t.Errorf("first message = %q", entries[0].Message)
	}
	if entries[1].Message != "Completed" || entries[1].ContextMap()["operation"] != "companies batch 1" {
		t.Errorf("second entry = %q %v", entries[1].Message, entries[1].ContextMap())
	}
}

func TestDisabledDebugIsSilent(t *testing.T) {
	logs := observe(t)

	DebugHeader(false)
	DebugOutput(false, "page %d", 1)
	DebugTiming(false, "anything")()
	DebugFooter(false)

	if logs.Len() != 0 {
		t.Errorf("logged %d entries with debugging off", logs.Len())
	}
}
