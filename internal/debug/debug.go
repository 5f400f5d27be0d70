package debug

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hjs-etl/internal/logger"
)

var sink atomic.Pointer[logger.Logger]

// SetLogger routes debug output to l. Until called, output is discarded.
func SetLogger(l *logger.Logger) {
	sink.Store(l)
}

func current() *logger.Logger {
	if l := sink.Load(); l != nil {
		return l
	}
	return logger.Nop()
}

// DebugHeader prints debug header if debugging is enabled
func DebugHeader(enabled bool) {
	if enabled {
		current().Debug("=== DEBUG START ===")
	}
}

// DebugFooter prints debug footer if debugging is enabled
func DebugFooter(enabled bool) {
	if enabled {
		current().Debug("=== DEBUG END ===")
	}
}

// DebugOutput prints debug output if debugging is enabled
func DebugOutput(enabled bool, format string, args ...interface{}) {
	if enabled {
		current().Debug(fmt.Sprintf(format, args...))
	}
}

// DebugTiming measures and logs execution time if debugging is enabled
func DebugTiming(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}

	start := time.Now()
	DebugOutput(enabled, "Starting: %s", operation)

	return func() {
		current().Debug("Completed", "operation", operation, "took", time.Since(start))
	}
}
