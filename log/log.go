// Package log defines the narrow logging interface the capture core calls
// through. Library code never depends on a concrete logging library
// directly, so a tray host can plug in whatever it already uses (see
// hdrcap/log/zapadapter for a zap-backed implementation) without the core
// dragging in an opinionated stack for hosts that don't want it.
package log

import (
	"fmt"
	"os"
)

// Logger is the subset of leveled logging the core needs: warnings for
// non-fatal degradation (fallback paths, skipped outputs) and errors for
// operations that abort a capture cycle. Debug is for the geometry/timing
// detail useful when diagnosing a specific monitor's HDR behavior.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Nop discards everything. Useful in tests and as an explicit opt-out.
type Nop struct{}

func (Nop) Debugf(string, ...interface{}) {}
func (Nop) Warnf(string, ...interface{})  {}
func (Nop) Errorf(string, ...interface{}) {}

// stderrLogger is the package default: plain, unstructured lines to
// os.Stderr, the same density the teacher's example command uses for its
// own diagnostics.
type stderrLogger struct{}

func (stderrLogger) Debugf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "DEBUG "+format+"\n", args...)
}

func (stderrLogger) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "WARN "+format+"\n", args...)
}

func (stderrLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ERROR "+format+"\n", args...)
}

// Default is the Logger every package in the core falls back to when the
// host doesn't supply one.
var Default Logger = stderrLogger{}
