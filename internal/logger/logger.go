// Package logger gives the notegraph pipeline a shared verbose channel.
// With --verbose set, the ingest, segmentation, and generation stages
// narrate their progress on stderr; otherwise every call is a no-op so
// command output stays clean for piping.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose toggles verbose narration. Wired to the --verbose flag.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose narration is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects narration away from stderr, mainly so tests can
// capture it.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit writes one prefixed line when verbose is on. Callers hold no lock.
func emit(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug records fine-grained pipeline detail.
func Debug(format string, args ...any) {
	emit("[DEBUG] ", format, args...)
}

// Section marks the start of a pipeline stage, such as segmentation or
// note generation.
func Section(name string) {
	emit("\n=== ", "%s ===", name)
}

// Info records stage progress worth showing at normal verbosity.
func Info(format string, args ...any) {
	emit("[INFO] ", format, args...)
}

// Warn records a degraded step, such as a failed enrichment lookup, that
// did not stop the run.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args...)
}
