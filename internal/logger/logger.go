// Package logger is the screener's lightweight leveled logging facade
// over the standard library log package.
//
// Verbosity levels, in increasing order:
//
//	Error < Info < Debug < Trace
//
// Verbosity is set once at startup (typically from a CLI flag) and every
// call site just picks the level:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("scanning %s", ticker)
//	logger.Debugf("spot=%.2f rows=%d", spot, len(rows))
package logger

import (
	"io"
	"log"
	"os"
)

// Level represents a logging verbosity level. Higher values mean more
// verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs per-row diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

// current holds the active verbosity level. Only messages with
// level <= current are logged.
var current Level = Info

func init() {
	// Logs go to stderr so that report output on stdout stays pipeable.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// SetVerbosity sets the global logging verbosity. Typically called once
// during startup after parsing CLI flags.
func SetVerbosity(v int) {
	current = Level(v)
}

// SetOutput redirects log output, mainly so tests can capture or
// silence it.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func logf(l Level, prefix, format string, args ...any) {
	if current >= l {
		log.Printf(prefix+format, args...)
	}
}

// Errorf logs a failure that requires attention.
func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

// Infof logs a major lifecycle event.
func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

// Debugf logs diagnostic output useful during development.
func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces. Use sparingly.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
