// Package monitoring carries the pluggable diagnostic logger shared by
// the pipeline stages. Stages report progress and data-quality warnings
// through it instead of owning logger state of their own.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or batch callers can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf records a recoverable data-quality problem (a skipped sample, a
// degenerate series). The run continues; the prefix keeps these findable
// in batch logs.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}
