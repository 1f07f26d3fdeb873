// Package monitoring provides the package-level diagnostic logger shared by
// the flight stack.
package monitoring

import "log"

// Logf is the diagnostic logger. It defaults to log.Printf but may be
// replaced with SetLogger so tests or embedding binaries can redirect or
// mute output.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Scoped returns a logger function that prefixes every message with the
// given component name. The returned function follows Logf at call time, so
// SetLogger affects scoped loggers too.
func Scoped(component string) func(format string, v ...interface{}) {
	prefix := "[" + component + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
