// Package logging defines the small structured-logging surface used across
// the engine. Components log through the Logger interface so applications can
// plug in their own backend; the default is a zap production logger.
package logging

// Fields carries structured key/value pairs attached to a log entry.
type Fields map[string]any

// Logger is the logging interface the engine expects.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields applied to every entry.
	WithFields(fields Fields) Logger
}

var global Logger = NewNop()

// SetGlobal replaces the process-wide default logger. A nil logger resets to
// the no-op logger. Not safe to call concurrently with logging.
func SetGlobal(l Logger) {
	if l == nil {
		global = NewNop()
		return
	}
	global = l
}

// L returns the process-wide default logger.
func L() Logger {
	return global
}
