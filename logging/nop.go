package logging

type nopLogger struct{}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...Fields)        {}
func (nopLogger) Info(string, ...Fields)         {}
func (nopLogger) Warn(string, ...Fields)         {}
func (nopLogger) Error(error, string, ...Fields) {}
func (nopLogger) WithFields(Fields) Logger       { return nopLogger{} }
