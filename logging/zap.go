package logging

import (
	"go.uber.org/zap"
)

type zapLogger struct {
	l      *zap.Logger
	preset Fields
}

// New returns a zap-backed production logger.
func New() (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &zapLogger{l: l}, nil
}

// NewZap wraps an existing zap logger.
func NewZap(l *zap.Logger) Logger {
	if l == nil {
		return NewNop()
	}
	return &zapLogger{l: l}
}

func (z *zapLogger) Debug(msg string, fields ...Fields) {
	z.l.Debug(msg, z.zapFields(nil, fields)...)
}

func (z *zapLogger) Info(msg string, fields ...Fields) {
	z.l.Info(msg, z.zapFields(nil, fields)...)
}

func (z *zapLogger) Warn(msg string, fields ...Fields) {
	z.l.Warn(msg, z.zapFields(nil, fields)...)
}

func (z *zapLogger) Error(err error, msg string, fields ...Fields) {
	z.l.Error(msg, z.zapFields(err, fields)...)
}

func (z *zapLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(z.preset)+len(fields))
	for k, v := range z.preset {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &zapLogger{l: z.l, preset: merged}
}

func (z *zapLogger) zapFields(err error, fields []Fields) []zap.Field {
	out := make([]zap.Field, 0, len(z.preset)+len(fields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}

	for k, v := range z.preset {
		out = append(out, zap.Any(k, v))
	}

	for _, f := range fields {
		for k, v := range f {
			out = append(out, zap.Any(k, v))
		}
	}

	return out
}
