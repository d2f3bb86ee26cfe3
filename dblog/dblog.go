// Package dblog provides the structured logging sink the migration engine
// writes to. It wraps go.uber.org/zap (the logger used elsewhere in the
// retrieved migration tooling this engine is modeled on) with the one level
// zap doesn't have out of the box: Trace, sitting below Debug.
package dblog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel sits one step below zapcore.DebugLevel so the sink still
// speaks a single consistent zapcore.Level scale end to end.
const TraceLevel = zapcore.DebugLevel - 1

// Logger is the {Trace, Debug, Info, Warn, Error, Fatal} sink the engine's
// out-of-scope CLI front-end is expected to wire up and hand to the engine.
type Logger struct {
	z *zap.Logger
}

// New builds a Logger writing to stderr. verbose lowers the threshold to
// Trace; quiet raises it to Error. Neither set, the threshold is Info.
func New(verbose, quiet bool) *Logger {
	level := zapcore.InfoLevel
	switch {
	case verbose:
		level = TraceLevel
	case quiet:
		level = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(cfg)
	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zap.NewAtomicLevelAt(level))
	return &Logger{z: zap.New(core)}
}

// NewNop returns a Logger that discards everything, for tests that don't
// care about log output.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

func (l *Logger) Trace(msg string, fields ...zap.Field) {
	if ce := l.z.Check(TraceLevel, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.z.Fatal(msg, fields...) }

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.z.Sync() }
