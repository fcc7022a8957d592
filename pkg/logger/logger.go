package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the logging interface injected into every component. The decoder
// and composer never reach for a global logger; callers pass one in so the
// core transformations stay usable without ambient logging context.
type Logger interface {
	Name() string

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, values ...interface{})
	Infof(format string, values ...interface{})
	Warnf(format string, values ...interface{})
	Errorf(format string, values ...interface{})

	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type logger struct {
	*zap.SugaredLogger
	name string
}

func (l *logger) Name() string { return l.name }

// New returns a production JSON logger.
func New() (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &logger{SugaredLogger: z.Sugar()}, nil
}

// Test returns a logger that writes through t.Log.
func Test(t testing.TB) Logger {
	return &logger{SugaredLogger: zaptest.NewLogger(t).Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Named returns a copy of lggr scoped with the given name.
func Named(lggr Logger, name string) Logger {
	l, ok := lggr.(*logger)
	if !ok {
		return lggr
	}
	scoped := name
	if l.name != "" {
		scoped = l.name + "." + name
	}
	return &logger{SugaredLogger: l.SugaredLogger.Named(name), name: scoped}
}

// With returns a copy of lggr carrying the additional key/value context.
func With(lggr Logger, keysAndValues ...interface{}) Logger {
	l, ok := lggr.(*logger)
	if !ok {
		return lggr
	}
	return &logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...), name: l.name}
}
