// Package dcontext carries a structured logger through a
// context.Context, the way every observable action in this registry
// (blob writes, tag moves, renders) logs: pull a logger out of the
// context in hand rather than reach for a package-level global.
package dcontext

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger   *logrus.Entry = logrus.StandardLogger().WithField("go.version", runtime.Version())
	defaultLoggerMu sync.RWMutex
)

// Logger provides a leveled-logging interface.
type Logger interface {
	Print(args ...any)
	Printf(format string, args ...any)
	Println(args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Fatalln(args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)
	Debugln(args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)
	Errorln(args ...any)

	Info(args ...any)
	Infof(format string, args ...any)
	Infoln(args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)
	Warnln(args ...any)

	WithError(err error) *logrus.Entry
	WithField(key string, value any) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
}

type loggerKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithValues returns a context whose logger (from ctx, or the
// default) has the given fields attached.
func WithValues(ctx context.Context, fields map[string]any) context.Context {
	return WithLogger(ctx, GetLogger(ctx).(*logrus.Entry).WithFields(fields))
}

// GetLogger returns the logger carried by ctx, or a logger derived
// from the package default if none was attached or the attached one
// is not a *logrus.Entry. If keys are given,
// their values are resolved against ctx and attached as fields.
func GetLogger(ctx context.Context, keys ...any) Logger {
	var logger *logrus.Entry

	if v := ctx.Value(loggerKey{}); v != nil {
		if lgr, ok := v.(*logrus.Entry); ok {
			logger = lgr
		}
	}

	if logger == nil {
		defaultLoggerMu.RLock()
		logger = defaultLogger
		defaultLoggerMu.RUnlock()
	}

	fields := logrus.Fields{}
	for _, key := range keys {
		if v := ctx.Value(key); v != nil {
			fields[fmt.Sprint(key)] = v
		}
	}
	return logger.WithFields(fields)
}

// SetDefaultLogger replaces the package default logger used when no
// logger has been attached to a context. A logger that is not a
// *logrus.Entry is ignored and the current default is kept.
func SetDefaultLogger(logger Logger) {
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		return
	}
	defaultLoggerMu.Lock()
	defaultLogger = entry
	defaultLoggerMu.Unlock()
}
