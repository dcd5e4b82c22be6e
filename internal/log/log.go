// Package log provides the structured logger used across worldgraph.
package log

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugw(string, ...any)
	Infow(string, ...any)
	Warnw(string, ...any)
	Errorw(string, ...any)

	Named(string) Logger
}

type Log struct {
	zapLogger *zap.SugaredLogger
}

// *Log implements Logger
var _ Logger = &Log{}

// Levels lists the accepted verbosity names.
var Levels = []string{"debug", "info", "warn", "error"}

// ParseLevel resolves a case-insensitive verbosity name.
func ParseLevel(verbosity string) (zapcore.Level, error) {
	v := strings.ToLower(strings.TrimSpace(verbosity))
	for _, l := range Levels {
		if v == l {
			return zapcore.ParseLevel(v)
		}
	}
	return zapcore.InfoLevel, fmt.Errorf("cannot parse verbosity: %s", verbosity)
}

// NewProductionLogger builds a console logger writing to stderr.
// Timestamps are UTC ISO-8601.
func NewProductionLogger(verbosity string) (*Log, error) {
	level, err := ParseLevel(verbosity)
	if err != nil {
		return nil, err
	}

	logConfig := zap.NewProductionConfig()
	logConfig.Encoding = "console"
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	logConfig.Level.SetLevel(level)
	logConfig.Sampling = nil

	logger, err := logConfig.Build()
	if err != nil {
		return nil, err
	}
	return NewLogger(logger.Sugar()), nil
}

func NewLogger(zapLogger *zap.SugaredLogger) *Log {
	return &Log{
		zapLogger: zapLogger,
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Log {
	return NewLogger(zap.NewNop().Sugar())
}

func (l *Log) Debugw(msg string, args ...any) {
	l.zapLogger.Debugw(msg, args...)
}

func (l *Log) Infow(msg string, args ...any) {
	l.zapLogger.Infow(msg, args...)
}

func (l *Log) Warnw(msg string, args ...any) {
	l.zapLogger.Warnw(msg, args...)
}

func (l *Log) Errorw(msg string, args ...any) {
	l.zapLogger.Errorw(msg, args...)
}

func (l *Log) Named(name string) Logger {
	return NewLogger(l.zapLogger.Named(name))
}

// Sync flushes buffered entries.
func (l *Log) Sync() error {
	return l.zapLogger.Sync()
}
