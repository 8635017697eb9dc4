// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package log adapts go.uber.org/zap to the pion/logging interfaces.
package log

import (
	"github.com/pion/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapFactory is a logging.LoggerFactory based on go.uber.org/zap.
type ZapFactory struct {
	logger *zap.Logger
}

// NewZapFactory creates a LoggerFactory from a zap.Logger. Every scope gets
// a named child logger.
func NewZapFactory(logger *zap.Logger) *ZapFactory {
	return &ZapFactory{logger: logger}
}

// NewNopFactory creates a LoggerFactory that drops all logs.
func NewNopFactory() *ZapFactory {
	return NewZapFactory(zap.NewNop())
}

// NewDevelopmentFactory creates a console LoggerFactory at the given level,
// e.g. "debug" or "warn".
func NewDevelopmentFactory(level string) (*ZapFactory, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return NewZapFactory(logger), nil
}

// NewLogger implements logging.LoggerFactory.
func (f *ZapFactory) NewLogger(scope string) logging.LeveledLogger {
	return NewZap(f.logger.Named(scope))
}

// Sync flushes buffered log entries.
func (f *ZapFactory) Sync() error {
	return f.logger.Sync()
}

// Zap is a logging.LeveledLogger based on go.uber.org/zap. Trace is
// mapped to zap's Debug level.
type Zap struct {
	logger *zap.SugaredLogger
}

// NewZap creates a LeveledLogger from a zap.Logger.
func NewZap(logger *zap.Logger) *Zap {
	return &Zap{logger: logger.Sugar()}
}

// WithFields creates a new logger with fields.
func (l *Zap) WithFields(keysAndValues ...interface{}) *Zap {
	return &Zap{logger: l.logger.With(keysAndValues...)}
}

// Trace logs a trace message
func (l *Zap) Trace(msg string) { l.logger.Debug(msg) }

// Tracef logs a formatted trace message
func (l *Zap) Tracef(format string, args ...interface{}) { l.logger.Debugf(format, args...) }

// Debug logs a debug message
func (l *Zap) Debug(msg string) { l.logger.Debug(msg) }

// Debugf logs a formatted debug message
func (l *Zap) Debugf(format string, args ...interface{}) { l.logger.Debugf(format, args...) }

// Info logs an info message
func (l *Zap) Info(msg string) { l.logger.Info(msg) }

// Infof logs a formatted info message
func (l *Zap) Infof(format string, args ...interface{}) { l.logger.Infof(format, args...) }

// Warn logs a warning message
func (l *Zap) Warn(msg string) { l.logger.Warn(msg) }

// Warnf logs a formatted warning message
func (l *Zap) Warnf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }

// Error logs an error message
func (l *Zap) Error(msg string) { l.logger.Error(msg) }

// Errorf logs a formatted error message
func (l *Zap) Errorf(format string, args ...interface{}) { l.logger.Errorf(format, args...) }
