// Package xlog wraps logrus with the fields every engine component wants
// pre-populated, and a single toggle (UpdateDebug) mirroring the teacher's
// DEBUG_CDBG-gated pdebug() call sites in the original C++ source.
package xlog

import "github.com/sirupsen/logrus"

// Logger is a thin wrapper around a *logrus.Entry with fixed component
// fields, handed out per subsystem (compactor, partition, cmd) so log lines
// are grep-able by component without every call site repeating WithField.
type Logger struct {
	entry *logrus.Entry
}

// New returns a Logger tagged with component=name. Level defaults to Info;
// call SetDebug(true) to switch to trace-level output.
func New(component string) *Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return &Logger{entry: l.WithField("component", component)}
}

// SetDebug flips this logger between Info and Debug level, matching the
// original's DEBUG_CDBG compile-time switch but at runtime via
// Config.UpdateDebug.
func (lg *Logger) SetDebug(on bool) {
	if on {
		lg.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		lg.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

// With returns a child Logger with an additional field, e.g. k=value for
// the configured K.
func (lg *Logger) With(key string, value interface{}) *Logger {
	return &Logger{entry: lg.entry.WithField(key, value)}
}

func (lg *Logger) Debugf(format string, args ...interface{}) { lg.entry.Debugf(format, args...) }
func (lg *Logger) Infof(format string, args ...interface{})  { lg.entry.Infof(format, args...) }
func (lg *Logger) Warnf(format string, args ...interface{})  { lg.entry.Warnf(format, args...) }
func (lg *Logger) Errorf(format string, args ...interface{}) { lg.entry.Errorf(format, args...) }
