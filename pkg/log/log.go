// Package log provides the logging interface used throughout the core. It
// wraps logrus so the host embedding the core can supply its own logger (or
// a no-op one) without the core importing a concrete logging framework
// directly into every package.
package log

import "github.com/sirupsen/logrus"

// Logger is the subset of logging behavior the core depends on.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// New returns a Logger backed by logrus, formatted for terminal output
// without timestamps (the host is expected to add its own if needed).
func New() Logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
	}
	return &logrusLogger{l}
}

type logrusLogger struct {
	*logrus.Logger
}

func (l *logrusLogger) Infof(format string, args ...interface{})  { l.Logger.Infof(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.Logger.Errorf(format, args...) }
func (l *logrusLogger) Debugf(format string, args ...interface{}) { l.Logger.Debugf(format, args...) }
