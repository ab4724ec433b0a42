package logging

import (
	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a *logrus.Logger to interfaces.Logger, for
// deployments that want adios's request-path log lines to land in the
// same structured pipeline as everything else they run (JSON fields,
// hooks, external sinks) instead of this package's own formatter.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps base, or a freshly constructed JSON-formatted
// logrus.Logger if base is nil.
func NewLogrusLogger(base *logrus.Logger) *LogrusLogger {
	if base == nil {
		base = logrus.New()
		base.SetFormatter(&logrus.JSONFormatter{})
	}
	return &LogrusLogger{entry: logrus.NewEntry(base)}
}

// WithFields returns a logger that attaches fields to every line.
func (l *LogrusLogger) WithFields(fields logrus.Fields) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithFields(fields)}
}

func (l *LogrusLogger) Printf(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *LogrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}
