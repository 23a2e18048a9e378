// Package log provides the engine-wide structured logger.
package log

import "sync"

// Logger is the logging contract used across the engine. It is a thin
// abstraction over the concrete backend so packages never import it directly.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	once   sync.Once
	logger Logger
)

// GetLogger returns the process-wide logger. Before Init it returns a
// default logger writing to stderr at info level.
func GetLogger() Logger {
	if logger == nil {
		return defaultLogger()
	}
	return logger
}

// Init configures the process-wide logger. Only the first call takes effect.
func Init(cfg Config) {
	once.Do(func() {
		l, err := newLogrusLogger(cfg)
		if err != nil {
			panic(err)
		}
		logger = l
	})
}
