// Package logger configures the process-wide logrus logger.
package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger with colored status lines for startup output.
type Logger struct {
	*logrus.Logger
	green *color.Color
	red   *color.Color
}

// New creates a text logger at the given level. Unknown levels fall back to
// info.
func New(level string, out io.Writer) *Logger {
	l := &Logger{
		Logger: logrus.New(),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
	}
	if out != nil {
		l.SetOutput(out)
	}

	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006/01/02 15:04:05",
		FullTimestamp:   true,
		DisableSorting:  true,
	})

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	if err != nil && level != "" {
		l.WithField("level", level).Warn("unknown log level, using info")
	}
	return l
}

// Success logs an info line highlighted in green.
func (l *Logger) Success(format string, args ...interface{}) {
	l.Info(l.green.Sprint(fmt.Sprintf(format, args...)))
}

// Failure logs an error line highlighted in red.
func (l *Logger) Failure(err error, format string, args ...interface{}) {
	l.WithError(err).Error(l.red.Sprint(fmt.Sprintf(format, args...)))
}

// IsDebugEnabled returns whether debug logging is enabled
func (l *Logger) IsDebugEnabled() bool {
	return l.IsLevelEnabled(logrus.DebugLevel)
}
