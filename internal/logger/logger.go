/**
 * @description
 * Structured logger for the Food Prices backend.
 * Info messages go to stdout, warnings and errors to stderr, so platform log
 * collectors don't label routine output as errors.
 *
 * @dependencies
 * - github.com/sirupsen/logrus: leveled, structured logging
 * - gopkg.in/natefinch/lumberjack.v2: optional rotated file sink
 */

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields is an alias so callers don't import logrus directly
type Fields = logrus.Fields

var base *logrus.Logger

func init() {
	base = newLogger(os.Stdout, os.Stderr)
}

func newLogger(stdout, stderr io.Writer) *logrus.Logger {
	l := logrus.New()
	// Entries are written by the split hook; the default output stays silent.
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   true,
	})
	l.AddHook(&splitHook{stdout: stdout, stderr: stderr})
	return l
}

// splitHook routes info/debug to stdout and warn and above to stderr.
type splitHook struct {
	stdout io.Writer
	stderr io.Writer
	file   io.Writer
}

func (h *splitHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *splitHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	out := h.stdout
	if entry.Level <= logrus.WarnLevel {
		out = h.stderr
	}
	if _, err := out.Write(line); err != nil {
		return err
	}
	if h.file != nil {
		_, err = h.file.Write(line)
	}
	return err
}

// Setup applies the configured level and optional file sink.
// An unknown level is reported and the current level is kept.
func Setup(level, file string) error {
	if file != "" {
		for _, hook := range base.Hooks[logrus.InfoLevel] {
			if sh, ok := hook.(*splitHook); ok {
				sh.file = &lumberjack.Logger{
					Filename:   file,
					MaxSize:    100, // megabytes
					MaxBackups: 5,
					MaxAge:     28, // days
				}
			}
		}
	}

	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	base.SetLevel(lvl)
	return nil
}

// WithFields returns an entry carrying structured context
func WithFields(fields Fields) *logrus.Entry {
	return base.WithFields(fields)
}

// Info logs an info message to stdout
func Info(format string, v ...interface{}) {
	base.Info(fmt.Sprintf(format, v...))
}

// Warn logs a warning to stderr
func Warn(format string, v ...interface{}) {
	base.Warn(fmt.Sprintf(format, v...))
}

// Error logs an error message to stderr
func Error(format string, v ...interface{}) {
	base.Error(fmt.Sprintf(format, v...))
}

// Fatal logs an error and exits
func Fatal(format string, v ...interface{}) {
	base.Fatal(fmt.Sprintf(format, v...))
}

// Writer exposes an info-level writer for libraries that expect an io.Writer
func Writer() *io.PipeWriter {
	return base.WriterLevel(logrus.InfoLevel)
}
