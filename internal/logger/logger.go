// Package logger wraps logrus with component-tagged entries and optional
// rotated file output.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields is a set of structured log fields.
type Fields map[string]any

// Log wraps logrus.Logger.
type Log struct {
	*logrus.Logger
}

// Entry wraps logrus.Entry.
type Entry struct {
	*logrus.Entry
}

var global = New()

// L returns the process-wide logger.
func L() *Log { return global }

// New builds a logger at info level writing text to stderr. FINDATA_LOG_LEVEL
// overrides the level.
func New() *Log {
	l := &Log{Logger: logrus.New()}
	l.Logger.SetOutput(os.Stderr)
	l.Logger.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("FINDATA_LOG_LEVEL")); err == nil {
		l.Logger.SetLevel(lvl)
	}
	l.Logger.SetFormatter(textFormatter())
	return l
}

// Options configures a Log.
type Options struct {
	Level      string
	Format     string // "text" or "json"
	Output     string // "stderr", "stdout" or a file path
	MaxAgeDays int    // file rotation age; 0 appends to a plain file
	Caller     bool
}

// Configure applies opts. FINDATA_LOG_LEVEL, when set, wins over opts.Level.
func (l *Log) Configure(opts Options) error {
	level := opts.Level
	if env := os.Getenv("FINDATA_LOG_LEVEL"); env != "" {
		level = env
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	l.Logger.SetLevel(lvl)

	l.Logger.SetReportCaller(opts.Caller)
	if opts.Caller {
		l.Logger.AddHook(&callerHook{})
	}

	switch opts.Format {
	case "json":
		l.Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: callerPrettyfier,
		})
	case "text", "":
		l.Logger.SetFormatter(textFormatter())
	default:
		return fmt.Errorf("invalid log format %q", opts.Format)
	}

	w, err := openOutput(opts.Output, opts.MaxAgeDays)
	if err != nil {
		return err
	}
	l.Logger.SetOutput(w)
	return nil
}

func openOutput(output string, maxAge int) (io.Writer, error) {
	switch output {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	if maxAge > 0 {
		return &lumberjack.Logger{
			Filename: output,
			MaxAge:   maxAge,
			MaxSize:  100,
			Compress: true,
		}, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", output, err)
	}
	return f, nil
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  time.RFC3339,
		CallerPrettyfier: callerPrettyfier,
	}
}

func callerPrettyfier(f *runtime.Frame) (string, string) {
	return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

// WithComponent tags entries with the emitting component.
func (l *Log) WithComponent(component string) *Entry {
	return &Entry{Entry: l.Logger.WithField("component", component)}
}

// WithFields adds structured fields.
func (l *Log) WithFields(fields Fields) *Entry {
	return &Entry{Entry: l.Logger.WithFields(logrus.Fields(fields))}
}

// WithError attaches err.
func (l *Log) WithError(err error) *Entry {
	return &Entry{Entry: l.Logger.WithError(err)}
}

func (e *Entry) WithComponent(component string) *Entry {
	return &Entry{Entry: e.Entry.WithField("component", component)}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{Entry: e.Entry.WithFields(logrus.Fields(fields))}
}

func (e *Entry) WithField(key string, value any) *Entry {
	return &Entry{Entry: e.Entry.WithField(key, value)}
}

func (e *Entry) WithError(err error) *Entry {
	return &Entry{Entry: e.Entry.WithError(err)}
}

// Timed logs operation at debug level with its duration.
func (e *Entry) Timed(operation string, start time.Time) {
	e.WithFields(Fields{
		"operation":   operation,
		"duration_ms": float64(time.Since(start).Nanoseconds()) / 1e6,
	}).Debug("done")
}
