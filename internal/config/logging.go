package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LogLevel represents logging verbosity levels.
type LogLevel int

// Log level constants.
const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelDebug
)

// ParseLogLevel parses a log level string. Unknown values map to error.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LogLevelOff
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelError
	}
}

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelOff:
		return "off"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	if l == LogLevelDebug {
		return slog.LevelDebug
	}
	return slog.LevelError
}

// LogFormat selects the record encoding of the log file.
type LogFormat string

// Log formats.
const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// ParseLogFormat parses a log format string. Anything but "json" is text.
func ParseLogFormat(s string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(s), string(LogFormatJSON)) {
		return LogFormatJSON
	}
	return LogFormatText
}

// logTimeLayout keeps log timestamps short and sortable.
const logTimeLayout = "2006-01-02 15:04:05.000"

// Logger appends leveled slog records to a file. A Logger with no file
// discards everything, so callers never need a nil check.
type Logger struct {
	mu    sync.Mutex
	level LogLevel
	file  *os.File
	sl    *slog.Logger
}

// NewLogger opens filePath for appending and logs records at or above level.
// Nothing is opened when level is off or filePath is empty.
func NewLogger(level LogLevel, filePath string, format LogFormat) (*Logger, error) {
	if level == LogLevelOff || filePath == "" {
		return &Logger{level: level}, nil
	}

	filePath = ExpandHome(filePath)
	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level.slogLevel(), ReplaceAttr: shortTime}
	var h slog.Handler = slog.NewTextHandler(f, opts)
	if format == LogFormatJSON {
		h = slog.NewJSONHandler(f, opts)
	}

	return &Logger{level: level, file: f, sl: slog.New(h)}, nil
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return &Logger{level: LogLevelOff}
}

// Close closes the log file. Later records are dropped.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sl = nil
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Level returns the configured log level.
func (l *Logger) Level() LogLevel {
	return l.level
}

// Debug logs a formatted debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.emit(LogLevelDebug, fmt.Sprintf(format, args...))
}

// Error logs a formatted error message.
func (l *Logger) Error(format string, args ...any) {
	l.emit(LogLevelError, fmt.Sprintf(format, args...))
}

// DebugAttrs logs a debug record with structured attributes.
func (l *Logger) DebugAttrs(msg string, attrs ...slog.Attr) {
	l.emit(LogLevelDebug, msg, attrs...)
}

// ErrorAttrs logs an error record with structured attributes.
func (l *Logger) ErrorAttrs(msg string, attrs ...slog.Attr) {
	l.emit(LogLevelError, msg, attrs...)
}

func (l *Logger) emit(level LogLevel, msg string, attrs ...slog.Attr) {
	if level > l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sl == nil {
		return
	}
	l.sl.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

func shortTime(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.String(slog.TimeKey, a.Value.Time().Format(logTimeLayout))
	}
	return a
}
