package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent // Disables all logging
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level string. Unrecognized strings parse as Info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "SILENT", "OFF", "NONE":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// Fields represents structured log fields.
type Fields map[string]interface{}

// Format specifies the log output format.
type Format int

const (
	FormatText Format = iota // Human-readable text format
	FormatJSON               // JSON format for log aggregation
)

// Logger provides structured logging with levels. Loggers are cheap to
// derive; With and Named return children sharing the parent's output.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
	fields Fields
	name   string
}

// LoggerOption configures a logger.
type LoggerOption func(*Logger)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) LoggerOption {
	return func(l *Logger) { l.out = w }
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) LoggerOption {
	return func(l *Logger) { l.level = level }
}

// WithFormat sets the output format.
func WithFormat(format Format) LoggerOption {
	return func(l *Logger) { l.format = format }
}

// WithName sets the logger name.
func WithName(name string) LoggerOption {
	return func(l *Logger) { l.name = name }
}

// NewLogger creates a new logger with the given options.
func NewLogger(opts ...LoggerOption) *Logger {
	l := &Logger{
		out:    os.Stderr,
		level:  LevelInfo,
		format: FormatText,
		fields: make(Fields),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// With returns a new logger with additional default fields.
func (l *Logger) With(fields Fields) *Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{out: l.out, level: l.level, format: l.format, fields: merged, name: l.name}
}

// Named returns a new logger with the given name appended to the parent's.
func (l *Logger) Named(name string) *Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return &Logger{out: l.out, level: l.level, format: l.format, fields: l.fields, name: name}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Fields) { l.log(LevelDebug, msg, fields...) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Fields) { l.log(LevelInfo, msg, fields...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Fields) { l.log(LevelWarn, msg, fields...) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Fields) { l.log(LevelError, msg, fields...) }

func (l *Logger) log(level Level, msg string, extraFields ...Fields) {
	if level < l.level {
		return
	}

	all := make(Fields, len(l.fields))
	for k, v := range l.fields {
		all[k] = v
	}
	for _, f := range extraFields {
		for k, v := range f {
			all[k] = v
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.format == FormatJSON {
		l.writeJSON(level, msg, all)
	} else {
		l.writeText(level, msg, all)
	}
}

func (l *Logger) writeJSON(level Level, msg string, fields Fields) {
	entry := make(map[string]interface{}, len(fields)+4)
	entry["time"] = time.Now().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg
	if l.name != "" {
		entry["logger"] = l.name
	}
	for k, v := range fields {
		entry[k] = v
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.out, "LOG_ERROR: %v\n", err)
		return
	}
	l.out.Write(data)
	l.out.Write([]byte{'\n'})
}

func (l *Logger) writeText(level Level, msg string, fields Fields) {
	var b strings.Builder

	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteString(fmt.Sprintf(" %-5s ", level.String()))

	if l.name != "" {
		b.WriteString("[")
		b.WriteString(l.name)
		b.WriteString("] ")
	}

	b.WriteString(msg)

	if len(fields) > 0 {
		// Sort keys for deterministic output
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" %s=%v", k, fields[k]))
		}
	}

	b.WriteString("\n")
	l.out.Write([]byte(b.String()))
}

// --- Global Logger ---

var (
	globalLogger   = NewLogger()
	globalLoggerMu sync.RWMutex
)

// SetLogger sets the global logger.
func SetLogger(l *Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = l
}

// GetLogger returns the global logger.
func GetLogger() *Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	return NewLogger(WithLevel(LevelSilent), WithOutput(io.Discard))
}

// TestLogger returns a logger suitable for testing (debug level, text format).
func TestLogger(w io.Writer) *Logger {
	return NewLogger(WithOutput(w), WithLevel(LevelDebug), WithFormat(FormatText))
}
