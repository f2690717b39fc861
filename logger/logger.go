package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// LogLevel defines the severity of the log
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLevel maps a level name (silent, error, warn, info) to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "off":
		return LogLevelSilent, nil
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "info", "":
		return LogLevelInfo, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LogFormat defines the output format of the log
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger is the interface for logging SQL and internal messages
type Logger interface {
	SetLevel(level LogLevel)
	SetFormat(format LogFormat)
	SetOutput(w io.Writer)
	WithFields(fields map[string]any) Logger
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SQL(sql string, duration time.Duration, args ...any)
}

// output is shared between a logger and the loggers derived from it.
type output struct {
	mu     sync.Mutex
	level  LogLevel
	format LogFormat
	writer io.Writer
}

// stdLogger is the default implementation of Logger
type stdLogger struct {
	out    *output
	fields map[string]any
}

// NewStdLogger creates a new standard logger writing text to stdout at info level.
func NewStdLogger() Logger {
	return &stdLogger{
		out: &output{
			level:  LogLevelInfo,
			format: LogFormatText,
			writer: os.Stdout,
		},
		fields: make(map[string]any),
	}
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() Logger {
	l := NewStdLogger()
	l.SetLevel(LogLevelSilent)
	l.SetOutput(io.Discard)
	return l
}

func (l *stdLogger) SetLevel(level LogLevel) {
	l.out.mu.Lock()
	l.out.level = level
	l.out.mu.Unlock()
}

func (l *stdLogger) SetFormat(format LogFormat) {
	l.out.mu.Lock()
	l.out.format = format
	l.out.mu.Unlock()
}

func (l *stdLogger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	l.out.writer = w
	l.out.mu.Unlock()
}

func (l *stdLogger) WithFields(fields map[string]any) Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &stdLogger{out: l.out, fields: merged}
}

func (l *stdLogger) Info(format string, args ...any) {
	l.log(LogLevelInfo, "INFO", fmt.Sprintf(format, args...), nil)
}

func (l *stdLogger) Warn(format string, args ...any) {
	l.log(LogLevelWarn, "WARN", fmt.Sprintf(format, args...), nil)
}

func (l *stdLogger) Error(format string, args ...any) {
	l.log(LogLevelError, "ERROR", fmt.Sprintf(format, args...), nil)
}

func (l *stdLogger) SQL(sql string, duration time.Duration, args ...any) {
	l.log(LogLevelInfo, "SQL", "", []any{"sql", sql, "duration", duration.String(), "args", fmt.Sprint([]any(args))})
}

func (l *stdLogger) log(min LogLevel, level, msg string, attrs []any) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.level < min || l.out.writer == nil {
		return
	}

	if l.out.format == LogFormatJSON {
		l.logJSON(level, msg, attrs)
		return
	}

	if level == "SQL" {
		msg = fmt.Sprintf("%s[%v] %s | args: %v%s", sqlColor(attrs[1].(string)), attrs[3], attrs[1], attrs[5], ansiReset)
	}

	fieldStr := ""
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, l.fields[k])
		}
		fieldStr = " " + strings.Join(parts, " ")
	}
	fmt.Fprintf(l.out.writer, "[MINORM] %s %s: %s%s\n", time.Now().Format("2006-01-02 15:04:05"), level, msg, fieldStr)
}

// logJSON emits one JSON object per line with time, level and msg keys.
func (l *stdLogger) logJSON(level, msg string, attrs []any) {
	h := slog.NewJSONHandler(l.out.writer, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.LevelKey {
				return slog.String(slog.LevelKey, level)
			}
			return a
		},
	})
	r := slog.NewRecord(time.Now(), slog.LevelInfo, msg, 0)
	for k, v := range l.fields {
		r.AddAttrs(slog.Any(k, v))
	}
	r.Add(attrs...)
	_ = h.Handle(context.Background(), r)
}

func sqlColor(sqlStr string) string {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlStr)), "SELECT") {
		return ansiYellow
	}
	return ansiCyan
}
