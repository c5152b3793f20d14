package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// jsonMarshal is a variable for dependency injection in tests.
var jsonMarshal = json.Marshal

// LogEntry represents a single JSON log entry.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// poxEntry wraps an exchange record so outbound and inbound
// lines can share one file.
type poxEntry struct {
	Direction string `json:"direction"`
	Entry     any    `json:"entry"`
}

// LoggerConfig configures the JSONLogger.
type LoggerConfig struct {
	// OutputPath is the main log file. Empty means stdout.
	OutputPath string
	// ExchangeLogPath receives one line per outcome request and
	// reply. Empty disables exchange logging.
	ExchangeLogPath string
	Level           LogLevel
	Fields          map[string]any
}

// JSONLogger implements Logger with JSON Lines output.
type JSONLogger struct {
	mu       *sync.Mutex
	output   io.Writer
	exchange io.Writer
	level    LogLevel
	fields   map[string]any
	closed   *bool
}

// NewJSONLogger creates a new JSON logger.
func NewJSONLogger(config LoggerConfig) (*JSONLogger, error) {
	closed := false
	logger := &JSONLogger{
		mu:     &sync.Mutex{},
		output: os.Stdout,
		level:  config.Level,
		fields: make(map[string]any, len(config.Fields)),
		closed: &closed,
	}
	for k, v := range config.Fields {
		logger.fields[k] = v
	}

	if config.OutputPath != "" {
		file, err := openAppend(config.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.output = file
	}

	if config.ExchangeLogPath != "" {
		file, err := openAppend(config.ExchangeLogPath)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to open exchange log: %w", err,
			)
		}
		logger.exchange = file
	}

	return logger, nil
}

// NewJSONWriterLogger writes JSON lines to w. It is mainly used
// by tests and by callers that manage their own sinks.
func NewJSONWriterLogger(w io.Writer, level LogLevel) *JSONLogger {
	closed := false
	return &JSONLogger{
		mu:     &sync.Mutex{},
		output: w,
		level:  level,
		fields: make(map[string]any),
		closed: &closed,
	}
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func (l *JSONLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if *l.closed {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Fields:    make(map[string]any, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}

	data, err := jsonMarshal(entry)
	if err != nil {
		return
	}
	fmt.Fprintln(l.output, string(data))
}

// Info logs an informational message.
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Debug logs a debug message.
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// WithFields returns a logger sharing this logger's sinks with
// additional default fields.
func (l *JSONLogger) WithFields(fields ...Field) Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	child := *l
	child.fields = merged
	return &child
}

// LogOutboundPOX appends the outgoing request to the exchange log.
func (l *JSONLogger) LogOutboundPOX(entry OutboundPOXLog) {
	l.writeExchange("outbound", entry)
}

// LogInboundPOX appends the reply to the exchange log.
func (l *JSONLogger) LogInboundPOX(entry InboundPOXLog) {
	l.writeExchange("inbound", entry)
}

func (l *JSONLogger) writeExchange(direction string, entry any) {
	if l.exchange == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if *l.closed {
		return
	}

	data, err := jsonMarshal(poxEntry{Direction: direction, Entry: entry})
	if err != nil {
		return
	}
	fmt.Fprintln(l.exchange, string(data))
}

// Close closes file sinks. Loggers derived through WithFields
// share the closed state.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if *l.closed {
		return nil
	}
	*l.closed = true

	var firstErr error
	for _, w := range []io.Writer{l.output, l.exchange} {
		if w == nil || w == os.Stdout || w == os.Stderr {
			continue
		}
		if closer, ok := w.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SetupLogging creates a JSON logger writing outcomes.log and
// pox_exchange.log in the given directory.
func SetupLogging(logsDir string, level LogLevel) (*JSONLogger, error) {
	return NewJSONLogger(LoggerConfig{
		OutputPath:      filepath.Join(logsDir, "outcomes.log"),
		ExchangeLogPath: filepath.Join(logsDir, "pox_exchange.log"),
		Level:           level,
	})
}
