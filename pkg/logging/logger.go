// Package logging provides structured logging for outcome
// submissions with JSON, console, and redacting output.
package logging

// Logger defines the interface for structured outcome logging.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning message.
	Warn(msg string, fields ...Field)

	// Error logs an error message.
	Error(msg string, fields ...Field)

	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// WithFields returns a Logger with additional default
	// fields attached to every subsequent log entry.
	WithFields(fields ...Field) Logger

	// LogOutboundPOX records a signed outcome document leaving
	// the provider.
	LogOutboundPOX(entry OutboundPOXLog)

	// LogInboundPOX records the consumer's reply envelope.
	LogInboundPOX(entry InboundPOXLog)

	// Close flushes any buffers and releases resources.
	Close() error
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// OutboundPOXLog captures one outcome request as sent.
type OutboundPOXLog struct {
	Timestamp string            `json:"timestamp"`
	MessageID string            `json:"message_id"`
	Operation string            `json:"operation"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	Body      string            `json:"body,omitempty"`
	BodyBytes int               `json:"body_bytes"`
}

// InboundPOXLog captures the reply to an outcome request.
type InboundPOXLog struct {
	Timestamp  string `json:"timestamp"`
	MessageID  string `json:"message_id"`
	StatusCode int    `json:"status_code"`
	CodeMajor  string `json:"code_major,omitempty"`
	Body       string `json:"body,omitempty"`
	BodyBytes  int    `json:"body_bytes"`
	ElapsedMs  int64  `json:"elapsed_ms"`
}

// LogLevel represents logging severity levels.
type LogLevel int

const (
	// LevelDebug is the most verbose level.
	LevelDebug LogLevel = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn indicates potential issues.
	LevelWarn
	// LevelError indicates failures.
	LevelError
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string onto a LogLevel. Unknown
// values fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}
