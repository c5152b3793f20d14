package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	infoColor  = color.New(color.FgBlue)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
	debugColor = color.New(color.FgHiBlack)
	fieldColor = color.New(color.FgHiBlack)
)

// ConsoleLogger writes human-readable, coloured lines. Exchange
// records are only shown when verbose.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  []Field
}

// NewConsoleLogger creates a console logger on stdout.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleWriterLogger(os.Stdout, verbose)
}

// NewConsoleWriterLogger creates a console logger on w.
func NewConsoleWriterLogger(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		mu:      &sync.Mutex{},
		output:  w,
		verbose: verbose,
	}
}

func (c *ConsoleLogger) log(
	level LogLevel, paint *color.Color, msg string, fields ...Field,
) {
	all := make([]Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)

	var fieldStr string
	if len(all) > 0 {
		parts := make([]string, 0, len(all))
		for _, f := range all {
			parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		sort.Strings(parts)
		fieldStr = " " + fieldColor.Sprintf("{%s}", strings.Join(parts, ", "))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(
		c.output, "%s [%s] %s%s\n",
		time.Now().Format("15:04:05"),
		paint.Sprintf("%-5s", level.String()),
		msg, fieldStr,
	)
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, infoColor, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, warnColor, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, errorColor, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, debugColor, msg, fields...)
	}
}

// WithFields returns a ConsoleLogger with additional default
// fields.
func (c *ConsoleLogger) WithFields(fields ...Field) Logger {
	child := *c
	child.fields = append(append([]Field{}, c.fields...), fields...)
	return &child
}

// LogOutboundPOX prints a one-line summary of the request.
func (c *ConsoleLogger) LogOutboundPOX(entry OutboundPOXLog) {
	c.Debug("outcome request",
		StringField("operation", entry.Operation),
		StringField("message_id", entry.MessageID),
		StringField("url", entry.URL),
		IntField("bytes", entry.BodyBytes),
	)
}

// LogInboundPOX prints a one-line summary of the reply.
func (c *ConsoleLogger) LogInboundPOX(entry InboundPOXLog) {
	c.Debug("outcome reply",
		StringField("message_id", entry.MessageID),
		IntField("status", entry.StatusCode),
		StringField("code_major", entry.CodeMajor),
		DurationMsField("elapsed_ms", entry.ElapsedMs),
	)
}

// Close is a no-op for console output.
func (c *ConsoleLogger) Close() error {
	return nil
}
