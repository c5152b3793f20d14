package logging

import (
	"regexp"
	"strings"
)

// RedactingLogger is a decorator that masks consumer secrets in
// messages and string field values, and OAuth signatures in
// exchange headers, before passing them to the inner logger.
type RedactingLogger struct {
	inner   Logger
	secrets []string
}

// NewRedactingLogger creates a logger that redacts the given
// secrets. Secrets of four characters or fewer are ignored.
func NewRedactingLogger(inner Logger, secrets ...string) *RedactingLogger {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if len(s) > 4 {
			kept = append(kept, s)
		}
	}
	return &RedactingLogger{inner: inner, secrets: kept}
}

func (r *RedactingLogger) redact(msg string) string {
	for _, secret := range r.secrets {
		msg = strings.ReplaceAll(msg, secret, MaskSecret(secret))
	}
	return msg
}

func (r *RedactingLogger) redactFields(fields []Field) []Field {
	result := make([]Field, len(fields))
	for i, f := range fields {
		if str, ok := f.Value.(string); ok {
			result[i] = Field{Key: f.Key, Value: r.redact(str)}
		} else {
			result[i] = f
		}
	}
	return result
}

func (r *RedactingLogger) Info(msg string, fields ...Field) {
	r.inner.Info(r.redact(msg), r.redactFields(fields)...)
}

func (r *RedactingLogger) Warn(msg string, fields ...Field) {
	r.inner.Warn(r.redact(msg), r.redactFields(fields)...)
}

func (r *RedactingLogger) Error(msg string, fields ...Field) {
	r.inner.Error(r.redact(msg), r.redactFields(fields)...)
}

func (r *RedactingLogger) Debug(msg string, fields ...Field) {
	r.inner.Debug(r.redact(msg), r.redactFields(fields)...)
}

// WithFields returns a RedactingLogger over inner.WithFields.
func (r *RedactingLogger) WithFields(fields ...Field) Logger {
	return &RedactingLogger{
		inner:   r.inner.WithFields(r.redactFields(fields)...),
		secrets: r.secrets,
	}
}

// LogOutboundPOX redacts headers and body before forwarding.
func (r *RedactingLogger) LogOutboundPOX(entry OutboundPOXLog) {
	entry.Headers = RedactHeaders(entry.Headers)
	entry.Body = r.redact(entry.Body)
	r.inner.LogOutboundPOX(entry)
}

// LogInboundPOX redacts the body before forwarding.
func (r *RedactingLogger) LogInboundPOX(entry InboundPOXLog) {
	entry.Body = r.redact(entry.Body)
	r.inner.LogInboundPOX(entry)
}

// Close closes the inner logger.
func (r *RedactingLogger) Close() error {
	return r.inner.Close()
}

// MaskSecret keeps the first four characters of s.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

var oauthSignature = regexp.MustCompile(`oauth_signature="[^"]*"`)

// RedactHeaders returns a copy of headers with credentials
// masked. OAuth Authorization headers keep every parameter except
// the signature so request correlation remains possible.
func RedactHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}

	result := make(map[string]string, len(headers))
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization", "proxy-authorization":
			if strings.HasPrefix(v, "OAuth ") {
				result[k] = oauthSignature.ReplaceAllString(
					v, `oauth_signature="****"`,
				)
			} else {
				result[k] = "****"
			}
		case "cookie", "set-cookie", "x-api-key":
			result[k] = "****"
		default:
			result[k] = v
		}
	}
	return result
}
