// Package transport posts signed outcome documents over HTTP.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"digital.vasic.outcomes/pkg/logging"
	"digital.vasic.outcomes/pkg/oauth"
	"digital.vasic.outcomes/pkg/outcome"
)

const (
	tracerName       = "digital.vasic.outcomes/pkg/transport"
	contentType      = "application/xml"
	maxLoggedBody    = 4096
	defaultUserAgent = "digital.vasic.outcomes"
)

// Option configures an HTTPTransport via functional options.
type Option func(*HTTPTransport)

// HTTPTransport signs outcome documents with OAuth body signing
// and posts them. Defaults: 30 second timeout, otelhttp
// instrumented client, global tracer provider, no logging.
type HTTPTransport struct {
	signer     *oauth.Signer
	httpClient *http.Client
	logger     logging.Logger
	tracer     trace.Tracer
	userAgent  string
}

// New creates a transport for the given consumer credentials.
func New(consumerKey, consumerSecret string, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		signer: oauth.NewSigner(consumerKey, consumerSecret),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:    logging.NullLogger{},
		tracer:    otel.Tracer(tracerName),
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) { t.httpClient.Timeout = d }
}

// WithHTTPClient replaces the HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTransport) { t.httpClient = c }
}

// WithLogger records every exchange on logger.
func WithLogger(l logging.Logger) Option {
	return func(t *HTTPTransport) { t.logger = l }
}

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *HTTPTransport) { t.tracer = tp.Tracer(tracerName) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *HTTPTransport) { t.userAgent = ua }
}

// WithSigner replaces the signer, e.g. to pin nonces in tests.
func WithSigner(s *oauth.Signer) Option {
	return func(t *HTTPTransport) { t.signer = s }
}

// Post signs and sends body. Non-2xx statuses are not errors: the
// reply body still carries the outcome status.
func (t *HTTPTransport) Post(ctx context.Context, url string, body []byte) (*outcome.RawReply, error) {
	ctx, span := t.tracer.Start(ctx, "outcome.post",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("outcome.url", url),
			attribute.Int("outcome.body_bytes", len(body)),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create request")
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", t.userAgent)
	t.signer.Sign(req, body)

	msgID, op := describe(body)
	t.logger.LogOutboundPOX(logging.OutboundPOXLog{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		MessageID: msgID,
		Operation: op,
		URL:       url,
		Headers:   logging.RedactHeaders(flatten(req.Header)),
		Body:      truncate(body),
		BodyBytes: len(body),
	})

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read response")
		return nil, fmt.Errorf("read response: %w", err)
	}

	reply := &outcome.RawReply{StatusCode: resp.StatusCode, Body: data}
	codeMajor := ""
	if parsed, perr := outcome.ParseResponse(data); perr == nil {
		codeMajor = parsed.CodeMajor
	}
	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.String("outcome.code_major", codeMajor),
	)

	t.logger.LogInboundPOX(logging.InboundPOXLog{
		Timestamp:  time.Now().Format(time.RFC3339Nano),
		MessageID:  msgID,
		StatusCode: resp.StatusCode,
		CodeMajor:  codeMajor,
		Body:       truncate(data),
		BodyBytes:  len(data),
		ElapsedMs:  time.Since(start).Milliseconds(),
	})
	return reply, nil
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return string(b[:maxLoggedBody]) + "...(truncated)"
	}
	return string(b)
}

// describe pulls correlation data out of an outgoing document
// for the exchange log.
func describe(body []byte) (messageID, operation string) {
	doc, err := outcome.ParseDocument(body)
	if err != nil {
		return "", ""
	}
	if id := doc.Text("imsx_POXRequestHeaderInfo/imsx_messageIdentifier"); id != nil {
		messageID = *id
	}
	if b := doc.Find("imsx_POXBody"); b != nil && b.Len() > 0 {
		operation = b.ChildNames()[0]
	}
	return messageID, operation
}
