package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"digital.vasic.outcomes/pkg/logging"
	"digital.vasic.outcomes/pkg/oauth"
	"digital.vasic.outcomes/pkg/outcome"
)

type capturingLogger struct {
	logging.NullLogger
	mu       sync.Mutex
	outbound []logging.OutboundPOXLog
	inbound  []logging.InboundPOXLog
}

func (c *capturingLogger) LogOutboundPOX(e logging.OutboundPOXLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outbound = append(c.outbound, e)
}

func (c *capturingLogger) LogInboundPOX(e logging.InboundPOXLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inbound = append(c.inbound, e)
}

func requestBody(t *testing.T) []byte {
	t.Helper()
	svc := outcome.NewService("http://unused", "sourced-1", nil,
		outcome.WithMessageIDs(func() string { return "msg-42" }))
	req := svc.NewRequest()
	req.Operation = outcome.OpReadResult
	body, err := req.Bytes()
	require.NoError(t, err)
	return body
}

func TestHTTPTransport_Post_SignsAndReturnsReply(t *testing.T) {
	reply, err := (&outcome.Response{
		Status:       outcome.StatusSuccess,
		MessageRefID: "msg-42",
		OperationRef: outcome.OpReadResult,
	}).Bytes()
	require.NoError(t, err)

	var (
		gotKey  string
		gotErr  error
		gotType string
	)
	verifier := oauth.NewVerifier(oauth.StaticSecrets(map[string]string{"key": "secret"}))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotType = r.Header.Get("Content-Type")
		gotKey, gotErr = verifier.Verify(r, body)
		_, _ = w.Write(reply)
	}))
	defer server.Close()

	logger := &capturingLogger{}
	tr := New("key", "secret",
		WithLogger(logger),
		WithTracerProvider(noop.NewTracerProvider()),
	)

	raw, err := tr.Post(context.Background(), server.URL+"/outcomes", requestBody(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, raw.StatusCode)
	assert.Equal(t, reply, raw.Body)

	require.NoError(t, gotErr)
	assert.Equal(t, "key", gotKey)
	assert.Equal(t, "application/xml", gotType)

	require.Len(t, logger.outbound, 1)
	out := logger.outbound[0]
	assert.Equal(t, "msg-42", out.MessageID)
	assert.Equal(t, "readResultRequest", out.Operation)
	assert.Contains(t, out.Headers["Authorization"], `oauth_signature="****"`)
	assert.Contains(t, out.Headers["Authorization"], `oauth_consumer_key="key"`)

	require.Len(t, logger.inbound, 1)
	assert.Equal(t, "success", logger.inbound[0].CodeMajor)
	assert.Equal(t, http.StatusOK, logger.inbound[0].StatusCode)
}

func TestHTTPTransport_Post_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	raw, err := New("key", "secret").Post(context.Background(), server.URL, []byte("<x/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, raw.StatusCode)

	resp := outcome.ClassifyReply(raw, nil)
	assert.True(t, resp.Failure())
	assert.Contains(t, resp.Description, "HTTP 500")
}

func TestHTTPTransport_Post_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New("key", "secret", WithTimeout(time.Second)).
		Post(context.Background(), url, []byte("<x/>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestHTTPTransport_Post_InvalidURL(t *testing.T) {
	_, err := New("key", "secret").Post(context.Background(), "://bad", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create request")
}

func TestHTTPTransport_Options(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	signer := oauth.NewSigner("other", "s")
	tr := New("key", "secret",
		WithHTTPClient(client),
		WithSigner(signer),
		WithUserAgent("tool/1.0"),
	)
	assert.Same(t, client, tr.httpClient)
	assert.Same(t, signer, tr.signer)
	assert.Equal(t, "tool/1.0", tr.userAgent)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", maxLoggedBody+10)
	assert.True(t, strings.HasSuffix(truncate([]byte(long)), "...(truncated)"))
	assert.Equal(t, "short", truncate([]byte("short")))
}

func TestDescribe_Garbage(t *testing.T) {
	id, op := describe([]byte("not xml"))
	assert.Empty(t, id)
	assert.Empty(t, op)
}
