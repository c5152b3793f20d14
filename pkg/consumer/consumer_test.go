package consumer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.outcomes/pkg/capability"
	"digital.vasic.outcomes/pkg/launch"
	"digital.vasic.outcomes/pkg/oauth"
	"digital.vasic.outcomes/pkg/outcome"
	"digital.vasic.outcomes/pkg/outcomedata"
)

const endpoint = "http://lms.test/outcomes"

func TestToolConsumer_Advertisement(t *testing.T) {
	c := New("key", "secret")
	c.SetOutcomeService(endpoint, "sourced-1")
	c.SetOutcomeDataValuesAccepted("text", "url", "lti_launch_url")

	raw, ok := c.OutcomeDataValuesAccepted()
	require.True(t, ok)
	assert.Equal(t, "text,url,lti_launch_url", raw)

	v, _ := c.Params.Get("ext_outcome_data_values_accepted")
	assert.Equal(t, "text,url,lti_launch_url", v)
	assert.Equal(t, "key", c.Params.ConsumerKey())
	assert.Equal(t, endpoint, c.Params.OutcomeServiceURL())
	assert.Equal(t, "sourced-1", c.Params.ResultSourcedID())
}

func TestToolConsumer_SupportOutcomeData(t *testing.T) {
	c := New("key", "secret")
	c.SupportOutcomeData()

	n := capability.NewNegotiator(launch.FromForm(c.Params.Form()))
	assert.Equal(t, capability.KnownTokens, n.AcceptedTypes())
}

func newRequest(t *testing.T) *outcome.Request {
	t.Helper()
	svc := outcome.NewService(endpoint, "sourced-1", nil,
		outcome.WithMessageIDs(func() string { return "msg-1" }))
	require.NoError(t, svc.RegisterExtensions(outcomedata.Factory{}))
	return svc.NewRequest()
}

func signed(t *testing.T, secret string, body []byte) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	oauth.NewSigner("key", secret).Sign(r, body)
	return r
}

func serve(t *testing.T, h http.Handler, r *http.Request) (*httptest.ResponseRecorder, *outcome.Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	resp, err := outcome.ParseResponse(rec.Body.Bytes())
	require.NoError(t, err)
	return rec, resp
}

func newHandler(t *testing.T, gb Gradebook) *OutcomeHandler {
	t.Helper()
	h, err := NewOutcomeHandler(oauth.StaticSecrets(map[string]string{"key": "secret"}), gb)
	require.NoError(t, err)
	return h
}

func TestOutcomeHandler_ReplaceStoresScoreAndData(t *testing.T) {
	gb := NewMemoryGradebook()
	h := newHandler(t, gb)

	req := newRequest(t)
	req.Operation = outcome.OpReplaceResult
	score := 0.85
	req.Score = &score
	ext := outcomedata.From(req)
	ext.SetText("ok")
	ext.SetURL("http://example.com/work")
	body, err := req.Bytes()
	require.NoError(t, err)

	rec, resp := serve(t, h, signed(t, "secret", body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.True(t, resp.Success())
	assert.Equal(t, "msg-1", resp.MessageRefID)
	assert.Equal(t, outcome.OpReplaceResult, resp.OperationRef)

	entry, ok := gb.Get("sourced-1")
	require.True(t, ok)
	require.NotNil(t, entry.Score)
	assert.InDelta(t, 0.85, *entry.Score, 1e-9)
	require.NotNil(t, entry.Data.Text)
	assert.Equal(t, "ok", *entry.Data.Text)
	require.NotNil(t, entry.Data.URL)
	assert.Equal(t, "http://example.com/work", *entry.Data.URL)
}

func TestOutcomeHandler_ReadAndDelete(t *testing.T) {
	gb := NewMemoryGradebook()
	h := newHandler(t, gb)
	score := 0.5
	gb.entries["sourced-1"] = Entry{Score: &score}

	req := newRequest(t)
	req.Operation = outcome.OpReadResult
	body, err := req.Bytes()
	require.NoError(t, err)

	_, resp := serve(t, h, signed(t, "secret", body))
	assert.True(t, resp.Success())
	require.NotNil(t, resp.Score)
	assert.InDelta(t, 0.5, *resp.Score, 1e-9)

	req = newRequest(t)
	req.Operation = outcome.OpDeleteResult
	body, err = req.Bytes()
	require.NoError(t, err)

	_, resp = serve(t, h, signed(t, "secret", body))
	assert.True(t, resp.Success())
	assert.Equal(t, 0, gb.Len())
}

func TestOutcomeHandler_BadSignature(t *testing.T) {
	gb := NewMemoryGradebook()
	h := newHandler(t, gb)

	req := newRequest(t)
	req.Operation = outcome.OpDeleteResult
	body, err := req.Bytes()
	require.NoError(t, err)

	rec, resp := serve(t, h, signed(t, "wrong", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, resp.Failure())
	assert.Equal(t, outcome.SeverityError, resp.Severity)
}

func TestOutcomeHandler_TamperedBody(t *testing.T) {
	h := newHandler(t, NewMemoryGradebook())

	req := newRequest(t)
	req.Operation = outcome.OpReadResult
	body, err := req.Bytes()
	require.NoError(t, err)

	r := signed(t, "secret", body)
	tampered := append(bytes.Clone(body), ' ')
	r.Body = io.NopCloser(bytes.NewReader(tampered))

	rec, resp := serve(t, h, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, resp.Description, "body hash")
}

func TestOutcomeHandler_Malformed(t *testing.T) {
	h := newHandler(t, NewMemoryGradebook())
	body := []byte(`<?xml version="1.0"?><somethingElse/>`)

	rec, resp := serve(t, h, signed(t, "secret", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, resp.Failure())
}

func TestOutcomeHandler_ScoreOutOfRange(t *testing.T) {
	gb := NewMemoryGradebook()
	h := newHandler(t, gb)

	req := newRequest(t)
	req.Operation = outcome.OpReplaceResult
	score := 1.5
	req.Score = &score
	body, err := req.Bytes()
	require.NoError(t, err)

	rec, resp := serve(t, h, signed(t, "secret", body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Failure())
	assert.Equal(t, outcome.OpReplaceResult, resp.OperationRef)
	assert.Equal(t, 0, gb.Len())
}

func TestOutcomeHandler_GradebookDecision(t *testing.T) {
	gb := GradebookFunc(func(_ context.Context, req *outcome.Request) Decision {
		return Decision{Status: outcome.StatusProcessing, Description: "queued " + req.SourcedID}
	})
	h := newHandler(t, gb)

	req := newRequest(t)
	req.Operation = outcome.OpDeleteResult
	body, err := req.Bytes()
	require.NoError(t, err)

	_, resp := serve(t, h, signed(t, "secret", body))
	assert.True(t, resp.Processing())
	assert.Equal(t, "queued sourced-1", resp.Description)
	assert.Equal(t, outcome.SeverityStatus, resp.Severity)
}

func TestOutcomeHandler_MethodNotAllowed(t *testing.T) {
	h := newHandler(t, NewMemoryGradebook())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, endpoint, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestMemoryGradebook_UnknownOperation(t *testing.T) {
	gb := NewMemoryGradebook()
	d := gb.Apply(context.Background(), &outcome.Request{Operation: "replaceLineItem"})
	assert.Equal(t, outcome.StatusUnsupported, d.Status)
}

func TestMemoryGradebook_ReadMissing(t *testing.T) {
	d := NewMemoryGradebook().Apply(context.Background(), &outcome.Request{
		Operation: outcome.OpReadResult,
		SourcedID: "nobody",
	})
	assert.Equal(t, outcome.StatusFailure, d.Status)
	assert.Equal(t, "no result recorded", d.Description)
	assert.Nil(t, d.Score)
}

type recordingObserver struct{ subs []outcome.Submission }

func (r *recordingObserver) OutcomeSubmitted(s outcome.Submission) { r.subs = append(r.subs, s) }

func TestOutcomeHandler_NotifiesObservers(t *testing.T) {
	obs := &recordingObserver{}
	h, err := NewOutcomeHandler(oauth.StaticSecrets(map[string]string{"key": "secret"}),
		NewMemoryGradebook(), WithHandlerObserver(obs))
	require.NoError(t, err)

	req := newRequest(t)
	req.Operation = outcome.OpReplaceResult
	score := 0.3
	req.Score = &score
	outcomedata.From(req).SetNeedsGradingFlag(true)
	body, err := req.Bytes()
	require.NoError(t, err)

	serve(t, h, signed(t, "secret", body))

	require.Len(t, obs.subs, 1)
	sub := obs.subs[0]
	assert.Equal(t, outcome.OpReplaceResult, sub.Operation)
	assert.Equal(t, []string{outcomedata.Name}, sub.Extensions)
	assert.True(t, sub.Response.Success())
}
