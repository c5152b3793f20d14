package consumer

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"digital.vasic.outcomes/pkg/logging"
	"digital.vasic.outcomes/pkg/oauth"
	"digital.vasic.outcomes/pkg/outcome"
	"digital.vasic.outcomes/pkg/outcomedata"
)

const maxRequestBytes = 1 << 20

// HandlerOption configures an OutcomeHandler.
type HandlerOption func(*OutcomeHandler)

// WithHandlerLogger sets the handler logger.
func WithHandlerLogger(l logging.Logger) HandlerOption {
	return func(h *OutcomeHandler) { h.logger = l }
}

// WithVerifier replaces the default verifier, e.g. to pin the
// clock in tests.
func WithVerifier(v *oauth.Verifier) HandlerOption {
	return func(h *OutcomeHandler) { h.verifier = v }
}

// WithHandlerObserver notifies o after every applied request.
func WithHandlerObserver(o outcome.Observer) HandlerOption {
	return func(h *OutcomeHandler) { h.observers = append(h.observers, o) }
}

// WithHandlerExtensions registers extensions ahead of outcome data
// so their fields are extracted from inbound requests.
func WithHandlerExtensions(factories ...outcome.ExtensionFactory) HandlerOption {
	return func(h *OutcomeHandler) { h.factories = append(h.factories, factories...) }
}

// OutcomeHandler serves the outcome endpoint: it checks the OAuth
// signature and body hash, parses the request through the
// extension chain and replies with the gradebook's decision.
type OutcomeHandler struct {
	verifier   *oauth.Verifier
	registry   *outcome.Registry
	gradebook  Gradebook
	logger     logging.Logger
	factories  []outcome.ExtensionFactory
	observers  []outcome.Observer
	messageIDs func() string
}

// NewOutcomeHandler creates a handler that accepts requests signed
// with a secret known to secrets.
func NewOutcomeHandler(secrets oauth.SecretLookup, gradebook Gradebook, opts ...HandlerOption) (*OutcomeHandler, error) {
	h := &OutcomeHandler{
		verifier:   oauth.NewVerifier(secrets),
		gradebook:  gradebook,
		logger:     logging.NullLogger{},
		messageIDs: uuid.NewString,
	}
	for _, o := range opts {
		o(h)
	}

	h.registry = outcome.NewRegistry()
	if err := h.registry.Register(append(h.factories, outcomedata.Factory{})...); err != nil {
		return nil, fmt.Errorf("new outcome handler: %w", err)
	}
	return h, nil
}

// Registry exposes the extensions the handler extracts.
func (h *OutcomeHandler) Registry() *outcome.Registry { return h.registry }

// ServeHTTP implements http.Handler.
func (h *OutcomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		h.fail(w, http.StatusBadRequest, nil, fmt.Sprintf("read request: %v", err))
		return
	}

	key, err := h.verifier.Verify(r, body)
	if err != nil {
		h.logger.Warn("rejected unsigned outcome request", logging.ErrorField(err))
		h.fail(w, http.StatusUnauthorized, nil, err.Error())
		return
	}

	req, err := h.registry.ParseRequest(body)
	if err != nil {
		h.logger.Warn("malformed outcome request",
			logging.StringField("consumer_key", key),
			logging.ErrorField(err),
		)
		h.fail(w, http.StatusBadRequest, nil, err.Error())
		return
	}

	logger := h.logger.WithFields(
		logging.StringField("consumer_key", key),
		logging.StringField("operation", string(req.Operation)),
		logging.StringField("sourcedid", req.SourcedID),
		logging.StringField("message_id", req.MessageID),
	)

	if req.Score != nil {
		if err := outcome.ValidateScore(*req.Score); err != nil {
			logger.Warn("score out of range", logging.ErrorField(err))
			h.fail(w, http.StatusOK, req, err.Error())
			return
		}
	}

	decision := h.gradebook.Apply(r.Context(), req)
	logger.Info("outcome request applied",
		logging.StringField("status", string(decision.Status)),
		logging.LogField("extensions", contributing(req)),
	)

	resp := &outcome.Response{
		Status:       decision.Status,
		Severity:     severityFor(decision.Status),
		Description:  decision.Description,
		MessageID:    h.messageIDs(),
		MessageRefID: req.MessageID,
		OperationRef: req.Operation,
		Score:        decision.Score,
		HTTPStatus:   http.StatusOK,
	}
	h.write(w, http.StatusOK, resp)

	sub := outcome.Submission{
		Operation:  req.Operation,
		SourcedID:  req.SourcedID,
		MessageID:  req.MessageID,
		Score:      req.Score,
		Extensions: contributing(req),
		Response:   resp,
		Duration:   time.Since(start),
	}
	for _, o := range h.observers {
		o.OutcomeSubmitted(sub)
	}
}

func (h *OutcomeHandler) fail(w http.ResponseWriter, code int, req *outcome.Request, description string) {
	resp := &outcome.Response{
		Status:      outcome.StatusFailure,
		Severity:    outcome.SeverityError,
		Description: description,
		MessageID:   h.messageIDs(),
	}
	if req != nil {
		resp.MessageRefID = req.MessageID
		resp.OperationRef = req.Operation
	}
	h.write(w, code, resp)
}

func (h *OutcomeHandler) write(w http.ResponseWriter, code int, resp *outcome.Response) {
	data, err := resp.Bytes()
	if err != nil {
		h.logger.Error("encode outcome reply", logging.ErrorField(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func severityFor(s outcome.Status) string {
	switch s {
	case outcome.StatusSuccess, outcome.StatusProcessing:
		return outcome.SeverityStatus
	case outcome.StatusUnsupported:
		return outcome.SeverityWarning
	default:
		return outcome.SeverityError
	}
}

func contributing(req *outcome.Request) []string {
	var names []string
	for _, ext := range req.Chain() {
		if ext.HasResultData() {
			names = append(names, ext.Name())
		}
	}
	return names
}
