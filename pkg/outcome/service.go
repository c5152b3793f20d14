package outcome

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"digital.vasic.outcomes/pkg/logging"
	"digital.vasic.outcomes/pkg/metrics"
)

// Transport delivers a serialised outcome request and returns the
// raw reply. Signing, retries and timeouts belong to the
// transport.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) (*RawReply, error)
}

// Submission describes one completed round trip for observers.
type Submission struct {
	Operation  Operation
	SourcedID  string
	MessageID  string
	Score      *float64
	Extensions []string
	Response   *Response
	Duration   time.Duration
	Err        error
}

// Observer is notified after every submission.
type Observer interface {
	OutcomeSubmitted(s Submission)
}

// ServiceOption configures a Service via functional options.
type ServiceOption func(*Service)

// WithLogger sets the logger used for submissions.
func WithLogger(logger logging.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.OutcomeMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithObserver adds a submission observer.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// WithMessageIDs overrides message identifier generation.
func WithMessageIDs(next func() string) ServiceOption {
	return func(s *Service) { s.newMessageID = next }
}

// Service is the outcome endpoint of one launch: it knows where to
// post, which gradebook cell to address and which extensions
// every request carries.
type Service struct {
	serviceURL string
	sourcedID  string
	transport  Transport
	registry   *Registry

	logger       logging.Logger
	metrics      metrics.OutcomeMetrics
	observers    []Observer
	newMessageID func() string
}

// NewService creates a service posting to serviceURL for the
// gradebook cell sourcedID.
func NewService(serviceURL, sourcedID string, transport Transport, opts ...ServiceOption) *Service {
	s := &Service{
		serviceURL:   serviceURL,
		sourcedID:    sourcedID,
		transport:    transport,
		registry:     NewRegistry(),
		logger:       logging.NullLogger{},
		metrics:      metrics.NoopMetrics{},
		newMessageID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterExtensions appends extension factories to the chain
// every new request is built with.
func (s *Service) RegisterExtensions(factories ...ExtensionFactory) error {
	if err := s.registry.Register(factories...); err != nil {
		return fmt.Errorf("register extensions: %w", err)
	}
	return nil
}

// Registry exposes the service's extension registry.
func (s *Service) Registry() *Registry { return s.registry }

// ServiceURL returns the outcome service endpoint.
func (s *Service) ServiceURL() string { return s.serviceURL }

// SourcedID returns the gradebook cell identifier.
func (s *Service) SourcedID() string { return s.sourcedID }

// NewRequest creates a request wired with a fresh extension chain.
func (s *Service) NewRequest() *Request {
	return &Request{
		SourcedID: s.sourcedID,
		MessageID: s.newMessageID(),
		chain:     s.registry.NewChain(),
		service:   s,
	}
}

// PostReplaceResult sends score with no optional data.
func (s *Service) PostReplaceResult(ctx context.Context, score float64) (*Response, error) {
	return s.NewRequest().PostReplaceResult(ctx, score)
}

// PostReadResult asks the consumer for the stored score.
func (s *Service) PostReadResult(ctx context.Context) (*Response, error) {
	return s.NewRequest().PostReadResult(ctx)
}

// PostDeleteResult asks the consumer to clear the stored score.
func (s *Service) PostDeleteResult(ctx context.Context) (*Response, error) {
	return s.NewRequest().PostDeleteResult(ctx)
}

func (s *Service) submit(ctx context.Context, req *Request) (*Response, error) {
	logger := s.logger.WithFields(
		logging.StringField("operation", string(req.Operation)),
		logging.StringField("message_id", req.MessageID),
		logging.StringField("sourcedid", req.SourcedID),
	)

	body, err := req.Bytes()
	if err != nil {
		logger.Error("outcome request could not be assembled", logging.ErrorField(err))
		return nil, fmt.Errorf("assemble outcome request: %w", err)
	}

	var contributing []string
	if req.Operation == OpReplaceResult {
		for _, ext := range req.chain {
			if ext.HasResultData() {
				contributing = append(contributing, ext.Name())
			}
		}
	}
	logger.Debug("posting outcome request",
		logging.IntField("bytes", len(body)),
		logging.LogField("extensions", contributing),
	)

	start := time.Now()
	reply, postErr := s.transport.Post(ctx, s.serviceURL, body)
	elapsed := time.Since(start)
	resp := ClassifyReply(reply, postErr)

	s.metrics.RecordSubmission(string(req.Operation), string(resp.Status), elapsed)
	if len(contributing) > 0 {
		s.metrics.RecordResultData(contributing)
	}

	if postErr != nil {
		postErr = fmt.Errorf("post outcome request: %w", postErr)
		logger.Error("outcome request failed", logging.ErrorField(postErr))
	} else {
		logger.Info("outcome reply received",
			logging.StringField("status", string(resp.Status)),
			logging.StringField("description", resp.Description),
			logging.DurationMsField("elapsed_ms", elapsed.Milliseconds()),
		)
	}

	sub := Submission{
		Operation:  req.Operation,
		SourcedID:  req.SourcedID,
		MessageID:  req.MessageID,
		Score:      req.Score,
		Extensions: contributing,
		Response:   resp,
		Duration:   elapsed,
		Err:        postErr,
	}
	for _, o := range s.observers {
		o.OutcomeSubmitted(sub)
	}
	return resp, postErr
}

func (s *Service) rejectScore(req *Request, err error) {
	s.metrics.RecordRejectedScore()
	s.logger.Warn("score rejected before sending",
		logging.StringField("message_id", req.MessageID),
		logging.ErrorField(err),
	)
}
