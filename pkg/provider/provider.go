// Package provider is the tool side of the outcome exchange: it
// reads the launch, answers capability questions and reports
// scores with optional result data.
package provider

import (
	"context"
	"errors"
	"fmt"

	"digital.vasic.outcomes/pkg/capability"
	"digital.vasic.outcomes/pkg/launch"
	"digital.vasic.outcomes/pkg/outcome"
	"digital.vasic.outcomes/pkg/outcomedata"
	"digital.vasic.outcomes/pkg/transport"
)

// ErrNoOutcomeService is returned when the launch did not carry an
// outcome service URL and result sourcedId.
var ErrNoOutcomeService = errors.New("launch has no outcome service")

// Option configures a ToolProvider.
type Option func(*options)

type options struct {
	transport  outcome.Transport
	factories  []outcome.ExtensionFactory
	serviceOps []outcome.ServiceOption
}

// WithTransport replaces the default signed HTTP transport.
func WithTransport(t outcome.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithExtensions registers additional extensions ahead of the
// outcome-data extension.
func WithExtensions(factories ...outcome.ExtensionFactory) Option {
	return func(o *options) { o.factories = append(o.factories, factories...) }
}

// WithServiceOptions passes options through to the outcome service.
func WithServiceOptions(opts ...outcome.ServiceOption) Option {
	return func(o *options) { o.serviceOps = append(o.serviceOps, opts...) }
}

// ToolProvider reports outcomes for a single launch.
type ToolProvider struct {
	Params     *launch.Params
	Negotiator *capability.Negotiator
	Service    *outcome.Service
}

// New builds a provider from launch parameters. Without a
// WithTransport option the provider signs requests with the
// consumer key and secret.
func New(params *launch.Params, consumerKey, consumerSecret string, opts ...Option) (*ToolProvider, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.transport == nil {
		o.transport = transport.New(consumerKey, consumerSecret)
	}

	svc := outcome.NewService(params.OutcomeServiceURL(), params.ResultSourcedID(), o.transport, o.serviceOps...)
	factories := append(o.factories, outcomedata.Factory{})
	if err := svc.RegisterExtensions(factories...); err != nil {
		return nil, fmt.Errorf("new provider: %w", err)
	}

	return &ToolProvider{
		Params:     params,
		Negotiator: capability.NewNegotiator(params),
		Service:    svc,
	}, nil
}

// IsOutcomeService reports whether the launch lets the tool post
// outcomes at all.
func (p *ToolProvider) IsOutcomeService() bool {
	return p.Params.OutcomeServiceURL() != "" && p.Params.ResultSourcedID() != ""
}

// AcceptedOutcomeTypes lists the consumer's advertised tokens.
func (p *ToolProvider) AcceptedOutcomeTypes() []string { return p.Negotiator.AcceptedTypes() }

// AcceptsOutcomeData reports whether the consumer advertised the
// extension at all.
func (p *ToolProvider) AcceptsOutcomeData() bool { return p.Negotiator.SupportsAnyOutcomeData() }

// AcceptsOutcomeText reports whether free text result data is accepted.
func (p *ToolProvider) AcceptsOutcomeText() bool { return p.Negotiator.AcceptsText() }

// AcceptsOutcomeURL reports whether a result URL is accepted.
func (p *ToolProvider) AcceptsOutcomeURL() bool { return p.Negotiator.AcceptsURL() }

// AcceptsNeedsGrading reports whether the needs_grading flag is accepted.
func (p *ToolProvider) AcceptsNeedsGrading() bool { return p.Negotiator.AcceptsNeedsGrading() }

// AcceptsDate reports whether a result date is accepted.
func (p *ToolProvider) AcceptsDate() bool { return p.Negotiator.AcceptsDate() }

// AcceptsStatusOfResult reports whether a status marker is accepted.
func (p *ToolProvider) AcceptsStatusOfResult() bool { return p.Negotiator.AcceptsStatusOfResult() }

// NewRequest returns a request wired with the registered chain.
func (p *ToolProvider) NewRequest() (*outcome.Request, error) {
	if !p.IsOutcomeService() {
		return nil, ErrNoOutcomeService
	}
	return p.Service.NewRequest(), nil
}

// PostReplaceResult sends a bare score.
func (p *ToolProvider) PostReplaceResult(ctx context.Context, score float64) (*outcome.Response, error) {
	req, err := p.NewRequest()
	if err != nil {
		return nil, err
	}
	return req.PostReplaceResult(ctx, score)
}

// PostReadResult asks the consumer for the stored score.
func (p *ToolProvider) PostReadResult(ctx context.Context) (*outcome.Response, error) {
	req, err := p.NewRequest()
	if err != nil {
		return nil, err
	}
	return req.PostReadResult(ctx)
}

// PostDeleteResult clears the stored score.
func (p *ToolProvider) PostDeleteResult(ctx context.Context) (*outcome.Response, error) {
	req, err := p.NewRequest()
	if err != nil {
		return nil, err
	}
	return req.PostDeleteResult(ctx)
}

// PostReplaceResultWithData sends score plus result data keyed as
// in outcomedata.FromMap. Advertised capabilities are not checked;
// callers consult the Accepts methods first when they care.
func (p *ToolProvider) PostReplaceResultWithData(ctx context.Context, score float64, data map[string]string) (*outcome.Response, error) {
	return p.PostReplaceResultWithResultData(ctx, score, outcomedata.FromMap(data))
}

// PostReplaceResultWithResultData is the typed form of
// PostReplaceResultWithData.
func (p *ToolProvider) PostReplaceResultWithResultData(ctx context.Context, score float64, data outcomedata.ResultData) (*outcome.Response, error) {
	req, err := p.NewRequest()
	if err != nil {
		return nil, err
	}
	ext := outcomedata.From(req)
	if ext == nil {
		return nil, fmt.Errorf("outcome data extension not registered")
	}
	ext.SetData(data)
	return req.PostReplaceResult(ctx, score)
}
