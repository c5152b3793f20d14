// Package consumer is the platform side of the outcome exchange.
// It advertises which result data it accepts and serves the
// outcome endpoint tools post to.
package consumer

import (
	"digital.vasic.outcomes/pkg/capability"
	"digital.vasic.outcomes/pkg/launch"
)

// ToolConsumer prepares launch parameters for one tool placement.
type ToolConsumer struct {
	ConsumerKey    string
	ConsumerSecret string
	Params         *launch.Params
	Advertiser     *capability.Advertiser
}

// New creates a consumer with empty launch parameters.
func New(consumerKey, consumerSecret string) *ToolConsumer {
	params := launch.New()
	params.Set(launch.ParamConsumerKey, consumerKey)
	return &ToolConsumer{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Params:         params,
		Advertiser:     capability.NewAdvertiser(params),
	}
}

// SetOutcomeService points the tool at an outcome endpoint for one
// learner's result.
func (c *ToolConsumer) SetOutcomeService(serviceURL, sourcedID string) {
	c.Params.Set(launch.ParamOutcomeServiceURL, serviceURL)
	c.Params.Set(launch.ParamResultSourcedID, sourcedID)
}

// SetOutcomeDataValuesAccepted advertises the given tokens
// verbatim, unknown ones included.
func (c *ToolConsumer) SetOutcomeDataValuesAccepted(tokens ...string) {
	c.Advertiser.SetAcceptedTypes(tokens...)
}

// OutcomeDataValuesAccepted returns the advertisement as sent.
func (c *ToolConsumer) OutcomeDataValuesAccepted() (string, bool) {
	return c.Advertiser.AcceptedTypesString()
}

// SupportOutcomeData advertises every known token.
func (c *ToolConsumer) SupportOutcomeData() {
	c.Advertiser.SupportAll()
}
