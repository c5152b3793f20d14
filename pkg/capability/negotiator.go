package capability

import (
	"slices"
	"sync"
)

// Negotiator is the provider-side view of a consumer's
// advertisement. The parse is cached for the negotiator's
// lifetime, so create one per launch.
type Negotiator struct {
	carrier Carrier

	once   sync.Once
	tokens []string
}

// NewNegotiator reads the advertisement from inbound launch
// parameters.
func NewNegotiator(carrier Carrier) *Negotiator {
	return &Negotiator{carrier: carrier}
}

// AcceptedTypes returns the advertised tokens, or an empty slice
// when the consumer sent no advertisement.
func (n *Negotiator) AcceptedTypes() []string {
	n.once.Do(func() {
		n.tokens = []string{}
		if raw, ok := n.carrier.ExtParam(ParamOutcomeDataValuesAccepted); ok {
			n.tokens = Decode(raw)
		}
	})
	return slices.Clone(n.tokens)
}

// Supports reports whether token was advertised.
func (n *Negotiator) Supports(token string) bool {
	n.AcceptedTypes()
	return slices.Contains(n.tokens, token)
}

// SupportsAnyOutcomeData reports whether the advertisement
// parameter is present at all. A consumer that sends an empty or
// unrecognisable list is still extension-aware.
func (n *Negotiator) SupportsAnyOutcomeData() bool {
	_, ok := n.carrier.ExtParam(ParamOutcomeDataValuesAccepted)
	return ok
}

// AcceptsText reports whether free text result data is accepted.
func (n *Negotiator) AcceptsText() bool { return n.Supports(TokenText) }

// AcceptsURL reports whether a result URL is accepted.
func (n *Negotiator) AcceptsURL() bool { return n.Supports(TokenURL) }

// AcceptsNeedsGrading reports whether the needs_grading flag is
// accepted.
func (n *Negotiator) AcceptsNeedsGrading() bool {
	return n.Supports(TokenNeedsGrading)
}

// AcceptsDate reports whether a result date is accepted.
func (n *Negotiator) AcceptsDate() bool { return n.Supports(TokenDate) }

// AcceptsStatusOfResult reports whether a status marker is
// accepted.
func (n *Negotiator) AcceptsStatusOfResult() bool {
	return n.Supports(TokenStatusOfResult)
}
