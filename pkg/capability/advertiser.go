package capability

// Advertiser is the consumer-side view: it writes the accepted
// outcome-data types into the launch parameters.
type Advertiser struct {
	carrier Carrier
}

// NewAdvertiser wraps the consumer's launch parameters.
func NewAdvertiser(carrier Carrier) *Advertiser {
	return &Advertiser{carrier: carrier}
}

// SetAcceptedTypes stores tokens verbatim, comma-joined. Unknown
// tokens pass through.
func (a *Advertiser) SetAcceptedTypes(tokens ...string) {
	a.carrier.SetExtParam(ParamOutcomeDataValuesAccepted, Encode(tokens))
}

// SetAcceptedTypesString stores an already-joined advertisement.
func (a *Advertiser) SetAcceptedTypesString(joined string) {
	a.carrier.SetExtParam(ParamOutcomeDataValuesAccepted, joined)
}

// AcceptedTypesString returns the stored advertisement.
func (a *Advertiser) AcceptedTypesString() (string, bool) {
	return a.carrier.ExtParam(ParamOutcomeDataValuesAccepted)
}

// SupportAll advertises every known outcome-data type.
func (a *Advertiser) SupportAll() {
	a.SetAcceptedTypes(KnownTokens...)
}
