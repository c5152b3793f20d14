// Package launch holds the parameters a tool consumer sends with
// a launch and the extension parameters it advertises there.
package launch

import (
	"net/url"
	"sort"
)

// Well-known launch parameter names.
const (
	ParamOutcomeServiceURL = "lis_outcome_service_url"
	ParamResultSourcedID   = "lis_result_sourcedid"
	ParamConsumerKey       = "oauth_consumer_key"
	ParamResourceLinkID    = "resource_link_id"
	ParamUserID            = "user_id"

	extPrefix    = "ext_"
	customPrefix = "custom_"
)

// Params is the flat key/value set of a launch. A Params value
// belongs to a single launch and is not safe for concurrent
// mutation.
type Params struct {
	values map[string]string
}

// New creates an empty parameter set.
func New() *Params {
	return &Params{values: make(map[string]string)}
}

// FromForm builds Params from a decoded launch POST. Only the
// first value of repeated keys is kept.
func FromForm(form url.Values) *Params {
	p := New()
	for k, vs := range form {
		if len(vs) > 0 {
			p.values[k] = vs[0]
		}
	}
	return p
}

// FromMap copies m into a new parameter set.
func FromMap(m map[string]string) *Params {
	p := New()
	for k, v := range m {
		p.values[k] = v
	}
	return p
}

// Get returns the raw value for key and whether it was present.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Set stores a raw parameter.
func (p *Params) Set(key, value string) {
	p.values[key] = value
}

// Delete removes a parameter.
func (p *Params) Delete(key string) {
	delete(p.values, key)
}

// ExtParam returns the extension parameter stored as ext_<key>.
func (p *Params) ExtParam(key string) (string, bool) {
	return p.Get(extPrefix + key)
}

// SetExtParam stores an extension parameter as ext_<key>.
func (p *Params) SetExtParam(key, value string) {
	p.Set(extPrefix+key, value)
}

// CustomParam returns the custom parameter stored as custom_<key>.
func (p *Params) CustomParam(key string) (string, bool) {
	return p.Get(customPrefix + key)
}

// SetCustomParam stores a custom parameter as custom_<key>.
func (p *Params) SetCustomParam(key, value string) {
	p.Set(customPrefix+key, value)
}

// OutcomeServiceURL is where outcome requests are posted.
func (p *Params) OutcomeServiceURL() string {
	v, _ := p.Get(ParamOutcomeServiceURL)
	return v
}

// ResultSourcedID identifies the gradebook cell for this launch.
func (p *Params) ResultSourcedID() string {
	v, _ := p.Get(ParamResultSourcedID)
	return v
}

// ConsumerKey is the OAuth consumer key the launch was signed with.
func (p *Params) ConsumerKey() string {
	v, _ := p.Get(ParamConsumerKey)
	return v
}

// Keys returns all parameter names in sorted order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Form returns the parameters as form values.
func (p *Params) Form() url.Values {
	form := make(url.Values, len(p.values))
	for k, v := range p.values {
		form.Set(k, v)
	}
	return form
}

// Encode returns the URL-encoded launch body.
func (p *Params) Encode() string {
	return p.Form().Encode()
}
