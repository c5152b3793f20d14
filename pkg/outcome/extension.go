package outcome

// Extension contributes optional fields to outcome requests. One
// instance belongs to exactly one request.
type Extension interface {
	// Name identifies the extension within a chain.
	Name() string

	// HasResultData reports whether this extension would add
	// anything to the request's result element.
	HasResultData() bool

	// ContributeResultValues appends this extension's elements to
	// the result element. It must only add, never rewrite.
	ContributeResultValues(result *Node)

	// ExtractFields reads this extension's fields from an
	// inbound document. Missing elements leave fields unset.
	ExtractFields(doc *Document)
}

// ExtensionFactory creates per-request Extension instances.
// Factories are registered once and shared across requests.
type ExtensionFactory interface {
	Name() string
	NewExtension() Extension
}

// Chain is an ordered list of extensions. Order is registration
// order and is the order contributions appear in the document.
type Chain []Extension

// HasResultData ORs every link's answer.
func (c Chain) HasResultData() bool {
	for _, ext := range c {
		if ext.HasResultData() {
			return true
		}
	}
	return false
}

// ContributeResultValues lets each link append to result, in
// order.
func (c Chain) ContributeResultValues(result *Node) {
	for _, ext := range c {
		ext.ContributeResultValues(result)
	}
}

// ExtractFields offers doc to each link, in order.
func (c Chain) ExtractFields(doc *Document) {
	for _, ext := range c {
		ext.ExtractFields(doc)
	}
}

// Find returns the extension registered under name.
func (c Chain) Find(name string) (Extension, bool) {
	for _, ext := range c {
		if ext.Name() == name {
			return ext, true
		}
	}
	return nil, false
}

// Names lists extension names in chain order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, ext := range c {
		names[i] = ext.Name()
	}
	return names
}
