package outcome

import (
	"fmt"
	"sync"
)

// Registry holds the extension factories of one provider or
// consumer. Registration normally happens once at start-up; after
// that the registry is only read and can be shared by concurrent
// requests.
type Registry struct {
	mu        sync.RWMutex
	factories []ExtensionFactory
	index     map[string]int
}

// NewRegistry creates an empty extension registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends factories in order. It fails on a nil factory,
// an empty name or a name that is already registered; factories
// before the failing one stay registered.
func (r *Registry) Register(factories ...ExtensionFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range factories {
		if f == nil {
			return fmt.Errorf("extension factory cannot be nil")
		}
		name := f.Name()
		if name == "" {
			return fmt.Errorf("extension name cannot be empty")
		}
		if _, exists := r.index[name]; exists {
			return fmt.Errorf("extension %q already registered", name)
		}
		r.index[name] = len(r.factories)
		r.factories = append(r.factories, f)
	}
	return nil
}

// Get retrieves a factory by name.
func (r *Registry) Get(name string) (ExtensionFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.factories[i], true
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.factories))
	for i, f := range r.factories {
		names[i] = f.Name()
	}
	return names
}

// Count returns the number of registered factories.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// NewChain instantiates a fresh extension for every factory, in
// registration order.
func (r *Registry) NewChain() Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := make(Chain, len(r.factories))
	for i, f := range r.factories {
		chain[i] = f.NewExtension()
	}
	return chain
}

// ParseRequest decodes an inbound outcome request, as received by
// a consumer, and lets a fresh chain extract its fields.
func (r *Registry) ParseRequest(body []byte) (*Request, error) {
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}
	req, err := requestFromDocument(doc)
	if err != nil {
		return nil, err
	}
	req.chain = r.NewChain()
	req.chain.ExtractFields(doc)
	return req, nil
}
