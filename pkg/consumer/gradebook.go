package consumer

import (
	"context"
	"sync"

	"digital.vasic.outcomes/pkg/outcome"
	"digital.vasic.outcomes/pkg/outcomedata"
)

// Decision is a gradebook's answer to one outcome request.
type Decision struct {
	Status      outcome.Status
	Description string
	// Score is returned to readResult callers.
	Score *float64
}

// Gradebook applies verified outcome requests.
type Gradebook interface {
	Apply(ctx context.Context, req *outcome.Request) Decision
}

// GradebookFunc adapts a function to Gradebook.
type GradebookFunc func(ctx context.Context, req *outcome.Request) Decision

// Apply calls f.
func (f GradebookFunc) Apply(ctx context.Context, req *outcome.Request) Decision {
	return f(ctx, req)
}

// Entry is a stored result.
type Entry struct {
	Score *float64
	Data  outcomedata.ResultData
}

// MemoryGradebook keeps results in memory, keyed by sourcedId.
type MemoryGradebook struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryGradebook creates an empty gradebook.
func NewMemoryGradebook() *MemoryGradebook {
	return &MemoryGradebook{entries: make(map[string]Entry)}
}

// Apply stores, reads or deletes the result named by the request.
func (g *MemoryGradebook) Apply(_ context.Context, req *outcome.Request) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch req.Operation {
	case outcome.OpReplaceResult:
		entry := Entry{Score: req.Score}
		if ext := outcomedata.From(req); ext != nil {
			entry.Data = ext.Data()
		}
		g.entries[req.SourcedID] = entry
		return Decision{Status: outcome.StatusSuccess, Description: "result replaced"}
	case outcome.OpReadResult:
		entry, ok := g.entries[req.SourcedID]
		if !ok {
			return Decision{Status: outcome.StatusFailure, Description: "no result recorded"}
		}
		return Decision{Status: outcome.StatusSuccess, Description: "result read", Score: entry.Score}
	case outcome.OpDeleteResult:
		delete(g.entries, req.SourcedID)
		return Decision{Status: outcome.StatusSuccess, Description: "result deleted"}
	default:
		return Decision{
			Status:      outcome.StatusUnsupported,
			Description: string(req.Operation) + " is not supported",
		}
	}
}

// Get returns the stored entry for sourcedID.
func (g *MemoryGradebook) Get(sourcedID string) (Entry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.entries[sourcedID]
	return e, ok
}

// Len returns the number of stored results.
func (g *MemoryGradebook) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}
