package monitor

import (
	"sync"
	"time"

	"digital.vasic.outcomes/pkg/outcome"
)

// DashboardData is a live view of the latest outcome per result.
type DashboardData struct {
	mu        sync.RWMutex
	startTime time.Time
	results   map[string]ResultState
	summary   DashboardSummary
}

// DashboardSnapshot is a point-in-time copy of DashboardData.
type DashboardSnapshot struct {
	StartTime time.Time              `json:"start_time"`
	Results   map[string]ResultState `json:"results"`
	Summary   DashboardSummary       `json:"summary"`
}

// ResultState is the last known state of one sourcedId.
type ResultState struct {
	SourcedID   string            `json:"sourcedid"`
	Operation   outcome.Operation `json:"operation"`
	Status      outcome.Status    `json:"status"`
	Score       *float64          `json:"score,omitempty"`
	Extensions  []string          `json:"extensions,omitempty"`
	Description string            `json:"description,omitempty"`
	Attempts    int               `json:"attempts"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Results     int     `json:"results"`
	Succeeded   int     `json:"succeeded"`
	Pending     int     `json:"pending"`
	Unsupported int     `json:"unsupported"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	Elapsed     string  `json:"elapsed"`
}

// NewDashboardData creates an empty dashboard.
func NewDashboardData() *DashboardData {
	return &DashboardData{
		startTime: time.Now(),
		results:   make(map[string]ResultState),
	}
}

// UpdateFromEvent folds an event into the per-result state.
func (d *DashboardData) UpdateFromEvent(event SubmissionEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.results[event.SourcedID]
	state.SourcedID = event.SourcedID
	state.Operation = event.Operation
	state.Status = event.Status
	state.Description = event.Description
	state.Extensions = event.Extensions
	state.Attempts++
	state.UpdatedAt = event.Timestamp

	if event.Status == outcome.StatusSuccess {
		switch event.Operation {
		case outcome.OpReplaceResult:
			state.Score = event.Score
		case outcome.OpDeleteResult:
			state.Score = nil
		}
	}

	d.results[event.SourcedID] = state
	d.recalcSummary()
}

func (d *DashboardData) recalcSummary() {
	s := DashboardSummary{}
	for _, r := range d.results {
		s.Results++
		switch r.Status {
		case outcome.StatusSuccess:
			s.Succeeded++
		case outcome.StatusProcessing:
			s.Pending++
		case outcome.StatusUnsupported:
			s.Unsupported++
		default:
			s.Failed++
		}
	}
	if s.Results > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.Results) * 100
	}
	s.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	d.summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := DashboardSnapshot{
		StartTime: d.startTime,
		Summary:   d.summary,
		Results:   make(map[string]ResultState, len(d.results)),
	}
	for k, v := range d.results {
		snap.Results[k] = v
	}
	return snap
}

// BuildDashboardData creates a DashboardData snapshot from an
// EventCollector by replaying all collected events.
func BuildDashboardData(collector *EventCollector) *DashboardData {
	data := NewDashboardData()
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
