package monitor

import (
	"sync"
	"time"

	"digital.vasic.outcomes/pkg/outcome"
)

// EventCollector captures submission events. It implements
// outcome.Observer so it can be attached to a Service directly.
type EventCollector struct {
	mu       sync.RWMutex
	events   []SubmissionEvent
	handlers []func(SubmissionEvent)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total       int            `json:"total"`
	Succeeded   int            `json:"succeeded"`
	Processing  int            `json:"processing"`
	Unsupported int            `json:"unsupported"`
	Failed      int            `json:"failed"`
	Errors      int            `json:"errors"`
	WithData    map[string]int `json:"with_data"`
	StartTime   time.Time      `json:"start_time"`
	Duration    time.Duration  `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]SubmissionEvent, 0, 64),
		stats:  newStats(),
	}
}

func newStats() CollectorStats {
	return CollectorStats{StartTime: time.Now(), WithData: make(map[string]int)}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(SubmissionEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// OutcomeSubmitted records a service submission.
func (c *EventCollector) OutcomeSubmitted(s outcome.Submission) {
	c.Emit(EventFromSubmission(s))
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event SubmissionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	c.stats.Total++
	switch event.Type {
	case EventSubmitted:
		c.stats.Succeeded++
	case EventProcessing:
		c.stats.Processing++
	case EventUnsupported:
		c.stats.Unsupported++
	case EventFailed:
		c.stats.Failed++
	case EventError:
		c.stats.Errors++
	}
	for _, name := range event.Extensions {
		c.stats.WithData[name]++
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(SubmissionEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []SubmissionEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]SubmissionEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.WithData = make(map[string]int, len(c.stats.WithData))
	for k, v := range c.stats.WithData {
		s.WithData[k] = v
	}
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = newStats()
}
