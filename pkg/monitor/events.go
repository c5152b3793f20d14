package monitor

import (
	"time"

	"digital.vasic.outcomes/pkg/outcome"
)

// EventType represents the type of submission event.
type EventType string

const (
	EventSubmitted   EventType = "submitted"
	EventProcessing  EventType = "processing"
	EventUnsupported EventType = "unsupported"
	EventFailed      EventType = "failed"
	EventError       EventType = "error"
)

// SubmissionEvent describes one outcome round trip.
type SubmissionEvent struct {
	Type        EventType         `json:"type"`
	Operation   outcome.Operation `json:"operation"`
	SourcedID   string            `json:"sourcedid"`
	MessageID   string            `json:"message_id"`
	Status      outcome.Status    `json:"status"`
	Description string            `json:"description,omitempty"`
	Score       *float64          `json:"score,omitempty"`
	Extensions  []string          `json:"extensions,omitempty"`
	Duration    time.Duration     `json:"duration,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// EventFromSubmission converts a service submission into an event.
func EventFromSubmission(s outcome.Submission) SubmissionEvent {
	e := SubmissionEvent{
		Operation:  s.Operation,
		SourcedID:  s.SourcedID,
		MessageID:  s.MessageID,
		Score:      s.Score,
		Extensions: s.Extensions,
		Duration:   s.Duration,
		Timestamp:  time.Now(),
	}
	if s.Response != nil {
		e.Status = s.Response.Status
		e.Description = s.Response.Description
	}

	switch {
	case s.Err != nil:
		e.Type = EventError
		e.Status = outcome.StatusFailure
		e.Description = s.Err.Error()
	case e.Status == outcome.StatusSuccess:
		e.Type = EventSubmitted
	case e.Status == outcome.StatusProcessing:
		e.Type = EventProcessing
	case e.Status == outcome.StatusUnsupported:
		e.Type = EventUnsupported
	default:
		e.Type = EventFailed
	}
	return e
}
