// Package audit provides audit logging for stream configuration changes.
package audit

import (
	"fmt"
	"time"
)

// Event represents one auditable northbound operation: a CUC setting,
// removing, or computing streams through the controller.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	DomainID  string        `json:"domain_id"`
	CucID     string        `json:"cuc_id,omitempty"`
	Operation string        `json:"operation"`
	StreamIDs []string      `json:"stream_ids,omitempty"`
	Result    string        `json:"result"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Operation names recorded by the controller's northbound surface.
const (
	OpSetStreams          = "set_streams"
	OpRemoveStreams       = "remove_streams"
	OpComputeStreams      = "compute_streams"
	OpRequestDomainID     = "request_domain_id"
	OpRequestFreeStreamID = "request_free_stream_id"
	OpGetStreams          = "get_streams"
)

// Filter defines criteria for querying audit events.
type Filter struct {
	DomainID    string
	CucID       string
	Operation   string
	StreamID    string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event.
func NewEvent(domainID, cucID, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		DomainID:  domainID,
		CucID:     cucID,
		Operation: operation,
	}
}

// WithStreams sets the stream ids the operation touched.
func (e *Event) WithStreams(ids []string) *Event {
	e.StreamIDs = ids
	return e
}

// WithResult records the operation's wire result string and marks
// success when it is not a failure result.
func (e *Event) WithResult(result string) *Event {
	e.Result = result
	e.Success = result != "Failure" && result != "no id"
	return e
}

// WithError marks the event as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets the operation duration.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
