package core

import (
	"time"

	"github.com/google/uuid"
)

// Event records one delivery handled by a Runtime. After emission it should be
// treated as immutable. It captures:
//
//   - Correlation (RequestID, ID)
//   - Routing (From, To, Depth)
//   - The exchanged content and its reply or error
//   - Timing (Timestamp, Duration)
//
// From is the zero Address for deliveries issued from outside the runtime.
type Event struct {
	ID        string        `json:"id"`
	RequestID string        `json:"request_id"`
	From      Address       `json:"from"`
	To        Address       `json:"to"`
	Content   string        `json:"content"`
	Reply     string        `json:"reply,omitempty"`
	Error     string        `json:"error,omitempty"`
	Depth     int           `json:"depth"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// NewEvent creates a delivery event stamped with the current UTC time.
func NewEvent(requestID string, from, to Address, content string) Event {
	return Event{
		ID:        NewID(),
		RequestID: requestID,
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for events and requests.
func NewID() string { return uuid.NewString() }

// Failed reports whether the delivery ended with an error.
func (e Event) Failed() bool { return e.Error != "" }

// External reports whether the delivery originated outside the runtime.
func (e Event) External() bool { return e.From.IsZero() }
