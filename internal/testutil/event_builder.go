package testutil

import (
	"time"

	"github.com/sudhirerahul/meta-creation-agents/core"
)

// EventBuilder provides a fluent helper for constructing delivery events in tests.
// Example:
//
//	ev := NewEventBuilder().Request("req-1").To("agent_a").Content("hi").Reply("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EventBuilder struct {
	id        string
	requestID string
	from      core.Address
	to        core.Address
	content   string
	reply     string
	err       string
	depth     int
	duration  time.Duration
}

// NewEventBuilder creates a builder addressed to the default Creator.
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{requestID: "req", to: core.NewAddress("Creator")}
}

// ID overrides the auto-generated event ID (chainable).
func (b *EventBuilder) ID(id string) *EventBuilder { b.id = id; return b }

// Request sets the request id (chainable).
func (b *EventBuilder) Request(id string) *EventBuilder { b.requestID = id; return b }

// From sets the sending agent type (chainable).
func (b *EventBuilder) From(typ string) *EventBuilder { b.from = core.NewAddress(typ); return b }

// To sets the receiving agent type (chainable).
func (b *EventBuilder) To(typ string) *EventBuilder { b.to = core.NewAddress(typ); return b }

// Content sets the delivered content (chainable).
func (b *EventBuilder) Content(c string) *EventBuilder { b.content = c; return b }

// Reply sets the reply content (chainable).
func (b *EventBuilder) Reply(r string) *EventBuilder { b.reply = r; return b }

// Error marks the delivery as failed (chainable).
func (b *EventBuilder) Error(e string) *EventBuilder { b.err = e; return b }

// Depth sets the chain depth (chainable).
func (b *EventBuilder) Depth(d int) *EventBuilder { b.depth = d; return b }

// Duration sets the handler duration (chainable).
func (b *EventBuilder) Duration(d time.Duration) *EventBuilder { b.duration = d; return b }

// Build materializes the event.
func (b *EventBuilder) Build() core.Event {
	ev := core.NewEvent(b.requestID, b.from, b.to, b.content)
	if b.id != "" {
		ev.ID = b.id
	}
	ev.Reply = b.reply
	ev.Error = b.err
	ev.Depth = b.depth
	ev.Duration = b.duration
	return ev
}
