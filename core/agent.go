package core

import "context"

// Agent is an addressable unit with exactly one inbound handler.
//
// Handle must be total: it either returns a reply (whose content may be
// empty) or an explicit error. Implementations must respect context
// cancellation for any blocking work they perform.
type Agent interface {
	Name() string
	Handle(ctx context.Context, msg Message) (Message, error)
}

// AgentFactory produces a fresh, unstarted agent instance. A Runtime invokes a
// factory at most once per address.
type AgentFactory func() Agent

// Stopper is implemented by agents holding resources that must be released
// when the runtime shuts down.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Describer is implemented by agents that can describe themselves.
type Describer interface {
	Description() string
}

// AgentFunc adapts a plain function into an Agent.
type AgentFunc struct {
	AgentName string
	Fn        func(ctx context.Context, msg Message) (Message, error)
}

// Name returns the agent name.
func (f AgentFunc) Name() string { return f.AgentName }

// Handle invokes the wrapped function.
func (f AgentFunc) Handle(ctx context.Context, msg Message) (Message, error) {
	return f.Fn(ctx, msg)
}
