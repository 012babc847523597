package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrAgentStopped is returned by handlers of an agent that has been stopped.
var ErrAgentStopped = errors.New("agent is stopped")

// BaseAgent bundles shared identity and stop handling. Embed it in concrete
// agent implementations and supply a Handle method to satisfy core.Agent.
// All exported methods are goroutine-safe.
type BaseAgent struct {
	name        string     // Type name the agent answers to
	description string     // Detailed description of agent's purpose
	mu          sync.Mutex // Protects stopped
	stopped     bool
}

// NewBaseAgent constructs a BaseAgent with generated description (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Stop marks the agent as stopped. It implements core.Stopper and is
// idempotent.
func (b *BaseAgent) Stop(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	return nil
}

// Stopped reports whether Stop has been called.
func (b *BaseAgent) Stopped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopped
}
