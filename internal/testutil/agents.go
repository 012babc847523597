package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sudhirerahul/meta-creation-agents/core"
)

// EchoAgent replies with "<name>: <content>" and records how often it was
// stopped.
type EchoAgent struct {
	AgentName string
	StopErr   error
	Stops     atomic.Int32
}

// Name returns the agent name.
func (a *EchoAgent) Name() string { return a.AgentName }

// Handle echoes msg.
func (a *EchoAgent) Handle(_ context.Context, msg core.Message) (core.Message, error) {
	return core.NewMessage(fmt.Sprintf("%s: %s", a.AgentName, msg.Content)), nil
}

// Stop implements core.Stopper.
func (a *EchoAgent) Stop(context.Context) error {
	a.Stops.Add(1)
	return a.StopErr
}

// CountingFactory builds EchoAgents and counts invocations.
type CountingFactory struct {
	Name  string
	calls atomic.Int32
	mu    sync.Mutex
	built []*EchoAgent
}

// Factory returns the core.AgentFactory.
func (f *CountingFactory) Factory() core.AgentFactory {
	return func() core.Agent {
		f.calls.Add(1)
		a := &EchoAgent{AgentName: f.Name}
		f.mu.Lock()
		f.built = append(f.built, a)
		f.mu.Unlock()
		return a
	}
}

// Calls returns how many times the factory ran.
func (f *CountingFactory) Calls() int { return int(f.calls.Load()) }

// Built returns the agents built so far.
func (f *CountingFactory) Built() []*EchoAgent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*EchoAgent(nil), f.built...)
}
