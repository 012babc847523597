package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sudhirerahul/meta-creation-agents/core"
)

var _ core.Describer = (*BaseAgent)(nil)
var _ core.Stopper = (*BaseAgent)(nil)

func TestBaseAgent_Identity(t *testing.T) {
	b := NewBaseAgent("agent_a")
	assert.Equal(t, "agent_a", b.Name())
	assert.Equal(t, "Agent agent_a", b.Description())

	b.SetDescription("sells ideas")
	assert.Equal(t, "sells ideas", b.Description())
}

func TestBaseAgent_StopIsIdempotent(t *testing.T) {
	b := NewBaseAgent("agent_a")
	assert.False(t, b.Stopped())
	assert.NoError(t, b.Stop(context.Background()))
	assert.NoError(t, b.Stop(context.Background()))
	assert.True(t, b.Stopped())
}
