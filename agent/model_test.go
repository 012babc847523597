package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/model"
)

// MockModelImpl for testing LLM functionality
type MockModelImpl struct{ mock.Mock }

func (m *MockModelImpl) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		respCh <- model.Response{Text: args.String(0), FinishReason: "stop"}
	}
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (m *MockModelImpl) Info() model.Info {
	args := m.Called()
	return args.Get(0).(model.Info)
}

func TestModelAgent_HandleUsesSystemMessage(t *testing.T) {
	llm := &MockModelImpl{}
	temp := 0.9
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req model.Request) bool {
		return req.Instructions == "You are agent_a, a travel planner." &&
			req.Prompt == "Give me an idea" &&
			req.Temperature != nil && *req.Temperature == 0.9
	})).Return("Visit Lisbon", nil)

	a := NewModelAgent("agent_a", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("You are {{.Name}}, a travel planner.")
		o.Temperature = &temp
		o.Description = "travel"
	})

	reply, err := a.Handle(context.Background(), core.NewMessage("Give me an idea"))
	require.NoError(t, err)
	assert.Equal(t, "Visit Lisbon", reply.Content)
	assert.Equal(t, "travel", a.Description())
	llm.AssertExpectations(t)
}

func TestModelAgent_DefaultInstruction(t *testing.T) {
	m := model.NewMockModel("mock", "mock")
	a := NewModelAgent("agent_b", m)

	_, err := a.Handle(context.Background(), core.NewMessage("hi"))
	require.NoError(t, err)
	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "You are agent_b, a helpful AI assistant.", reqs[0].Instructions)
	assert.Same(t, m, a.Model())
}

func TestModelAgent_ModelErrorIsWrapped(t *testing.T) {
	llm := &MockModelImpl{}
	boom := errors.New("rate limited")
	llm.On("Generate", mock.Anything, mock.Anything).Return("", boom)

	a := NewModelAgent("agent_c", llm)
	_, err := a.Handle(context.Background(), core.NewMessage("hi"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "agent_c")
}

func TestModelAgent_StoppedRefuses(t *testing.T) {
	a := NewModelAgent("agent_d", model.NewMockModel("mock", "mock"))
	require.NoError(t, a.Stop(context.Background()))

	_, err := a.Handle(context.Background(), core.NewMessage("hi"))
	assert.ErrorIs(t, err, ErrAgentStopped)
}
