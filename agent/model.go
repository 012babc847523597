package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
	"github.com/sudhirerahul/meta-creation-agents/model"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction     Instruction
	Description     string
	Temperature     *float64
	MaxTokens       int64
	EnableStreaming bool
	Logger          logging.Logger
}

// ModelAgent answers every message by asking a language model to respond to
// the message content under its system instruction.
//
// ModelAgent embeds BaseAgent to inherit identity and stop handling.
type ModelAgent struct {
	BaseAgent
	llm             model.Model
	instruction     Instruction
	temperature     *float64
	maxTokens       int64
	enableStreaming bool
	logger          logging.Logger
}

var _ core.Agent = (*ModelAgent)(nil)
var _ core.Stopper = (*ModelAgent)(nil)

// NewModelAgent creates a new model-based agent with sensible defaults.
//
// Parameters:
//   - name: type name used in the default system prompt
//   - llm: Language model implementation for text generation
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction: NewInstructionFromText("You are {{.Name}}, a helpful AI assistant."),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:       NewBaseAgent(name),
		llm:             llm,
		instruction:     opts.Instruction,
		temperature:     opts.Temperature,
		maxTokens:       opts.MaxTokens,
		enableStreaming: opts.EnableStreaming,
		logger:          opts.Logger,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	return a
}

// Model returns the language model backing the agent.
func (a *ModelAgent) Model() model.Model { return a.llm }

// ResolveInstructions renders the system instruction for this agent.
func (a *ModelAgent) ResolveInstructions(ctx context.Context) (string, error) {
	return a.instruction.Resolve(ctx, map[string]any{
		"Name":        a.Name(),
		"Description": a.Description(),
	})
}

// Handle implements core.Agent.
func (a *ModelAgent) Handle(ctx context.Context, msg core.Message) (core.Message, error) {
	if a.Stopped() {
		return core.Message{}, ErrAgentStopped
	}

	instructions, err := a.ResolveInstructions(ctx)
	if err != nil {
		return core.Message{}, fmt.Errorf("resolve instructions for %s: %w", a.Name(), err)
	}

	start := time.Now()
	resp, err := model.Collect(ctx, a.llm, model.Request{
		Instructions: instructions,
		Prompt:       msg.Content,
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
		Stream:       a.enableStreaming,
	})
	if err != nil {
		a.logger.Error("Model call failed", "agent", a.Name(), "duration", time.Since(start), "error", err)
		return core.Message{}, fmt.Errorf("agent %s: %w", a.Name(), err)
	}

	a.logger.Debug("Model call completed", "agent", a.Name(), "duration", time.Since(start), "finish_reason", resp.FinishReason)
	return core.NewMessage(resp.Text), nil
}
