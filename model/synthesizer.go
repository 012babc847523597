package model

import (
	"context"
	"time"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
)

// SynthesizerOptions configure a Synthesizer.
type SynthesizerOptions struct {
	MaxTokens int64
	Stream    bool
	Logger    logging.Logger
}

// Synthesizer adapts a Model into a core.Synthesizer. The instructions become
// the system prompt, the template the user turn and the creativity the
// sampling temperature.
type Synthesizer struct {
	model Model
	opts  SynthesizerOptions
}

var _ core.Synthesizer = (*Synthesizer)(nil)

// NewSynthesizer wraps m.
func NewSynthesizer(m Model, optFns ...func(o *SynthesizerOptions)) *Synthesizer {
	opts := SynthesizerOptions{
		MaxTokens: 4096,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Synthesizer{model: m, opts: opts}
}

// Generate implements core.Synthesizer.
func (s *Synthesizer) Generate(ctx context.Context, template, instructions string, creativity float64) (string, error) {
	temp := creativity
	start := time.Now()
	resp, err := Collect(ctx, s.model, Request{
		Instructions: instructions,
		Prompt:       template,
		Temperature:  &temp,
		MaxTokens:    s.opts.MaxTokens,
		Stream:       s.opts.Stream,
	})
	info := s.model.Info()
	if err != nil {
		s.opts.Logger.Error("Model call failed", "model", info.Name, "provider", info.Provider, "duration", time.Since(start), "error", err)
		return "", err
	}
	var tokens int64
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	s.opts.Logger.Debug("Model call completed", "model", info.Name, "provider", info.Provider, "duration", time.Since(start), "token_count", tokens, "finish_reason", resp.FinishReason)
	return resp.Text, nil
}
