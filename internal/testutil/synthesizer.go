package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SynthCall records one Generate invocation.
type SynthCall struct {
	Template     string
	Instructions string
	Creativity   float64
}

// ScriptedSynthesizer answers Generate through Script and records each call.
// When Script is nil it returns Default.
type ScriptedSynthesizer struct {
	Script  func(ctx context.Context, call SynthCall) (string, error)
	Default string

	mu    sync.Mutex
	calls []SynthCall
}

// Generate implements core.Synthesizer.
func (s *ScriptedSynthesizer) Generate(ctx context.Context, template, instructions string, creativity float64) (string, error) {
	call := SynthCall{Template: template, Instructions: instructions, Creativity: creativity}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Script != nil {
		return s.Script(ctx, call)
	}
	return s.Default, nil
}

// Calls returns the recorded calls.
func (s *ScriptedSynthesizer) Calls() []SynthCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SynthCall(nil), s.calls...)
}

// AgentSpec returns a minimal plain agent specification.
func AgentSpec(description string) string {
	return fmt.Sprintf(`kind: Agent
name: Agent
description: %q
capabilities: [routed]
constructor: [name]
system_message: "You are a helpful agent."
temperature: 0.9
`, description)
}

// CreatorSpec returns a minimal Creator specification.
func CreatorSpec(description string) string {
	return fmt.Sprintf(`kind: Creator
name: Creator
description: %q
capabilities: [routed]
constructor: [name]
handlers: [handle_message]
system_message: "Create agents."
temperature: 1.0
meta_system_message: "Create creators."
meta_temperature: 1.1
`, description)
}

// Fenced wraps s in a markdown code fence tagged lang.
func Fenced(lang, s string) string {
	return "```" + lang + "\n" + strings.TrimSpace(s) + "\n```"
}

// KindSynthesizer returns a synthesizer that answers with a Creator
// specification when the template is itself a Creator specification, and a
// plain agent specification otherwise. Outputs are fenced like model replies.
func KindSynthesizer() *ScriptedSynthesizer {
	return &ScriptedSynthesizer{Script: func(_ context.Context, call SynthCall) (string, error) {
		if strings.Contains(call.Template, "kind: Creator") {
			return Fenced("yaml", CreatorSpec("a generated creator")), nil
		}
		return Fenced("yaml", AgentSpec("a generated agent")), nil
	}}
}
