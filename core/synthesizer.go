package core

import "context"

// Synthesizer produces the text of a new agent specification from a template
// and a set of instructions. Creativity maps to the sampling temperature of
// the underlying model.
type Synthesizer interface {
	Generate(ctx context.Context, template, instructions string, creativity float64) (string, error)
}

// SynthesizerFunc adapts a function into a Synthesizer.
type SynthesizerFunc func(ctx context.Context, template, instructions string, creativity float64) (string, error)

// Generate calls f.
func (f SynthesizerFunc) Generate(ctx context.Context, template, instructions string, creativity float64) (string, error) {
	return f(ctx, template, instructions, creativity)
}

// Constructible is a loaded specification that can build agent instances.
type Constructible interface {
	// Symbol is the kind exposed by the specification ("Agent" or "Creator").
	Symbol() string
	// Source is the specification text the constructible was loaded from.
	Source() string
	// New builds a fresh instance that will answer to name.
	New(name string) Agent
}

// SpecLoader turns specification text into a Constructible. Loading fails
// with *LoadError when the text does not parse or does not expose
// expectedSymbol.
type SpecLoader interface {
	Load(source, expectedSymbol string) (Constructible, error)
}

// TemplateSource supplies the generic agent template used for plain creation.
type TemplateSource interface {
	AgentTemplate() string
}
