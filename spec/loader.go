package spec

import (
	"errors"
	"fmt"

	"github.com/sudhirerahul/meta-creation-agents/agent"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/creator"
	"github.com/sudhirerahul/meta-creation-agents/logging"
	"github.com/sudhirerahul/meta-creation-agents/model"
)

// Options bind a Loader to the services the loaded agents run against.
type Options struct {
	// Model backs plain agents whose specification names no model, or names
	// one missing from Models.
	Model model.Model
	// Models maps the optional "model" field of a specification to a backend.
	Models map[string]model.Model

	// Creator bindings. Runtime, Synthesizer and Templates are required to
	// load a Creator.
	Runtime     creator.Runtime
	Synthesizer core.Synthesizer
	Templates   core.TemplateSource
	Artifacts   core.ArtifactStore
	Lineage     core.LineageStore
	// CreatorOptions is applied to every Creator after the bindings above.
	CreatorOptions []func(o *creator.Options)

	Logger logging.Logger
}

// Loader implements core.SpecLoader for YAML specifications.
type Loader struct {
	opts Options
}

var _ core.SpecLoader = (*Loader)(nil)

// NewLoader returns a Loader.
func NewLoader(optFns ...func(o *Options)) *Loader {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loader{opts: opts}
}

// Load parses source and checks that it exposes expectedSymbol. Failures are
// reported as *core.LoadError.
func (l *Loader) Load(source, expectedSymbol string) (core.Constructible, error) {
	def, err := Parse(source)
	if err != nil {
		return nil, &core.LoadError{Symbol: expectedSymbol, Err: err}
	}
	if err := def.Validate(expectedSymbol); err != nil {
		return nil, &core.LoadError{Symbol: expectedSymbol, Err: err}
	}

	switch def.Kind {
	case KindAgent:
		m, err := l.modelFor(def)
		if err != nil {
			return nil, &core.LoadError{Symbol: expectedSymbol, Err: err}
		}
		return &agentSpec{def: def, source: source, model: m, logger: l.opts.Logger}, nil
	default:
		if err := l.checkCreatorBindings(); err != nil {
			return nil, &core.LoadError{Symbol: expectedSymbol, Err: err}
		}
		return &creatorSpec{def: def, source: source, loader: l}, nil
	}
}

func (l *Loader) modelFor(def *Definition) (model.Model, error) {
	if def.Model != "" {
		if m, ok := l.opts.Models[def.Model]; ok {
			return m, nil
		}
		l.opts.Logger.Debug("Unknown model in specification, using default", "model", def.Model)
	}
	if l.opts.Model == nil {
		return nil, errors.New("no model bound for agents")
	}
	return l.opts.Model, nil
}

func (l *Loader) checkCreatorBindings() error {
	switch {
	case l.opts.Runtime == nil:
		return errors.New("no runtime bound for creators")
	case l.opts.Synthesizer == nil:
		return errors.New("no synthesizer bound for creators")
	case l.opts.Templates == nil:
		return errors.New("no template source bound for creators")
	}
	return nil
}

// NewCreator builds a Creator from a Creator specification. It is used for
// the root Creator, whose specification does not come from a synthesizer.
func (l *Loader) NewCreator(name, source string) (*creator.Creator, error) {
	cons, err := l.Load(source, KindCreator)
	if err != nil {
		return nil, err
	}
	c, ok := cons.New(name).(*creator.Creator)
	if !ok {
		return nil, fmt.Errorf("specification for %s did not build a creator", name)
	}
	return c, nil
}

// Definer is implemented by constructibles loaded by this package.
type Definer interface {
	Definition() Definition
}

type agentSpec struct {
	def    *Definition
	source string
	model  model.Model
	logger logging.Logger
}

func (s *agentSpec) Symbol() string         { return s.def.Kind }
func (s *agentSpec) Source() string         { return s.source }
func (s *agentSpec) Definition() Definition { return *s.def }

func (s *agentSpec) New(name string) core.Agent {
	return agent.NewModelAgent(name, s.model, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(s.def.SystemMessage)
		o.Description = s.def.Description
		o.Temperature = s.def.Temperature
		o.MaxTokens = s.def.MaxTokens
		o.Logger = s.logger
	})
}

type creatorSpec struct {
	def    *Definition
	source string
	loader *Loader
}

func (s *creatorSpec) Symbol() string         { return s.def.Kind }
func (s *creatorSpec) Source() string         { return s.source }
func (s *creatorSpec) Definition() Definition { return *s.def }

func (s *creatorSpec) New(name string) core.Agent {
	b := s.loader.opts
	return creator.New(name, s.source, func(o *creator.Options) {
		o.Runtime = b.Runtime
		o.Synthesizer = b.Synthesizer
		o.Templates = b.Templates
		o.Loader = s.loader
		o.Artifacts = b.Artifacts
		o.Lineage = b.Lineage
		o.Logger = b.Logger
		o.Description = s.def.Description

		o.Plain = profile(s.def.SystemMessage, s.def.Temperature, creator.DefaultPlainProfile.Temperature)
		o.Meta = profile(s.def.MetaSystemMessage, s.def.MetaTemperature, creator.DefaultMetaProfile.Temperature)

		for _, fn := range b.CreatorOptions {
			fn(o)
		}
	})
}

func profile(text string, temperature *float64, fallback float64) creator.Profile {
	p := creator.Profile{Instructions: text, Temperature: fallback}
	if temperature != nil {
		p.Temperature = *temperature
	}
	return p
}
