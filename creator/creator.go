package creator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sudhirerahul/meta-creation-agents/agent"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
)

// Stage names a step of the creation sequence.
type Stage string

const (
	StageClassify   Stage = "classify"
	StageSynthesize Stage = "synthesize"
	StageRegister   Stage = "register"
	StageProbe      Stage = "probe"
)

// DefaultProbeMessage is sent to every new plain agent.
const DefaultProbeMessage = "Give me an idea"

// StageError reports the stage at which a creation request failed. Type is
// the derived type name when classification got that far.
type StageError struct {
	Stage Stage
	Type  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("creator: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("creator: %s %q: %v", e.Stage, e.Type, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Runtime is the part of a runtime a Creator needs.
type Runtime interface {
	core.Registrar
	core.Sender
}

// Options configure a Creator.
type Options struct {
	Runtime     Runtime
	Synthesizer core.Synthesizer
	Templates   core.TemplateSource
	Loader      core.SpecLoader

	// Artifacts, when set, receives every sanitized specification under the
	// Creator's name and the hint.
	Artifacts core.ArtifactStore
	// Lineage, when set, records an edge for every registered type.
	Lineage core.LineageStore

	Plain Profile
	Meta  Profile

	Description  string
	Extension    string
	ProbeMessage string
	// MaxChainDepth bounds nested meta-creation. Zero means unbounded.
	MaxChainDepth int

	Logger logging.Logger
}

// Creator is an agent whose reply to a hint is the reply of a freshly
// created agent.
type Creator struct {
	agent.BaseAgent
	source string
	opts   Options
	logger logging.Logger
}

var _ core.Agent = (*Creator)(nil)
var _ core.Stopper = (*Creator)(nil)

// New returns a Creator answering to name. source is the Creator's own
// specification, used as the template for meta-creation.
func New(name, source string, optFns ...func(o *Options)) *Creator {
	opts := Options{
		Plain:         DefaultPlainProfile,
		Meta:          DefaultMetaProfile,
		Extension:     DefaultExtension,
		ProbeMessage:  DefaultProbeMessage,
		MaxChainDepth: 8,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Creator{
		BaseAgent: agent.NewBaseAgent(name),
		source:    source,
		opts:      opts,
		logger:    logging.With(opts.Logger, "creator"),
	}
	if opts.Description != "" {
		c.SetDescription(opts.Description)
	}
	return c
}

// Source returns the Creator's own specification.
func (c *Creator) Source() string { return c.source }

// Options returns a copy of the Creator's configuration.
func (c *Creator) Options() Options { return c.opts }

func (c *Creator) check() error {
	switch {
	case c.opts.Runtime == nil:
		return errors.New("no runtime bound")
	case c.opts.Synthesizer == nil:
		return errors.New("no synthesizer bound")
	case c.opts.Loader == nil:
		return errors.New("no spec loader bound")
	case c.opts.Templates == nil:
		return errors.New("no template source bound")
	}
	return nil
}

// Handle implements core.Agent. The message content is the creation hint.
func (c *Creator) Handle(ctx context.Context, msg core.Message) (core.Message, error) {
	if c.Stopped() {
		return core.Message{}, agent.ErrAgentStopped
	}
	if err := c.check(); err != nil {
		return core.Message{}, fmt.Errorf("creator %s: %w", c.Name(), err)
	}

	req, err := Classify(msg.Content, c.opts.Extension)
	if err != nil {
		return core.Message{}, &StageError{Stage: StageClassify, Err: err}
	}

	depth := core.ChainDepth(ctx)
	if req.Meta {
		depth++
		if c.opts.MaxChainDepth > 0 && depth > c.opts.MaxChainDepth {
			return core.Message{}, &StageError{Stage: StageClassify, Type: req.Name,
				Err: fmt.Errorf("%w: depth %d exceeds %d", core.ErrChainDepthExceeded, depth, c.opts.MaxChainDepth)}
		}
	}
	if err := core.SpawnLimiterFrom(ctx).Increment(); err != nil {
		return core.Message{}, &StageError{Stage: StageClassify, Type: req.Name, Err: err}
	}

	c.logger.Info("Creation requested", "creator", c.Name(), "hint", req.Hint, "type", req.Name, "meta", req.Meta, "depth", depth)

	spec, err := c.synthesize(ctx, req, depth)
	if err != nil {
		return core.Message{}, &StageError{Stage: StageSynthesize, Type: req.Name, Err: err}
	}

	if err := c.register(ctx, req, spec, depth); err != nil {
		return core.Message{}, &StageError{Stage: StageRegister, Type: req.Name, Err: err}
	}

	reply, err := c.probe(ctx, req, depth)
	if err != nil {
		return core.Message{}, &StageError{Stage: StageProbe, Type: req.Name, Err: err}
	}

	if req.Meta {
		return core.NewMessage(fmt.Sprintf("Meta-creation complete! New Creator '%s' is live and created: %s", req.Name, reply.Content)), nil
	}
	return reply, nil
}

func (c *Creator) synthesize(ctx context.Context, req Request, depth int) (string, error) {
	profile, template := c.opts.Plain, c.opts.Templates.AgentTemplate()
	if req.Meta {
		profile, template = c.opts.Meta, c.source
	}

	instructions, err := profile.render(promptVars{
		Name:    req.Name,
		Hint:    req.Hint,
		Creator: c.Name(),
		Depth:   depth,
	}, req.Meta)
	if err != nil {
		return "", &core.GenerationError{Err: err}
	}

	start := time.Now()
	raw, err := c.opts.Synthesizer.Generate(ctx, template, instructions, profile.Temperature)
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	c.logSynthesis(req, time.Since(start), err)
	if err != nil {
		return "", &core.GenerationError{Err: err}
	}

	clean := Sanitize(raw)
	if clean == "" {
		return "", &core.GenerationError{Err: core.ErrEmptyGeneration}
	}

	if c.opts.Artifacts != nil {
		if err := c.opts.Artifacts.Save(c.Name(), req.Name+c.opts.Extension, []byte(clean)); err != nil {
			c.logger.Warn("Failed to persist specification", "creator", c.Name(), "type", req.Name, "error", err)
		}
	}
	return clean, nil
}

func (c *Creator) register(ctx context.Context, req Request, spec string, depth int) error {
	cons, err := c.opts.Loader.Load(spec, req.Symbol())
	if err != nil {
		return &core.RegistrationError{Type: req.Name, Err: err}
	}

	name := req.Name
	if err := c.opts.Runtime.Register(ctx, name, func() core.Agent { return cons.New(name) }); err != nil {
		return &core.RegistrationError{Type: name, Err: err}
	}

	if sl, ok := c.logger.(*logging.StructuredLogger); ok {
		sl.LogCreation(c.Name(), name, string(req.Kind()), depth)
	} else {
		c.logger.Info("Agent created", "parent", c.Name(), "child", name, "kind", req.Kind(), "depth", depth)
	}

	if c.opts.Lineage != nil {
		requestID, _ := core.RequestIDFrom(ctx)
		edge := core.Edge{
			Parent:    c.Name(),
			Child:     name,
			Kind:      req.Kind(),
			Depth:     depth,
			RequestID: requestID,
			CreatedAt: time.Now(),
		}
		if err := c.opts.Lineage.Record(edge); err != nil {
			c.logger.Warn("Failed to record lineage", "parent", c.Name(), "child", name, "error", err)
		}
	}
	return nil
}

func (c *Creator) probe(ctx context.Context, req Request, depth int) (core.Message, error) {
	addr := core.NewAddress(req.Name)
	if !req.Meta {
		return c.opts.Runtime.Send(ctx, addr, core.NewMessage(c.opts.ProbeMessage))
	}
	return c.opts.Runtime.Send(core.WithChainDepth(ctx, depth), addr, core.NewMessage(ProbeHint(req.Name, c.opts.Extension)))
}

func (c *Creator) logSynthesis(req Request, dur time.Duration, err error) {
	if sl, ok := c.logger.(*logging.StructuredLogger); ok {
		sl.LogSynthesis(c.Name(), string(req.Kind()), dur, err == nil, err)
		return
	}
	if err != nil {
		c.logger.Error("Synthesis failed", "creator", c.Name(), "type", req.Name, "duration", dur, "error", err)
		return
	}
	c.logger.Debug("Synthesis completed", "creator", c.Name(), "type", req.Name, "duration", dur)
}
