// Package metacreation wires a complete meta-creation world: an in-process
// runtime, a spec loader, templates, a synthesizer and the stores that keep
// track of what was created. Most applications interact with this package by:
//  1. Creating a MetaCreation via New() with a model (and optionally a
//     synthesizer, stores and limits)
//  2. Starting it
//  3. Sending file name hints to the root Creator with Create
//
// A hint such as "agent1.yaml" yields a new plain agent and returns its first
// idea; a hint such as "creator2.yaml" yields a new Creator that immediately
// creates an agent of its own.
package metacreation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sudhirerahul/meta-creation-agents/artifact"
	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/creator"
	"github.com/sudhirerahul/meta-creation-agents/engine"
	"github.com/sudhirerahul/meta-creation-agents/lineage"
	"github.com/sudhirerahul/meta-creation-agents/logging"
	"github.com/sudhirerahul/meta-creation-agents/model"
	"github.com/sudhirerahul/meta-creation-agents/runner"
	"github.com/sudhirerahul/meta-creation-agents/session"
	"github.com/sudhirerahul/meta-creation-agents/spec"
	"github.com/sudhirerahul/meta-creation-agents/templates"
	"github.com/sudhirerahul/meta-creation-agents/transport"
)

// RootType is the type name the root Creator is registered under.
const RootType = "Creator"

// Options configures the MetaCreation instance.
type Options struct {
	// Engine configuration (spawn budget, concurrent requests).
	EngineConfig engine.Config

	// Model backs every plain agent. Required.
	Model model.Model
	// Synthesizer writes new specifications. Defaults to a model.Synthesizer
	// over Model.
	Synthesizer core.Synthesizer

	// TemplateDir optionally overrides the embedded templates. With
	// WatchTemplates set, edits are picked up while running.
	TemplateDir    string
	WatchTemplates bool
	// RootSpec replaces the root Creator specification.
	RootSpec string

	// MaxChainDepth bounds nested meta-creation (0 = unbounded).
	MaxChainDepth int
	// Extension is the artifact extension that marks meta-creation hints.
	Extension string

	// Stores (defaults to in-memory implementations if not provided)
	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore
	LineageStore  core.LineageStore

	// Callbacks are installed on the engine.
	Callbacks *engine.CallbackManager

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// MetaCreation is the high-level façade aggregating the runtime and services.
type MetaCreation struct {
	opts      Options
	engine    *engine.Engine
	loader    *spec.Loader
	templates *templates.Store
	root      *creator.Creator

	mu          sync.Mutex
	stopWatcher context.CancelFunc
	watchDone   chan struct{}
}

// New creates a new MetaCreation instance with optional overrides. Any unset
// store is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) (*MetaCreation, error) {
	opts := Options{
		EngineConfig:  engine.DefaultConfig,
		MaxChainDepth: 8,
		Extension:     creator.DefaultExtension,
		SessionStore:  session.NewInMemoryStore(),
		ArtifactStore: artifact.NewInMemoryStore(),
		LineageStore:  lineage.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Model == nil {
		return nil, errors.New("metacreation: a model is required")
	}
	if opts.Synthesizer == nil {
		opts.Synthesizer = model.NewSynthesizer(opts.Model, func(o *model.SynthesizerOptions) {
			o.Logger = opts.Logger
		})
	}

	tpl, err := templates.New(func(o *templates.Options) {
		o.Dir = opts.TemplateDir
		o.Validate = validateTemplate
		o.Logger = logging.With(opts.Logger, "templates")
	})
	if err != nil {
		return nil, fmt.Errorf("metacreation: %w", err)
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.SessionStore = opts.SessionStore
		if opts.Callbacks != nil {
			o.Callbacks = opts.Callbacks
		}
		o.Logger = opts.Logger
	})

	loader := spec.NewLoader(func(o *spec.Options) {
		o.Model = opts.Model
		o.Runtime = eng
		o.Synthesizer = opts.Synthesizer
		o.Templates = tpl
		o.Artifacts = opts.ArtifactStore
		o.Lineage = opts.LineageStore
		o.Logger = opts.Logger
		o.CreatorOptions = []func(o *creator.Options){func(co *creator.Options) {
			co.MaxChainDepth = opts.MaxChainDepth
			co.Extension = opts.Extension
		}}
	})

	rootSpec := opts.RootSpec
	if rootSpec == "" {
		rootSpec = tpl.CreatorTemplate()
	}
	root, err := loader.NewCreator(RootType, rootSpec)
	if err != nil {
		return nil, fmt.Errorf("metacreation: root creator: %w", err)
	}
	if err := eng.Register(context.Background(), RootType, func() core.Agent { return root }); err != nil {
		return nil, fmt.Errorf("metacreation: %w", err)
	}

	return &MetaCreation{
		opts:      opts,
		engine:    eng,
		loader:    loader,
		templates: tpl,
		root:      root,
	}, nil
}

func validateTemplate(file, text string) error {
	symbol := spec.KindAgent
	if file == templates.CreatorFile {
		symbol = spec.KindCreator
	}
	def, err := spec.Parse(text)
	if err != nil {
		return err
	}
	return def.Validate(symbol)
}

// Start starts the runtime and, when configured, the template watcher.
func (m *MetaCreation) Start(ctx context.Context) error {
	if err := m.engine.Start(ctx); err != nil {
		return err
	}
	if !m.opts.WatchTemplates || m.opts.TemplateDir == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopWatcher != nil {
		return nil
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	m.stopWatcher = cancel
	m.watchDone = make(chan struct{})
	go func() {
		defer close(m.watchDone)
		if err := m.templates.Watch(watchCtx, nil); err != nil {
			m.opts.Logger.Warn("Template watcher stopped", "error", err)
		}
	}()
	return nil
}

// Stop stops the watcher and the runtime. It is idempotent.
func (m *MetaCreation) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.stopWatcher, m.watchDone
	m.stopWatcher, m.watchDone = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if m.engine.Running() {
		m.opts.Logger.Info("Stopping world", "types", len(m.engine.Types()), "live", len(m.engine.Live()))
	}
	return m.engine.Stop(ctx)
}

// Create sends hint to the root Creator and returns its reply.
func (m *MetaCreation) Create(ctx context.Context, hint string) (string, error) {
	reply, err := m.engine.Send(ctx, core.NewAddress(RootType), core.NewMessage(hint))
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// Runner returns a batch runner targeting the root Creator. Results are
// stored in the artifact store unless overridden.
func (m *MetaCreation) Runner(optFns ...func(o *runner.Options)) *runner.Runner {
	fns := append([]func(o *runner.Options){func(o *runner.Options) {
		o.ArtifactStore = m.opts.ArtifactStore
		o.Logger = m.opts.Logger
	}}, optFns...)
	return runner.New(m.engine, core.NewAddress(RootType), fns...)
}

// Host returns a gRPC host serving this world's runtime. Specifications
// registered remotely are loaded with the world's loader.
func (m *MetaCreation) Host(optFns ...func(o *transport.HostOptions)) *transport.Host {
	fns := append([]func(o *transport.HostOptions){func(o *transport.HostOptions) {
		o.Loader = m.loader
		o.Logger = m.opts.Logger
	}}, optFns...)
	return transport.NewHost(m.engine, fns...)
}

// Engine returns the underlying runtime.
func (m *MetaCreation) Engine() *engine.Engine { return m.engine }

// Root returns the root Creator.
func (m *MetaCreation) Root() *creator.Creator { return m.root }

// Loader returns the spec loader shared by every Creator.
func (m *MetaCreation) Loader() *spec.Loader { return m.loader }

// Templates returns the template store.
func (m *MetaCreation) Templates() *templates.Store { return m.templates }

// Lineage returns the lineage store.
func (m *MetaCreation) Lineage() core.LineageStore { return m.opts.LineageStore }

// Sessions returns the session store.
func (m *MetaCreation) Sessions() core.SessionStore { return m.opts.SessionStore }

// Artifacts returns the artifact store.
func (m *MetaCreation) Artifacts() core.ArtifactStore { return m.opts.ArtifactStore }
