package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/logging"
	"github.com/sudhirerahul/meta-creation-agents/session"
)

// Config defines tuning parameters for the Engine's operational behavior.
type Config struct {
	// MaxSpawnsPerRequest bounds how many agents a single top-level request
	// may create across its whole Creator chain. Set to 0 for unlimited.
	MaxSpawnsPerRequest int

	// MaxConcurrentRequests limits the number of top-level sends that can be
	// in flight simultaneously. Nested sends issued by handlers are never
	// throttled. Set to 0 for unlimited.
	MaxConcurrentRequests int
}

// DefaultConfig provides the default configuration values.
var DefaultConfig = Config{
	MaxSpawnsPerRequest:   32,
	MaxConcurrentRequests: 0,
}

// Options configures an Engine instance using the functional options pattern.
//
// Example:
//
//	eng := New(func(o *Options) {
//	    o.SessionStore = mySessionStore
//	    o.Logger = myLogger
//	})
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// SessionStore receives one event per delivery, keyed by request id.
	// Defaults to an in-memory implementation.
	SessionStore core.SessionStore

	// Callbacks holds lifecycle hooks. Defaults to an empty manager.
	Callbacks *CallbackManager

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil to ensure no logging dependencies.
	Logger logging.Logger
}

type state int

const (
	stateCreated state = iota
	stateRunning
	stateStopped
)

// slot holds the single instance of one address. Its one-token semaphore
// serializes construction so that concurrent resolvers of the same address
// wait for the first one instead of building twice; a waiter gives up when
// its context ends.
type slot struct {
	sem   chan struct{}
	agent core.Agent
}

func newSlot() *slot {
	return &slot{sem: make(chan struct{}, 1)}
}

func (s *slot) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *slot) lock()   { s.sem <- struct{}{} }
func (s *slot) unlock() { <-s.sem }

// Engine is the in-process core.Runtime.
//
// Concurrency Model:
//   - One RWMutex guards the factory table, the slot table and the lifecycle state
//   - Each address owns a slot semaphore held only while its instance is built
//   - Handlers run on the caller's goroutine; nested sends re-enter Send freely
type Engine struct {
	sessionStore core.SessionStore
	callbacks    *CallbackManager
	logger       logging.Logger
	config       Config

	mu        sync.RWMutex
	factories map[string]core.AgentFactory
	slots     map[core.Address]*slot
	state     state

	requests chan struct{}
}

var _ core.Runtime = (*Engine)(nil)

// New creates a new Engine instance with sensible defaults and optional configuration.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:       DefaultConfig,
		SessionStore: session.NewInMemoryStore(),
		Callbacks:    NewCallbackManager(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Engine{
		sessionStore: opts.SessionStore,
		callbacks:    opts.Callbacks,
		logger:       logging.With(opts.Logger, "engine"),
		config:       opts.Config,
		factories:    make(map[string]core.AgentFactory),
		slots:        make(map[core.Address]*slot),
	}
	if opts.Config.MaxConcurrentRequests > 0 {
		e.requests = make(chan struct{}, opts.Config.MaxConcurrentRequests)
	}
	return e
}

// Callbacks returns the engine's callback manager.
func (e *Engine) Callbacks() *CallbackManager { return e.callbacks }

// Sessions returns the store receiving delivery events.
func (e *Engine) Sessions() core.SessionStore { return e.sessionStore }

// Register binds factory to typ without instantiating it.
//
// Registering an existing type fails with *core.DuplicateTypeError and leaves
// the first registration intact. Concurrent registrations of the same type
// have exactly one winner. A stopped engine refuses with core.ErrRuntimeStopped.
// A before_register callback may veto the registration by returning an error.
func (e *Engine) Register(ctx context.Context, typ string, factory core.AgentFactory) error {
	if typ == "" {
		return fmt.Errorf("agent type must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for %q must not be nil", typ)
	}

	if e.stopped() {
		return fmt.Errorf("register %q: %w", typ, core.ErrRuntimeStopped)
	}

	cbCtx := &CallbackContext{CallbackType: CallbackBeforeRegister, AgentType: typ}
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackBeforeRegister, cbCtx); err != nil {
		return err
	}

	e.mu.Lock()
	if e.state == stateStopped {
		e.mu.Unlock()
		return fmt.Errorf("register %q: %w", typ, core.ErrRuntimeStopped)
	}
	if _, exists := e.factories[typ]; exists {
		e.mu.Unlock()
		return &core.DuplicateTypeError{Type: typ}
	}
	e.factories[typ] = factory
	e.mu.Unlock()

	e.logger.Debug("Registered agent type", "type", typ)

	cbCtx.CallbackType = CallbackAfterRegister
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackAfterRegister, cbCtx); err != nil {
		e.logger.Warn("after_register callback failed", "type", typ, "error", err)
	}
	return nil
}

// Types returns the registered type names in sorted order.
func (e *Engine) Types() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	types := make([]string, 0, len(e.factories))
	for t := range e.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Live returns the addresses whose instance has been constructed, sorted.
func (e *Engine) Live() []core.Address {
	e.mu.RLock()
	slots := make(map[core.Address]*slot, len(e.slots))
	for addr, s := range e.slots {
		slots[addr] = s
	}
	e.mu.RUnlock()

	live := make([]core.Address, 0, len(slots))
	for addr, s := range slots {
		s.lock()
		built := s.agent != nil
		s.unlock()
		if built {
			live = append(live, addr)
		}
	}
	sortAddresses(live)
	return live
}

// Resolve returns the live instance for addr, constructing it on first use.
//
// Construction happens at most once per address: concurrent callers block on
// that address's slot only and all receive the identical instance. A factory
// that returns nil leaves the slot empty so a later resolve can retry.
func (e *Engine) Resolve(ctx context.Context, addr core.Address) (core.Agent, error) {
	e.mu.Lock()
	if e.state == stateStopped {
		e.mu.Unlock()
		return nil, core.ErrRuntimeStopped
	}
	factory, ok := e.factories[addr.Type]
	if !ok {
		e.mu.Unlock()
		return nil, &core.UnknownTypeError{Type: addr.Type}
	}
	s, ok := e.slots[addr]
	if !ok {
		s = newSlot()
		e.slots[addr] = s
	}
	e.mu.Unlock()

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.unlock()
	if s.agent != nil {
		return s.agent, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := factory()
	if a == nil {
		return nil, fmt.Errorf("factory for %q returned no agent", addr.Type)
	}
	s.agent = a
	e.logger.Debug("Constructed agent", "address", addr.String())
	return a, nil
}

// Start begins accepting deliveries. Starting a running engine is a no-op;
// a stopped engine cannot be restarted.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case stateRunning:
		return nil
	case stateStopped:
		return core.ErrRuntimeStopped
	}
	e.state = stateRunning
	e.logger.Info("Runtime started", "types", len(e.factories))
	return nil
}

func (e *Engine) stopped() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == stateStopped
}

// Running reports whether the engine accepts deliveries.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == stateRunning
}

// Stop halts delivery and stops every live instance implementing
// core.Stopper. It is idempotent and safe after a partial start. Errors from
// individual instances are logged and returned joined; they never abort the
// shutdown of the remaining instances.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.state == stateStopped {
		e.mu.Unlock()
		return nil
	}
	e.state = stateStopped
	slots := e.slots
	e.slots = make(map[core.Address]*slot)
	e.mu.Unlock()

	addrs := make([]core.Address, 0, len(slots))
	for addr := range slots {
		addrs = append(addrs, addr)
	}
	sortAddresses(addrs)

	var errs []error
	for _, addr := range addrs {
		s := slots[addr]
		s.lock()
		a := s.agent
		s.agent = nil
		s.unlock()

		st, ok := a.(core.Stopper)
		if !ok {
			continue
		}
		if err := st.Stop(ctx); err != nil {
			e.logger.Warn("Error stopping agent", "address", addr.String(), "error", err)
			errs = append(errs, fmt.Errorf("stop %s: %w", addr, err))
		}
	}

	e.logger.Info("Runtime stopped", "instances", len(addrs), "errors", len(errs))
	return errors.Join(errs...)
}

// Send resolves addr, delivers msg to its handler and returns the reply.
//
// A send without a request id in ctx is a top-level request: the engine
// assigns a fresh id and a spawn limiter that every nested send inherits.
// Handler errors propagate unchanged.
func (e *Engine) Send(ctx context.Context, addr core.Address, msg core.Message) (core.Message, error) {
	if !e.Running() {
		return core.Message{}, &core.DeliveryError{Address: addr, Err: core.ErrRuntimeStopped}
	}

	from, nested := core.SenderFrom(ctx)
	if !nested && e.requests != nil {
		select {
		case e.requests <- struct{}{}:
			defer func() { <-e.requests }()
		case <-ctx.Done():
			return core.Message{}, &core.DeliveryError{Address: addr, Err: ctx.Err()}
		}
	}

	requestID, ok := core.RequestIDFrom(ctx)
	if !ok {
		requestID = core.NewID()
		ctx = core.WithRequestID(ctx, requestID)
	}
	if core.SpawnLimiterFrom(ctx) == nil {
		ctx = core.WithSpawnLimiter(ctx, core.NewSpawnLimiter(e.config.MaxSpawnsPerRequest))
	}

	agent, err := e.Resolve(ctx, addr)
	if err != nil {
		if errors.Is(err, core.ErrRuntimeStopped) {
			return core.Message{}, &core.DeliveryError{Address: addr, Err: err}
		}
		return core.Message{}, err
	}

	ev := core.NewEvent(requestID, from, addr, msg.Content)
	ev.Depth = core.ChainDepth(ctx)

	cbCtx := &CallbackContext{CallbackType: CallbackBeforeDeliver, AgentType: addr.Type, Address: addr, Message: msg, Event: &ev}
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackBeforeDeliver, cbCtx); err != nil {
		return core.Message{}, err
	}

	start := time.Now()
	reply, herr := agent.Handle(core.WithSender(ctx, addr), msg)
	ev.Duration = time.Since(start)
	if herr != nil {
		ev.Error = herr.Error()
	} else {
		ev.Reply = reply.Content
	}

	if err := e.sessionStore.AppendEvent(requestID, ev); err != nil {
		e.logger.Warn("Failed to record delivery", "request_id", requestID, "error", err)
	}

	if herr != nil {
		e.logger.Debug("Delivery failed", "request_id", requestID, "to", addr.String(), "error", herr)
		cbCtx.CallbackType = CallbackOnError
		cbCtx.Err = herr
		if err := e.callbacks.ExecuteCallbacks(ctx, CallbackOnError, cbCtx); err != nil {
			e.logger.Warn("on_error callback failed", "to", addr.String(), "error", err)
		}
		return core.Message{}, herr
	}

	cbCtx.CallbackType = CallbackAfterDeliver
	cbCtx.Reply = reply
	if err := e.callbacks.ExecuteCallbacks(ctx, CallbackAfterDeliver, cbCtx); err != nil {
		e.logger.Warn("after_deliver callback failed", "to", addr.String(), "error", err)
	}
	return reply, nil
}

func sortAddresses(addrs []core.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Type != addrs[j].Type {
			return addrs[i].Type < addrs[j].Type
		}
		return addrs[i].Key < addrs[j].Key
	})
}
