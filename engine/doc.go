// Package engine implements the in-process runtime that hosts addressable
// agents.
//
// The Engine is the central coordination point between callers (the façade,
// the batch runner, the gRPC host) and agent implementations. It implements
// core.Runtime.
//
// # Core Responsibilities
//
// Type Registry:
//   - Thread-safe factory registration keyed by type name
//   - First registration wins; later ones fail with *core.DuplicateTypeError
//
// Instance Management:
//   - Lazy construction on first resolve, exactly once per address
//   - One semaphore per instance slot so unrelated addresses never wait on each other
//   - Instances live until Stop, which releases every core.Stopper
//
// Delivery:
//   - Synchronous request/response to the single inbound handler
//   - Request correlation (request id, sender, spawn limiter) carried in the context
//   - One core.Event per delivery appended to the request's session
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────┐
//	│                    Client Layer                         │
//	│     metacreation façade · runner · transport.Host       │
//	├─────────────────────────────────────────────────────────┤
//	│                  Engine Interface                       │
//	│  ┌─────────────┐ ┌─────────────┐ ┌─────────────────┐   │
//	│  │  Register   │ │   Resolve   │ │      Send       │   │
//	│  └─────────────┘ └─────────────┘ └─────────────────┘   │
//	├─────────────────────────────────────────────────────────┤
//	│                 Orchestration Layer                     │
//	│  ┌─────────────┐ ┌─────────────┐ ┌─────────────────┐   │
//	│  │  Instance   │ │  Callbacks  │ │  Spawn / Request│   │
//	│  │   Slots     │ │  Manager    │ │     Limits      │   │
//	│  └─────────────┘ └─────────────┘ └─────────────────┘   │
//	├─────────────────────────────────────────────────────────┤
//	│                   Service Layer                         │
//	│               ┌─────────────────┐                       │
//	│               │  Session Store  │                       │
//	│               └─────────────────┘                       │
//	└─────────────────────────────────────────────────────────┘
//
// # Usage Patterns
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Logger = logger
//	    o.Config.MaxSpawnsPerRequest = 16
//	})
//	_ = eng.Register(ctx, "echo", func() core.Agent { return echo })
//	_ = eng.Start(ctx)
//	defer eng.Stop(ctx)
//	reply, err := eng.Send(ctx, core.NewAddress("echo"), core.NewMessage("hi"))
//
// # Error Handling
//
//   - Unknown types surface as *core.UnknownTypeError
//   - Sends on a runtime that is not running surface as *core.DeliveryError
//     wrapping core.ErrRuntimeStopped
//   - Handler errors propagate unchanged; the engine never retries
//   - Secondary shutdown errors are logged and joined by Stop
package engine
