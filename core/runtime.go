package core

import "context"

// Registrar installs agent factories under type names.
type Registrar interface {
	// Register binds factory to typ. Registering an existing type fails with
	// *DuplicateTypeError and leaves the first registration intact.
	Register(ctx context.Context, typ string, factory AgentFactory) error
}

// Sender delivers a message to an address and waits for the reply.
type Sender interface {
	Send(ctx context.Context, addr Address, msg Message) (Message, error)
}

// Runtime hosts addressable agents. It constructs each instance lazily, at
// most once per address, and keeps it alive until Stop.
type Runtime interface {
	Registrar
	Sender

	// Resolve returns the live instance for addr, constructing it on first use.
	Resolve(ctx context.Context, addr Address) (Agent, error)
	// Start begins accepting deliveries.
	Start(ctx context.Context) error
	// Stop halts delivery and releases every live instance. It is idempotent.
	Stop(ctx context.Context) error
	// Types returns the registered type names in sorted order.
	Types() []string
}
