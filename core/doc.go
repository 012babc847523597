// Package core provides the foundational domain types and interfaces of the
// meta-creation runtime. It defines the core abstractions for:
//
//   - Addresses and Messages (how agents are named and what they exchange)
//   - Agents (single-handler request/response units)
//   - Runtimes (registration, lazy construction and delivery)
//   - Synthesizers and specification loaders (how Creators produce new agents)
//   - Events, Sessions and lineage edges (what happened during a request)
//   - Pluggable stores for sessions, artifacts and lineage
//
// The package keeps implementation concerns (engine, concrete agents,
// persistence backends) out of scope, exposing small interfaces so custom
// backends can be plugged in.
package core
