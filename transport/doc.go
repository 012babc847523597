// Package transport exposes a runtime over gRPC.
//
// The service metacreation.v1.Runtime is declared by hand and exchanges
// google.protobuf.Struct messages, so no generated code is needed:
//
//	Send     {type, key, content}  -> {content}
//	Register {type, symbol, spec}  -> {}
//	Types    {}                    -> {types}
//
// A Host serves any runtime that can register, send and list types. A Client
// implements core.Sender, so batch runners and the CLI work the same way
// against a local engine or a remote host. Typed runtime errors survive the
// round trip: duplicate and unknown types, load and registration failures,
// cancellation and a stopped runtime come back as the same core error types.
package transport
