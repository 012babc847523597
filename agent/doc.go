// Package agent contains concrete agent implementations hosted by the runtime.
//
// The package focuses on two concerns:
//
//  1. Base identity + lifecycle plumbing (BaseAgent)
//  2. Model-backed conversational agent (ModelAgent), the kind of agent a
//     Creator produces from a plain specification
//
// Design principles:
//   - Minimal hidden global state – explicit wiring via options
//   - Handlers are total – a reply or an explicit error
//   - Extensibility – embed BaseAgent; only implement Handle plus any custom API
package agent
