// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language models.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Adapt any Model into a core.Synthesizer (Synthesizer)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Gemini) implement the Model interface from
// this package so higher layers (agents, Creators) remain decoupled from
// vendor SDKs.
package model
