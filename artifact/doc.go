// Package artifact contains concrete implementations of core.ArtifactStore.
//
// Creators persist every synthesized specification here before loading it,
// and the batch runner stores probe replies. The canonical interface lives
// in the core package; callers should depend on it rather than on concrete
// types so they can substitute alternative persistence layers in tests or
// production.
package artifact
