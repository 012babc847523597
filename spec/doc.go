// Package spec parses declarative agent specifications and turns them into
// constructible agents.
//
// A specification is a YAML document of kind Agent or Creator. Agents are
// bound to a language model and answer under their system message; Creators
// become creator.Creator instances that use the loader again for the types
// they create.
package spec
