package spec

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// KindAgent is the symbol exposed by plain agent specifications.
	KindAgent = "Agent"
	// KindCreator is the symbol exposed by Creator specifications.
	KindCreator = "Creator"

	// CapabilityRouted marks a specification as addressable by the runtime.
	CapabilityRouted = "routed"
	// HandlerMessage is the handler every Creator must declare.
	HandlerMessage = "handle_message"
)

// Definition is the parsed form of a specification.
type Definition struct {
	Kind         string   `yaml:"kind"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description,omitempty"`
	Capabilities []string `yaml:"capabilities"`
	Constructor  []string `yaml:"constructor"`
	Handlers     []string `yaml:"handlers,omitempty"`

	SystemMessage string   `yaml:"system_message"`
	Model         string   `yaml:"model,omitempty"`
	Temperature   *float64 `yaml:"temperature,omitempty"`
	MaxTokens     int64    `yaml:"max_tokens,omitempty"`

	// Creator only.
	MetaSystemMessage string   `yaml:"meta_system_message,omitempty"`
	MetaTemperature   *float64 `yaml:"meta_temperature,omitempty"`
}

// Parse decodes a single YAML specification.
func Parse(source string) (*Definition, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("empty specification")
	}
	var def Definition
	if err := yaml.Unmarshal([]byte(source), &def); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &def, nil
}

// Validate checks that the definition exposes symbol and honours the
// structural contract of its kind.
func (d *Definition) Validate(symbol string) error {
	if d.Kind != symbol {
		return fmt.Errorf("specification exposes %q, want %q", d.Kind, symbol)
	}
	if d.Name != "" && d.Name != d.Kind {
		return fmt.Errorf("name %q must match kind %q", d.Name, d.Kind)
	}
	if !slices.Contains(d.Capabilities, CapabilityRouted) {
		return fmt.Errorf("capabilities must include %q", CapabilityRouted)
	}
	if len(d.Constructor) != 1 || d.Constructor[0] != "name" {
		return fmt.Errorf("constructor must be [name], got %v", d.Constructor)
	}
	if strings.TrimSpace(d.SystemMessage) == "" {
		return errors.New("system_message is required")
	}
	if d.Temperature != nil && (*d.Temperature < 0 || *d.Temperature > 2) {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", *d.Temperature)
	}

	switch d.Kind {
	case KindAgent:
		return nil
	case KindCreator:
		if !slices.Contains(d.Handlers, HandlerMessage) {
			return fmt.Errorf("handlers must include %q", HandlerMessage)
		}
		if strings.TrimSpace(d.MetaSystemMessage) == "" {
			return errors.New("meta_system_message is required")
		}
		if d.MetaTemperature != nil && (*d.MetaTemperature < 0 || *d.MetaTemperature > 2) {
			return fmt.Errorf("meta_temperature %.2f out of range [0, 2]", *d.MetaTemperature)
		}
		return nil
	default:
		return fmt.Errorf("unknown kind %q", d.Kind)
	}
}
