package creator

import (
	"fmt"
	"path"
	"strings"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/internal/util"
)

// DefaultExtension is the artifact extension that, together with the
// "creator" prefix, selects meta-creation.
const DefaultExtension = ".yaml"

const metaPrefix = "creator"

// Request is a classified creation hint.
type Request struct {
	Hint string
	Name string
	Meta bool
}

// Kind returns the spawn kind of the request.
func (r Request) Kind() core.SpawnKind {
	if r.Meta {
		return core.SpawnCreator
	}
	return core.SpawnAgent
}

// Symbol returns the kind the generated specification has to expose.
func (r Request) Symbol() string {
	if r.Meta {
		return "Creator"
	}
	return "Agent"
}

// Classify derives the type name from hint and decides between plain and
// meta-creation. Only the base name of hint is considered.
func Classify(hint, ext string) (Request, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return Request{}, fmt.Errorf("%w: empty hint", core.ErrInvalidHint)
	}

	base := path.Base(strings.ReplaceAll(hint, "\\", "/"))
	name := strings.TrimSuffix(base, path.Ext(base))
	if !util.IsIdentifier(name) {
		return Request{}, fmt.Errorf("%w: %q does not name a valid type", core.ErrInvalidHint, hint)
	}

	return Request{
		Hint: hint,
		Name: name,
		Meta: strings.HasPrefix(base, metaPrefix) && strings.HasSuffix(base, ext),
	}, nil
}

// ProbeHint returns the hint a new Creator is probed with. The "agent_"
// prefix keeps the probe on the plain path.
func ProbeHint(name, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return "agent_" + name + "_1" + ext
}
