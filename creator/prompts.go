package creator

import (
	"fmt"
	"strings"

	"github.com/sudhirerahul/meta-creation-agents/internal/util"
)

// Profile is the instruction text and creativity a Creator uses for one kind
// of creation. Instructions is a text/template rendered with Name, Hint,
// Creator and Depth.
type Profile struct {
	Instructions string
	Temperature  float64
}

// DefaultPlainProfile is used for plain creation when none is configured.
var DefaultPlainProfile = Profile{
	Instructions: "You write YAML agent specifications. Rewrite the template into a new agent registered as {{.Name}}.",
	Temperature:  1.0,
}

// DefaultMetaProfile is used for meta-creation when none is configured.
var DefaultMetaProfile = Profile{
	Instructions: "You write YAML specifications for Creators. Rewrite your own specification into a new Creator registered as {{.Name}}.",
	Temperature:  1.1,
}

const agentContract = `Requirements for the specification you return:
- Keep "kind: Agent" and "name: Agent".
- Keep "routed" in capabilities and "constructor: [name]".
- Give the agent a unique personality and a system_message different from the template.
- Pick a business domain unlike the ones you used before; avoid repeating yourself.
- Respond only with the YAML document, no other text.`

const creatorContract = `Requirements for the specification you return:
- Keep "kind: Creator" and "name: Creator".
- Keep "routed" in capabilities, "constructor: [name]" and "handle_message" in handlers.
- Keep both system_message and meta_system_message; you may change their text.
- You may change temperature and meta_temperature.
- Respond only with the YAML document, no other text.`

func contract(meta bool) string {
	if meta {
		return creatorContract
	}
	return agentContract
}

type promptVars struct {
	Name    string
	Hint    string
	Creator string
	Depth   int
}

func (p Profile) render(v promptVars, meta bool) (string, error) {
	text, err := util.RenderTemplate(p.Instructions, map[string]any{
		"Name":    v.Name,
		"Hint":    v.Hint,
		"Creator": v.Creator,
		"Depth":   v.Depth,
	})
	if err != nil {
		return "", fmt.Errorf("render instructions: %w", err)
	}
	return strings.TrimSpace(text) + "\n\n" + contract(meta), nil
}
