package creator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhirerahul/meta-creation-agents/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		hint string
		name string
		meta bool
	}{
		{hint: "agent1.yaml", name: "agent1"},
		{hint: "creator2.yaml", name: "creator2", meta: true},
		{hint: "creator_analytical.yaml", name: "creator_analytical", meta: true},
		{hint: "creator2.py", name: "creator2"},
		{hint: "Creator2.yaml", name: "Creator2"},
		{hint: "agent_creator2_1.yaml", name: "agent_creator2_1"},
		{hint: "out/creators/creator9.yaml", name: "creator9", meta: true},
		{hint: "creator", name: "creator"},
		{hint: "  agent7  ", name: "agent7"},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			req, err := Classify(tt.hint, "")
			require.NoError(t, err)
			assert.Equal(t, tt.name, req.Name)
			assert.Equal(t, tt.meta, req.Meta)
		})
	}
}

func TestClassify_CustomExtension(t *testing.T) {
	req, err := Classify("creator2.py", ".py")
	require.NoError(t, err)
	assert.True(t, req.Meta)
	assert.Equal(t, "Creator", req.Symbol())
	assert.Equal(t, core.SpawnCreator, req.Kind())
}

func TestClassify_InvalidHints(t *testing.T) {
	for _, hint := range []string{"", "   ", "9lives.yaml", "my-agent.yaml", "dir/.yaml", "héllo.yaml"} {
		_, err := Classify(hint, "")
		assert.True(t, errors.Is(err, core.ErrInvalidHint), "hint %q", hint)
	}
}

func TestProbeHint(t *testing.T) {
	assert.Equal(t, "agent_creator2_1.yaml", ProbeHint("creator2", ""))
	assert.Equal(t, "agent_creator2_1.py", ProbeHint("creator2", ".py"))

	req, err := Classify(ProbeHint("creator2", ""), "")
	require.NoError(t, err)
	assert.False(t, req.Meta)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tagged fence", in: "```python\nX\n```", want: "X"},
		{name: "yaml fence with prose", in: "Here you go:\n```yaml\nkind: Agent\nname: Agent\n```\nEnjoy!", want: "kind: Agent\nname: Agent"},
		{name: "bare fence", in: "```\nkind: Agent\n```", want: "kind: Agent"},
		{name: "unterminated", in: "```yaml\nkind: Agent\n", want: "kind: Agent"},
		{name: "content on fence line", in: "```kind: Agent\nname: Agent```", want: "kind: Agent\nname: Agent"},
		{name: "first block wins", in: "```\nA\n```\n```\nB\n```", want: "A"},
		{name: "plain", in: "  kind: Agent  \n", want: "kind: Agent"},
		{name: "empty block", in: "```yaml\n```", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Sanitize(got), "idempotent")
		})
	}
}

func TestProfileRender(t *testing.T) {
	p := Profile{Instructions: "Build {{.Name}} for {{.Creator}} at {{.Depth}} from {{.Hint}}."}
	out, err := p.render(promptVars{Name: "creator2", Hint: "creator2.yaml", Creator: "Creator", Depth: 1}, true)
	require.NoError(t, err)
	assert.Contains(t, out, "Build creator2 for Creator at 1 from creator2.yaml.")
	assert.Contains(t, out, `"kind: Creator"`)

	out, err = p.render(promptVars{Name: "a"}, false)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind: Agent"`)

	_, err = Profile{Instructions: "{{.Missing}}"}.render(promptVars{}, false)
	assert.Error(t, err)
}
