package metacreation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhirerahul/meta-creation-agents/core"
	"github.com/sudhirerahul/meta-creation-agents/engine"
	"github.com/sudhirerahul/meta-creation-agents/internal/testutil"
	"github.com/sudhirerahul/meta-creation-agents/model"
	"github.com/sudhirerahul/meta-creation-agents/templates"
)

func newWorld(t *testing.T, optFns ...func(o *Options)) *MetaCreation {
	t.Helper()

	m := model.NewMockModel("mock", "mock")
	m.AddResponse("Give me an idea", "Rent out napping pods at airports")

	fns := append([]func(o *Options){func(o *Options) {
		o.Model = m
		o.Synthesizer = testutil.KindSynthesizer()
	}}, optFns...)
	mc, err := New(fns...)
	require.NoError(t, err)
	require.NoError(t, mc.Start(context.Background()))
	t.Cleanup(func() { _ = mc.Stop(context.Background()) })
	return mc
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestNew_RejectsInvalidRootSpec(t *testing.T) {
	_, err := New(func(o *Options) {
		o.Model = model.NewMockModel("mock", "mock")
		o.RootSpec = testutil.AgentSpec("not a creator")
	})
	var loadErr *core.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestMetaCreation_CreateAgentAndCreator(t *testing.T) {
	mc := newWorld(t)
	ctx := context.Background()

	reply, err := mc.Create(ctx, "agent1.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Rent out napping pods at airports", reply)

	reply, err = mc.Create(ctx, "creator2.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Meta-creation complete! New Creator 'creator2' is live and created: Rent out napping pods at airports", reply)

	assert.Equal(t, []string{"Creator", "agent1", "agent_creator2_1", "creator2"}, mc.Engine().Types())

	children, err := mc.Lineage().Children(RootType)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, core.SpawnCreator, children[1].Kind)

	ids, err := mc.Sessions().List()
	require.NoError(t, err)
	require.Len(t, ids, 2)
	var sizes []int
	for _, id := range ids {
		sess, err := mc.Sessions().Get(id)
		require.NoError(t, err)
		sizes = append(sizes, len(sess.GetEvents()))
	}
	// Plain creation: root and agent. Meta-creation: root, new creator and its agent.
	assert.ElementsMatch(t, []int{2, 3}, sizes)

	specs, err := mc.Artifacts().List(RootType)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"agent1.yaml", "creator2.yaml"}, specs)
}

func TestMetaCreation_Runner(t *testing.T) {
	mc := newWorld(t)

	results, err := mc.Runner().RunAll(context.Background(), []string{"creator_analytical.yaml", "creator_creative.yaml"})
	require.NoError(t, err)
	for _, res := range results {
		assert.True(t, strings.HasPrefix(res.Reply, "Meta-creation complete!"))
	}

	doc, err := mc.Artifacts().Get("results", "creator_creative_result.md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc), "# creator_creative\n\n"))
}

func TestMetaCreation_CallbacksObserveDeliveries(t *testing.T) {
	cbs := engine.NewCallbackManager()
	var delivered []string
	cbs.RegisterCallback(engine.NewFunctionCallback(engine.CallbackAfterDeliver, func(_ context.Context, cc *engine.CallbackContext) error {
		delivered = append(delivered, cc.AgentType)
		return nil
	}))

	mc := newWorld(t, func(o *Options) { o.Callbacks = cbs })
	_, err := mc.Create(context.Background(), "agent1.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"agent1", "Creator"}, delivered)
}

func TestMetaCreation_TemplateOverrides(t *testing.T) {
	dir := t.TempDir()
	custom := strings.Replace(templates.DefaultAgentTemplate(), "A helpful assistant", "A grumpy assistant", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, templates.AgentFile), []byte(custom), 0o600))

	mc := newWorld(t, func(o *Options) {
		o.TemplateDir = dir
		o.WatchTemplates = true
	})
	assert.Contains(t, mc.Templates().AgentTemplate(), "grumpy")

	// The watcher starts asynchronously, so the edit is repeated until seen.
	updated := strings.Replace(custom, "grumpy", "cheerful", 1)
	polls := 0
	assert.Eventually(t, func() bool {
		if polls%10 == 0 {
			_ = os.WriteFile(filepath.Join(dir, templates.AgentFile), []byte(updated), 0o600)
		}
		polls++
		return strings.Contains(mc.Templates().AgentTemplate(), "cheerful")
	}, 10*time.Second, 50*time.Millisecond)

	require.NoError(t, mc.Stop(context.Background()))
	require.NoError(t, mc.Stop(context.Background()))
}

func TestMetaCreation_InvalidTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, templates.CreatorFile), []byte(testutil.AgentSpec("wrong")), 0o600))

	_, err := New(func(o *Options) {
		o.Model = model.NewMockModel("mock", "mock")
		o.TemplateDir = dir
	})
	assert.Error(t, err)
}
