package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudhirerahul/meta-creation-agents/model"
)

var _ model.Model = (*Model)(nil)

func TestBuildParams_RequestOverridesDefaults(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.Model = "gpt-test"
	})
	temp := 1.2

	params := m.buildParams(model.Request{Instructions: "sys", Prompt: "user", Temperature: &temp, MaxTokens: 100})

	assert.Equal(t, "gpt-test", params.Model)
	assert.InDelta(t, 1.2, params.Temperature.Value, 1e-9)
	assert.Equal(t, int64(100), params.MaxCompletionTokens.Value)
	assert.Len(t, params.Messages, 2)

	params = m.buildParams(model.Request{Prompt: "user"})
	assert.InDelta(t, 0.7, params.Temperature.Value, 1e-9)
	assert.Equal(t, int64(4096), params.MaxCompletionTokens.Value)
	assert.Len(t, params.Messages, 1)
}

func TestGenerate_NonStreaming(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","created":0,"model":"gpt-test",
			"choices":[{"index":0,"message":{"role":"assistant","content":"kind: Agent"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "test"
		o.BaseURL = srv.URL + "/"
		o.Model = "gpt-test"
	})

	resp, err := model.Collect(context.Background(), m, model.Request{Instructions: "sys", Prompt: "template"})
	require.NoError(t, err)
	assert.Equal(t, "kind: Agent", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, int64(7), resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-test", got["model"])
	assert.Equal(t, model.Info{Name: "gpt-test", Provider: "openai"}, m.Info())
}
