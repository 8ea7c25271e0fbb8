package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantName string
		wantErr  bool
	}{
		{name: "ollama", provider: ProviderOllama, wantName: "Ollama"},
		{name: "openai", provider: ProviderOpenAI, apiKey: "sk-test", wantName: "OpenAI"},
		{name: "openai without key", provider: ProviderOpenAI, wantErr: true},
		{name: "unknown", provider: "bard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLLMProvider(tt.provider, "m", "", tt.apiKey)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestRegistry_ForModel(t *testing.T) {
	openaiProvider, _ := NewLLMProvider(ProviderOpenAI, "gpt-4o-mini", "", "sk-test")
	ollamaProvider, _ := NewLLMProvider(ProviderOllama, "llama3", "", "")

	r := NewRegistry(ProviderOllama)
	r.Register(ProviderOpenAI, openaiProvider)
	r.Register(ProviderOllama, ollamaProvider)
	r.Route("gpt-4o-mini", ProviderOpenAI)

	p, err := r.ForModel("GPT-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "OpenAI", p.Name())

	p, err = r.ForModel("llama3")
	require.NoError(t, err)
	assert.Equal(t, "Ollama", p.Name())

	empty := NewRegistry(ProviderOpenAI)
	_, err = empty.ForModel("gpt-4o")
	assert.Error(t, err)
}
