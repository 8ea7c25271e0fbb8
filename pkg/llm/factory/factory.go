package factory

import (
	"fmt"
	"strings"
	"sync"

	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/llm/ollama"
	"teamcollab-be/pkg/llm/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// Registry picks the backend that serves a given model id.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]llm.LLMProvider
	routes    map[string]string
	fallback  string
}

func NewRegistry(fallback string) *Registry {
	return &Registry{
		providers: make(map[string]llm.LLMProvider),
		routes:    make(map[string]string),
		fallback:  fallback,
	}
}

func (r *Registry) Register(key string, provider llm.LLMProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[key] = provider
}

// Route sends modelId to the provider registered under key.
func (r *Registry) Route(modelId, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[strings.ToLower(modelId)] = key
}

func (r *Registry) ForModel(modelId string) (llm.LLMProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.routes[strings.ToLower(modelId)]
	if !ok {
		key = r.fallback
	}
	provider, ok := r.providers[key]
	if !ok {
		return nil, fmt.Errorf("no LLM provider registered for model %q (provider %q)", modelId, key)
	}
	return provider, nil
}
