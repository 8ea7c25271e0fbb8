package testutil

import (
	"context"
	"fmt"
	"sync"

	"teamcollab-be/pkg/llm"
)

// FakeLLM is a function-field fake of llm.LLMProvider that records every call.
type FakeLLM struct {
	ChatFunc func(ctx context.Context, history []llm.Message, opts *llm.Options) (*llm.Completion, error)

	mu    sync.Mutex
	calls [][]llm.Message
	opts  []*llm.Options
}

func (f *FakeLLM) Name() string { return "Fake" }

func (f *FakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Completion, error) {
	options := llm.Apply(opts...)

	f.mu.Lock()
	f.calls = append(f.calls, history)
	f.opts = append(f.opts, options)
	f.mu.Unlock()

	if f.ChatFunc == nil {
		return nil, fmt.Errorf("ChatFunc not implemented")
	}
	return f.ChatFunc(ctx, history, options)
}

func (f *FakeLLM) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Call returns the history of the i-th call.
func (f *FakeLLM) Call(i int) []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func (f *FakeLLM) Options(i int) *llm.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts[i]
}

// Reply returns a ChatFunc that always answers content with the given usage.
func Reply(content string, promptTokens, completionTokens int) func(context.Context, []llm.Message, *llm.Options) (*llm.Completion, error) {
	return func(_ context.Context, _ []llm.Message, opts *llm.Options) (*llm.Completion, error) {
		return &llm.Completion{
			Content: content,
			Model:   opts.Model,
			Usage:   llm.Usage{PromptTokens: promptTokens, CompletionTokens: completionTokens},
		}, nil
	}
}

// Providers resolves every model id to the same provider.
type Providers struct {
	Provider llm.LLMProvider
	Err      error
}

func (p Providers) ForModel(string) (llm.LLMProvider, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Provider, nil
}
