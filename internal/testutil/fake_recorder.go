package testutil

import (
	"context"
	"sync"

	"teamcollab-be/internal/entity"
	"teamcollab-be/pkg/orchestration/metrics"
)

// FakeRecorder keeps every recorded usage in memory.
type FakeRecorder struct {
	Err error

	mu         sync.Mutex
	ForMessage []metrics.Usage
	Usages     []metrics.Usage
}

func (f *FakeRecorder) RecordForMessage(_ context.Context, message *entity.Message, usage metrics.Usage) (*entity.Metrics, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ForMessage = append(f.ForMessage, usage)

	m := &entity.Metrics{
		Id:           int64(len(f.ForMessage)),
		MessageId:    message.Id,
		Duration:     usage.Duration.Milliseconds(),
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Provider:     usage.Provider,
		Model:        usage.Model,
	}
	message.Metrics = m
	return m, nil
}

func (f *FakeRecorder) RecordUsage(_ context.Context, _ int64, usage metrics.Usage) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Usages = append(f.Usages, usage)
	return nil
}

func (f *FakeRecorder) UsageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Usages)
}
