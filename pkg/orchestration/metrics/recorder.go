// Package metrics persists per-call usage and keeps the per-(conversation, model) cache current.
package metrics

import (
	"context"
	"fmt"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/contract"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/pkg/orchestration"
)

const (
	InfoReply       = "Assistant reply"
	InfoDecision    = "Assistant interaction decision"
	InfoSummary     = "Summary generation"
	logModule       = "METRICS"
	infoKeyKind     = "kind"
	infoKeyProvider = "provider"
)

// Usage describes one model call.
type Usage struct {
	Duration     time.Duration
	InputTokens  int
	OutputTokens int
	Provider     string
	Model        string
	Info         string
	Extra        map[string]interface{}
}

func (u Usage) validate() error {
	if u.InputTokens < 0 || u.OutputTokens < 0 {
		return orchestration.NewInvalidArgument("tokens", "token counts cannot be negative")
	}
	if u.Duration < 0 {
		return orchestration.NewInvalidArgument("duration", "duration cannot be negative")
	}
	if u.Model == "" {
		return orchestration.NewInvalidArgument("model", "model id is required")
	}
	return nil
}

func (u Usage) delta() contract.CacheDelta {
	return contract.CacheDelta{
		Duration:     u.Duration.Milliseconds(),
		Messages:     1,
		InputTokens:  int64(u.InputTokens),
		OutputTokens: int64(u.OutputTokens),
	}
}

type Recorder interface {
	RecordForMessage(ctx context.Context, message *entity.Message, usage Usage) (*entity.Metrics, error)
	RecordUsage(ctx context.Context, conversationId int64, usage Usage) error
}

type recorder struct {
	uowFactory unitofwork.RepositoryFactory
	clock      orchestration.Clock
	logger     logger.ILogger
}

func NewRecorder(uowFactory unitofwork.RepositoryFactory, clock orchestration.Clock, log logger.ILogger) Recorder {
	return &recorder{uowFactory: uowFactory, clock: clock, logger: log}
}

// RecordForMessage stores a Metrics row for message and bumps the cache in the same transaction.
func (r *recorder) RecordForMessage(ctx context.Context, message *entity.Message, usage Usage) (*entity.Metrics, error) {
	if message == nil {
		return nil, orchestration.NewInvalidArgument("message", "message cannot be nil")
	}
	if message.Id == 0 {
		return nil, orchestration.NewInvalidArgument("message", "message must be persisted before recording metrics")
	}
	if err := usage.validate(); err != nil {
		return nil, err
	}

	info := map[string]interface{}{infoKeyKind: usage.Info, infoKeyProvider: usage.Provider}
	for k, v := range usage.Extra {
		info[k] = v
	}

	m := &entity.Metrics{
		MessageId:      message.Id,
		Duration:       usage.Duration.Milliseconds(),
		InputTokens:    usage.InputTokens,
		OutputTokens:   usage.OutputTokens,
		Provider:       usage.Provider,
		Model:          usage.Model,
		AdditionalInfo: info,
		CreatedAt:      r.clock.Now(),
	}

	err := unitofwork.WithinTransaction(ctx, r.uowFactory, func(uow unitofwork.UnitOfWork) error {
		if err := uow.MetricsRepository().Create(ctx, m); err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}
		return increment(ctx, uow, message.ConversationId, usage)
	})
	if err != nil {
		return nil, err
	}

	message.Metrics = m
	r.logger.Debug(logModule, "Recorded message metrics", map[string]interface{}{
		"message_id":      message.Id,
		"conversation_id": message.ConversationId,
		"model":           usage.Model,
		"input_tokens":    usage.InputTokens,
		"output_tokens":   usage.OutputTokens,
		"duration_ms":     m.Duration,
	})
	return m, nil
}

// RecordUsage only touches the cache; used for calls that produce no message.
func (r *recorder) RecordUsage(ctx context.Context, conversationId int64, usage Usage) error {
	if err := usage.validate(); err != nil {
		return err
	}
	return unitofwork.WithinTransaction(ctx, r.uowFactory, func(uow unitofwork.UnitOfWork) error {
		return increment(ctx, uow, conversationId, usage)
	})
}

func increment(ctx context.Context, uow unitofwork.UnitOfWork, conversationId int64, usage Usage) error {
	caches := uow.MetricCacheRepository()
	if err := caches.EnsureExists(ctx, conversationId, usage.Model); err != nil {
		return fmt.Errorf("ensure metric cache: %w", err)
	}
	if err := caches.Increment(ctx, conversationId, usage.Model, usage.delta()); err != nil {
		return fmt.Errorf("increment metric cache: %w", err)
	}
	return nil
}
