// Package processor generates one assistant reply and stores it with its usage.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/metrics"
	"teamcollab-be/pkg/orchestration/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const logModule = "PROCESSOR"

type Processor struct {
	uowFactory unitofwork.RepositoryFactory
	resolver   *ModelResolver
	recorder   metrics.Recorder
	clock      orchestration.Clock
	logger     logger.ILogger
	timeout    time.Duration
}

func NewProcessor(
	uowFactory unitofwork.RepositoryFactory,
	resolver *ModelResolver,
	recorder metrics.Recorder,
	clock orchestration.Clock,
	log logger.ILogger,
	timeout time.Duration,
) *Processor {
	return &Processor{
		uowFactory: uowFactory,
		resolver:   resolver,
		recorder:   recorder,
		clock:      clock,
		logger:     log,
		timeout:    timeout,
	}
}

// Process answers message as chatContext.Responder. The work keeps running after ctx is
// cancelled and is bounded by the model timeout instead.
func (p *Processor) Process(ctx context.Context, conversation *entity.Conversation, message *entity.Message, chatContext *orchestration.ChatContext) *orchestration.Future[*orchestration.MessageResponse] {
	switch {
	case conversation == nil:
		return orchestration.Failed[*orchestration.MessageResponse](orchestration.NewInvalidArgument("conversation", "conversation cannot be nil"))
	case message == nil:
		return orchestration.Failed[*orchestration.MessageResponse](orchestration.NewInvalidArgument("message", "message cannot be nil"))
	case chatContext == nil:
		return orchestration.Failed[*orchestration.MessageResponse](orchestration.NewInvalidArgument("chatContext", "chat context cannot be nil"))
	case chatContext.Responder == nil || chatContext.Responder.Assistant == nil:
		return orchestration.Failed[*orchestration.MessageResponse](orchestration.NewInvalidArgument("chatContext", "chat context has no responding assistant"))
	}

	taskCtx := context.WithoutCancel(ctx)
	return orchestration.Async(orchestration.KindProcessing, func() (*orchestration.MessageResponse, error) {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(taskCtx, p.timeout)
			defer cancel()
		}

		res, err := p.process(taskCtx, conversation, message, chatContext)
		if err != nil {
			p.logger.Error(logModule, "Failed to process message", map[string]interface{}{
				"conversation_id": conversation.Id,
				"message_id":      message.Id,
				"assistant_id":    chatContext.Responder.Assistant.Id,
				"error":           err.Error(),
			})
			return nil, wrapError(err)
		}
		return res, nil
	})
}

func (p *Processor) process(ctx context.Context, conversation *entity.Conversation, message *entity.Message, chatContext *orchestration.ChatContext) (*orchestration.MessageResponse, error) {
	assistant := chatContext.Responder.Assistant

	ctx, span := otel.Tracer("teamcollab/processor").Start(ctx, "processor.Process")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("conversation.id", conversation.Id),
		attribute.Int64("message.id", message.Id),
		attribute.Int64("assistant.id", assistant.Id),
	)

	start := time.Now()
	history := prompt.BuildReply(chatContext, message)

	model, provider, err := p.resolver.Resolve(ctx, conversation.CompanyId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve model")
		return nil, err
	}
	span.SetAttributes(attribute.String("llm.model", model), attribute.String("llm.provider", provider.Name()))

	completion, err := provider.Chat(ctx, history, llm.WithModel(model))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call")
		return nil, err
	}
	duration := time.Since(start)

	reply := &entity.Message{
		Content:        completion.Content,
		ConversationId: conversation.Id,
		Author:         entity.AssistantAuthor{AssistantId: assistant.Id, Name: assistant.Name},
		CreatedAt:      p.clock.Now(),
	}
	if err := p.uowFactory.NewUnitOfWork(ctx).MessageRepository().Create(ctx, reply); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}

	m, err := p.recorder.RecordForMessage(ctx, reply, metrics.Usage{
		Duration:     duration,
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
		Provider:     provider.Name(),
		Model:        model,
		Info:         metrics.InfoReply,
		Extra: map[string]interface{}{
			"assistant_id":       assistant.Id,
			"trigger_message_id": message.Id,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("record metrics: %w", err)
	}

	p.logger.Info(logModule, "Assistant replied", map[string]interface{}{
		"conversation_id": conversation.Id,
		"assistant_id":    assistant.Id,
		"reply_id":        reply.Id,
		"model":           model,
		"duration_ms":     duration.Milliseconds(),
	})

	return &orchestration.MessageResponse{Content: completion.Content, Metrics: m, Message: reply}, nil
}

func wrapError(err error) error {
	if errors.Is(err, orchestration.ErrInvalidArgument) {
		return &orchestration.InvalidArgumentError{Reason: "invalid input for message processing", Cause: err}
	}
	return orchestration.NewProcessingFailure(err)
}
