// Package summary condenses a conversation into a point-in-time summary once enough new
// messages have accumulated.
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/events"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/metrics"
	"teamcollab-be/pkg/orchestration/prompt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// BatchSize is the number of messages newer than the current summary that triggers a new one.
	BatchSize   = 10
	Temperature = 0.3

	logModule = "SUMMARY"
)

type Generator struct {
	uowFactory unitofwork.RepositoryFactory
	settings   orchestration.SettingsProvider
	providers  orchestration.ProviderResolver
	recorder   metrics.Recorder
	publisher  events.Publisher
	clock      orchestration.Clock
	logger     logger.ILogger
	timeout    time.Duration
}

func NewGenerator(
	uowFactory unitofwork.RepositoryFactory,
	settings orchestration.SettingsProvider,
	providers orchestration.ProviderResolver,
	recorder metrics.Recorder,
	publisher events.Publisher,
	clock orchestration.Clock,
	log logger.ILogger,
	timeout time.Duration,
) *Generator {
	return &Generator{
		uowFactory: uowFactory,
		settings:   settings,
		providers:  providers,
		recorder:   recorder,
		publisher:  publisher,
		clock:      clock,
		logger:     log,
		timeout:    timeout,
	}
}

// Generate resolves to the current summary when it is still fresh, otherwise to a newly
// stored one. An empty chat context fails before any work is scheduled.
func (g *Generator) Generate(ctx context.Context, conversation *entity.Conversation, chatContext *orchestration.ChatContext) (*orchestration.Future[*entity.PointInTimeSummary], error) {
	if conversation == nil {
		return nil, orchestration.NewInvalidArgument("conversation", "conversation cannot be nil")
	}
	if chatContext == nil || len(chatContext.Messages) == 0 {
		return nil, &orchestration.EmptyConversationError{ConversationId: conversation.Id}
	}

	taskCtx := context.WithoutCancel(ctx)
	return orchestration.Async(orchestration.KindSummaryGeneration, func() (*entity.PointInTimeSummary, error) {
		summary, err := g.generate(taskCtx, conversation, chatContext)
		if err != nil {
			g.logger.Error(logModule, "Failed to generate summary", map[string]interface{}{
				"conversation_id": conversation.Id,
				"error":           err.Error(),
			})
			return nil, wrapError(err)
		}
		return summary, nil
	}), nil
}

func (g *Generator) generate(ctx context.Context, conversation *entity.Conversation, chatContext *orchestration.ChatContext) (*entity.PointInTimeSummary, error) {
	ctx, span := otel.Tracer("teamcollab/summary").Start(ctx, "summary.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int64("conversation.id", conversation.Id))

	uow := g.uowFactory.NewUnitOfWork(ctx)

	current, err := uow.SummaryRepository().FindLatestActive(ctx, conversation.Id)
	if err != nil {
		return nil, fmt.Errorf("load current summary: %w", err)
	}
	if current != nil {
		newer, err := uow.MessageRepository().CountAfter(ctx, conversation.Id, current.LatestMessageId)
		if err != nil {
			return nil, fmt.Errorf("count newer messages: %w", err)
		}
		if newer < BatchSize {
			span.SetAttributes(attribute.Bool("summary.fresh", true))
			return current, nil
		}
	}

	settings, err := g.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	model := settings.SummaryLlmModel
	provider, err := g.providers.ForModel(model)
	if err != nil {
		return nil, err
	}

	parts := []struct {
		name  string
		build func(*orchestration.ChatContext) []llm.Message
	}{
		{"topics", prompt.BuildTopics},
		{"topic_summaries", prompt.BuildTopicSummaries},
		{"assistant_summaries", prompt.BuildAssistantSummaries},
	}

	texts := make([]string, len(parts))
	for i, part := range parts {
		text, err := g.call(ctx, provider, model, conversation.Id, part.name, part.build(chatContext))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", part.name, err)
		}
		texts[i] = text
	}

	summary := &entity.PointInTimeSummary{
		ConversationId:     conversation.Id,
		LatestMessageId:    chatContext.LatestMessage().Id,
		TopicsAndKeyPoints: texts[0],
		TopicSummaries:     texts[1],
		AssistantSummaries: texts[2],
		CreatedAt:          g.clock.Now(),
		IsActive:           true,
	}
	if err := uow.SummaryRepository().Create(ctx, summary); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}

	g.logger.Info(logModule, "Summary created", map[string]interface{}{
		"conversation_id":   conversation.Id,
		"summary_id":        summary.Id,
		"latest_message_id": summary.LatestMessageId,
	})
	g.publisher.PublishSummaryCreated(ctx, summary)
	return summary, nil
}

func (g *Generator) call(ctx context.Context, provider llm.LLMProvider, model string, conversationId int64, part string, history []llm.Message) (string, error) {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	completion, err := provider.Chat(callCtx, history, llm.WithModel(model), llm.WithTemperature(Temperature))
	if err != nil {
		return "", err
	}

	err = g.recorder.RecordUsage(ctx, conversationId, metrics.Usage{
		Duration:     time.Since(start),
		InputTokens:  completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
		Provider:     provider.Name(),
		Model:        model,
		Info:         metrics.InfoSummary,
		Extra:        map[string]interface{}{"part": part},
	})
	if err != nil {
		g.logger.Error(logModule, "Failed to record summary usage", map[string]interface{}{
			"conversation_id": conversationId,
			"part":            part,
			"error":           err.Error(),
		})
	}
	return completion.Content, nil
}

func wrapError(err error) error {
	var empty *orchestration.EmptyConversationError
	if errors.As(err, &empty) || errors.Is(err, orchestration.ErrInvalidArgument) {
		return err
	}
	return orchestration.NewSummaryFailure(err)
}
