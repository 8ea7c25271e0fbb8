package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"teamcollab-be/internal/dto"
	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/pkg/serverutils"
	"teamcollab-be/internal/repository/specification"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/websocket"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/budget"
	"teamcollab-be/pkg/orchestration/decider"
	"teamcollab-be/pkg/orchestration/processor"
	"teamcollab-be/pkg/orchestration/summary"
)

const (
	conversationModule = "CONVERSATION"

	// historySize is how many recent messages a chat context carries.
	historySize = 10

	NoteLimitExceeded = "MONTHLY_LIMIT_EXCEEDED"
	NoteReplyFailed   = "REPLY_FAILED"
	NoteReset         = "CONVERSATION_RESET"

	// DefaultTone is given to every assistant that joins a conversation.
	DefaultTone            = "FORMAL"
	defaultToneDisplayName = "Formal"
	defaultTonePrompt      = "Communicate in a professional and structured manner."
)

// ConversationNotifier pushes frames to the clients watching a conversation.
type ConversationNotifier interface {
	Push(conversationId int64, messageType websocket.MessageType, data interface{})
}

type IConversationService interface {
	PostMessage(ctx context.Context, userId, conversationId int64, req *dto.PostMessageRequest) (*dto.MessageResponse, error)
	HandleIncoming(ctx context.Context, messageId int64) error
	ListMessages(ctx context.Context, userId, conversationId int64) ([]*dto.MessageResponse, error)
	ResetConversation(ctx context.Context, userId, conversationId int64) (*dto.SummaryResponse, error)
	GenerateSummary(ctx context.Context, userId, conversationId int64) (*dto.SummaryResponse, error)
	CurrentSummary(ctx context.Context, userId, conversationId int64) (*dto.SummaryResponse, error)
	SetAssistantMuted(ctx context.Context, userId, conversationId, assistantId int64, muted bool) (*dto.ConversationAssistantResponse, error)
	// AddAssistant puts an assistant of the user's company, or a shared one, on the roster with the default tone.
	AddAssistant(ctx context.Context, userId, conversationId, assistantId int64) (*dto.ConversationAssistantResponse, error)
	RemoveAssistant(ctx context.Context, userId, conversationId, assistantId int64) error
	SetAssistantTone(ctx context.Context, userId, conversationId, assistantId int64, tone string) (*dto.ConversationAssistantResponse, error)
	// Authorize fails with serverutils.ErrForbidden unless the user belongs to the conversation's company.
	Authorize(ctx context.Context, userId, conversationId int64) error
	// RefreshSummary regenerates the summary when it is stale. Empty conversations are skipped.
	RefreshSummary(ctx context.Context, conversationId int64) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	decider    *decider.Decider
	processor  *processor.Processor
	summaries  *summary.Generator
	guard      *budget.Guard
	notifier   ConversationNotifier
	clock      orchestration.Clock
	logger     logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	decider *decider.Decider,
	processor *processor.Processor,
	summaries *summary.Generator,
	guard *budget.Guard,
	notifier ConversationNotifier,
	clock orchestration.Clock,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		publisher:  publisher,
		decider:    decider,
		processor:  processor,
		summaries:  summaries,
		guard:      guard,
		notifier:   notifier,
		clock:      clock,
		logger:     log,
	}
}

func (s *conversationService) PostMessage(ctx context.Context, userId, conversationId int64, req *dto.PostMessageRequest) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, user, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, orchestration.NewInvalidArgument("content", "content cannot be blank")
	}

	msg := &entity.Message{
		Content:        content,
		ConversationId: conversation.Id,
		Author:         entity.UserAuthor{UserId: user.Id, Username: user.Username},
		CreatedAt:      s.clock.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, msg); err != nil {
		return nil, err
	}

	res := toMessageResponse(msg)
	s.notifier.Push(conversation.Id, websocket.TypeMessage, res)

	payload, err := json.Marshal(dto.MessageCreatedJob{MessageId: msg.Id, ConversationId: conversation.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		return nil, err
	}

	return res, nil
}

// HandleIncoming runs the reply pipeline for a stored user message.
func (s *conversationService) HandleIncoming(ctx context.Context, messageId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		return err
	}
	if msg == nil {
		// Reset between posting and handling.
		s.logger.Warn(conversationModule, "Message no longer exists", map[string]interface{}{"message_id": messageId})
		return nil
	}
	if msg.IsAssistant() {
		return nil
	}

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: msg.ConversationId})
	if err != nil {
		return err
	}
	if conversation == nil {
		return serverutils.ErrNotFound
	}

	chatContext, roster, err := s.loadChatContext(ctx, uow, conversation)
	if err != nil {
		return err
	}

	if err := s.guard.CheckBudget(ctx, conversation.CompanyId); err != nil {
		var limitErr *orchestration.MonthlyLimitExceededError
		if errors.As(err, &limitErr) {
			s.notifier.Push(conversation.Id, websocket.TypeNote, dto.ConversationNote{
				Code:    NoteLimitExceeded,
				Message: "Your company has reached its monthly AI spending limit. Assistants will not respond.",
			})
			return nil
		}
		return err
	}

	s.refreshInBackground(ctx, conversation, chatContext)

	byAssistant := make(map[int64]*entity.ConversationAssistant, len(roster))
	active := make([]*entity.Assistant, 0, len(roster))
	for _, ca := range roster {
		if ca.Muted || ca.Assistant == nil {
			continue
		}
		byAssistant[ca.AssistantId] = ca
		active = append(active, ca.Assistant)
	}
	if len(active) == 0 {
		return nil
	}

	responders := s.decider.Decide(ctx, conversation, msg, active)

	var wg sync.WaitGroup
	for _, assistantId := range responders {
		ca, ok := byAssistant[assistantId]
		if !ok {
			continue
		}

		s.notifier.Push(conversation.Id, websocket.TypeThinking, dto.AssistantThinking{
			AssistantId: ca.Assistant.Id,
			Name:        ca.Assistant.Name,
			MessageId:   msg.Id,
		})

		future := s.processor.Process(ctx, conversation, msg, chatContext.WithResponder(orchestration.Responder{
			Assistant: ca.Assistant,
			Tone:      ca.Tone,
		}))

		wg.Add(1)
		go func(ca *entity.ConversationAssistant) {
			defer wg.Done()

			res, err := future.Await(ctx)
			if err != nil {
				s.notifier.Push(conversation.Id, websocket.TypeNote, dto.ConversationNote{
					Code:    NoteReplyFailed,
					Message: ca.Assistant.Name + " could not respond. Please try again.",
				})
				return
			}
			s.notifier.Push(conversation.Id, websocket.TypeMessage, toMessageResponse(res.Message))
		}(ca)
	}
	wg.Wait()

	return nil
}

func (s *conversationService) ListMessages(ctx context.Context, userId, conversationId int64) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.OrderBy{Field: "created_at"},
		specification.OrderBy{Field: "id"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		res[i] = toMessageResponse(m)
	}
	return res, nil
}

// ResetConversation summarises the conversation, then clears its messages. Only the
// conversation owner may reset it. Nothing is deleted when the summary fails.
func (s *conversationService) ResetConversation(ctx context.Context, userId, conversationId int64) (*dto.SummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}
	if conversation.UserId != userId {
		return nil, serverutils.ErrForbidden
	}

	chatContext, _, err := s.loadChatContext(ctx, uow, conversation)
	if err != nil {
		return nil, err
	}

	future, err := s.summaries.Generate(ctx, conversation, chatContext)
	if err != nil {
		return nil, err
	}
	// The freshness count must see the messages, so deletion waits for the summary.
	summary, err := future.Await(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := uow.MessageRepository().SoftDeleteByConversationId(ctx, conversation.Id)
	if err != nil {
		return nil, err
	}

	s.logger.Info(conversationModule, "Conversation reset", map[string]interface{}{
		"conversation_id":  conversation.Id,
		"deleted_messages": deleted,
		"summary_id":       summary.Id,
	})
	s.notifier.Push(conversation.Id, websocket.TypeNote, dto.ConversationNote{
		Code:    NoteReset,
		Message: "The conversation was reset.",
	})

	return toSummaryResponse(summary), nil
}

func (s *conversationService) GenerateSummary(ctx context.Context, userId, conversationId int64) (*dto.SummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarise(ctx, uow, conversation)
	if err != nil {
		return nil, err
	}
	return toSummaryResponse(summary), nil
}

func (s *conversationService) CurrentSummary(ctx context.Context, userId, conversationId int64) (*dto.SummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	summary, err := uow.SummaryRepository().FindLatestActive(ctx, conversation.Id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, serverutils.ErrNotFound
	}
	return toSummaryResponse(summary), nil
}

func (s *conversationService) SetAssistantMuted(ctx context.Context, userId, conversationId, assistantId int64, muted bool) (*dto.ConversationAssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	ca, err := s.rosterEntry(ctx, uow, conversation.Id, assistantId)
	if err != nil {
		return nil, err
	}

	ca.Muted = muted
	if err := uow.ConversationAssistantRepository().Update(ctx, ca); err != nil {
		return nil, err
	}
	return toConversationAssistantResponse(ca), nil
}

func (s *conversationService) AddAssistant(ctx context.Context, userId, conversationId, assistantId int64) (*dto.ConversationAssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	assistant, err := uow.AssistantRepository().FindOne(ctx, specification.ByID{ID: assistantId})
	if err != nil {
		return nil, err
	}
	if assistant == nil || (assistant.CompanyId != nil && *assistant.CompanyId != conversation.CompanyId) {
		return nil, serverutils.ErrNotFound
	}

	existing, err := uow.ConversationAssistantRepository().FindOne(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.Filter("assistant_id", assistantId),
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, orchestration.NewInvalidArgument("assistantId", assistant.Name+" is already in this conversation")
	}

	tone, err := s.defaultTone(ctx, uow)
	if err != nil {
		return nil, err
	}

	ca := &entity.ConversationAssistant{
		ConversationId: conversation.Id,
		AssistantId:    assistant.Id,
		ToneId:         &tone.Id,
		Assistant:      assistant,
		Tone:           tone,
	}
	if err := uow.ConversationAssistantRepository().Create(ctx, ca); err != nil {
		return nil, err
	}

	s.logger.Info(conversationModule, "Assistant joined conversation", map[string]interface{}{
		"conversation_id": conversation.Id,
		"assistant_id":    assistant.Id,
	})
	return toConversationAssistantResponse(ca), nil
}

func (s *conversationService) RemoveAssistant(ctx context.Context, userId, conversationId, assistantId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return err
	}

	ca, err := s.rosterEntry(ctx, uow, conversation.Id, assistantId)
	if err != nil {
		return err
	}
	if err := uow.ConversationAssistantRepository().Delete(ctx, ca.Id); err != nil {
		return err
	}

	s.logger.Info(conversationModule, "Assistant left conversation", map[string]interface{}{
		"conversation_id": conversation.Id,
		"assistant_id":    assistantId,
	})
	return nil
}

func (s *conversationService) SetAssistantTone(ctx context.Context, userId, conversationId, assistantId int64, toneName string) (*dto.ConversationAssistantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, _, err := s.authorize(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	ca, err := s.rosterEntry(ctx, uow, conversation.Id, assistantId)
	if err != nil {
		return nil, err
	}

	tone, err := uow.ConversationAssistantRepository().FindTone(ctx, strings.TrimSpace(toneName))
	if err != nil {
		return nil, err
	}
	if tone == nil {
		return nil, orchestration.NewInvalidArgument("tone", "unknown tone "+toneName)
	}

	ca.ToneId = &tone.Id
	ca.Tone = tone
	if err := uow.ConversationAssistantRepository().Update(ctx, ca); err != nil {
		return nil, err
	}
	return toConversationAssistantResponse(ca), nil
}

// rosterEntry fails with serverutils.ErrNotFound when the assistant is not in the conversation.
func (s *conversationService) rosterEntry(ctx context.Context, uow unitofwork.UnitOfWork, conversationId, assistantId int64) (*entity.ConversationAssistant, error) {
	ca, err := uow.ConversationAssistantRepository().FindOne(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.Filter("assistant_id", assistantId),
	)
	if err != nil {
		return nil, err
	}
	if ca == nil {
		return nil, serverutils.ErrNotFound
	}
	return ca, nil
}

// defaultTone loads the default tone, creating it on first use.
func (s *conversationService) defaultTone(ctx context.Context, uow unitofwork.UnitOfWork) (*entity.AssistantTone, error) {
	tone, err := uow.ConversationAssistantRepository().FindTone(ctx, DefaultTone)
	if err != nil || tone != nil {
		return tone, err
	}

	tone = &entity.AssistantTone{Name: DefaultTone, DisplayName: defaultToneDisplayName, Prompt: defaultTonePrompt}
	if err := uow.ConversationAssistantRepository().CreateTone(ctx, tone); err != nil {
		return nil, err
	}
	return tone, nil
}

func (s *conversationService) Authorize(ctx context.Context, userId, conversationId int64) error {
	_, _, err := s.authorize(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, conversationId)
	return err
}

func (s *conversationService) RefreshSummary(ctx context.Context, conversationId int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return err
	}
	if conversation == nil {
		return serverutils.ErrNotFound
	}

	_, err = s.summarise(ctx, uow, conversation)
	var empty *orchestration.EmptyConversationError
	if errors.As(err, &empty) {
		return nil
	}
	return err
}

func (s *conversationService) summarise(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation) (*entity.PointInTimeSummary, error) {
	chatContext, _, err := s.loadChatContext(ctx, uow, conversation)
	if err != nil {
		return nil, err
	}

	future, err := s.summaries.Generate(ctx, conversation, chatContext)
	if err != nil {
		return nil, err
	}
	return future.Await(ctx)
}

// refreshInBackground starts summary generation without waiting for it.
func (s *conversationService) refreshInBackground(ctx context.Context, conversation *entity.Conversation, chatContext *orchestration.ChatContext) {
	future, err := s.summaries.Generate(ctx, conversation, chatContext)
	if err != nil {
		s.logger.Warn(conversationModule, "Summary not started", map[string]interface{}{
			"conversation_id": conversation.Id,
			"error":           err.Error(),
		})
		return
	}

	go func() {
		// The generator already logs failures.
		_, _ = future.Await(context.Background())
	}()
}

func (s *conversationService) authorize(ctx context.Context, uow unitofwork.UnitOfWork, userId, conversationId int64) (*entity.Conversation, *entity.User, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, nil, err
	}
	if conversation == nil {
		return nil, nil, serverutils.ErrNotFound
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.CompanyId != conversation.CompanyId {
		return nil, nil, serverutils.ErrForbidden
	}
	return conversation, user, nil
}

// loadChatContext returns the chat context of the conversation and its full assistant roster.
func (s *conversationService) loadChatContext(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation) (*orchestration.ChatContext, []*entity.ConversationAssistant, error) {
	recent, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
		specification.Limit{N: historySize},
	)
	if err != nil {
		return nil, nil, err
	}
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}

	overview, err := uow.ConversationRepository().ProjectOverview(ctx, conversation.Id)
	if err != nil {
		return nil, nil, err
	}

	roster, err := uow.ConversationAssistantRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.OrderBy{Field: "id"},
	)
	if err != nil {
		return nil, nil, err
	}

	assistants := make([]*entity.Assistant, 0, len(roster))
	for _, ca := range roster {
		if ca.Assistant != nil {
			assistants = append(assistants, ca.Assistant)
		}
	}

	return &orchestration.ChatContext{
		Purpose:         conversation.Purpose,
		ProjectOverview: overview,
		Messages:        recent,
		Assistants:      assistants,
	}, roster, nil
}

func toMessageResponse(m *entity.Message) *dto.MessageResponse {
	res := &dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}

	switch a := m.Author.(type) {
	case entity.AssistantAuthor:
		res.SenderType = dto.SenderAssistant
		res.SenderId = a.AssistantId
		res.SenderName = a.Name
	case entity.UserAuthor:
		res.SenderType = dto.SenderUser
		res.SenderId = a.UserId
		res.SenderName = a.Username
	}

	if m.Metrics != nil {
		res.Metrics = &dto.MessageMetricsResponse{
			DurationMs:   m.Metrics.Duration,
			InputTokens:  m.Metrics.InputTokens,
			OutputTokens: m.Metrics.OutputTokens,
			Provider:     m.Metrics.Provider,
			Model:        m.Metrics.Model,
		}
	}
	return res
}

func toConversationAssistantResponse(ca *entity.ConversationAssistant) *dto.ConversationAssistantResponse {
	res := &dto.ConversationAssistantResponse{AssistantId: ca.AssistantId, Muted: ca.Muted}
	if ca.Assistant != nil {
		res.Name = ca.Assistant.Name
	}
	if ca.Tone != nil {
		res.Tone = ca.Tone.Name
	}
	return res
}

func toSummaryResponse(s *entity.PointInTimeSummary) *dto.SummaryResponse {
	return &dto.SummaryResponse{
		Id:                 s.Id,
		ConversationId:     s.ConversationId,
		LatestMessageId:    s.LatestMessageId,
		TopicsAndKeyPoints: s.TopicsAndKeyPoints,
		TopicSummaries:     s.TopicSummaries,
		AssistantSummaries: s.AssistantSummaries,
		CreatedAt:          s.CreatedAt,
	}
}
