package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"teamcollab-be/internal/dto"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/pkg/mailer"
	"teamcollab-be/internal/repository/specification"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/websocket"
	"teamcollab-be/pkg/events"
	pktNats "teamcollab-be/pkg/nats"
)

const notificationModule = "NotificationService"

// EventSubscriber is satisfied by *pktNats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

// NotificationService turns domain events into emails and room notes.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber EventSubscriber
	mailer     mailer.IEmailService
	notifier   ConversationNotifier
	logger     logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	sub EventSubscriber,
	mail mailer.IEmailService,
	notifier ConversationNotifier,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		mailer:     mail,
		notifier:   notifier,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, events.TypeMonthlyLimitExceeded, "budget-alert-mailer", s.handleLimitExceeded); err != nil {
		return err
	}
	if err := s.subscriber.Subscribe(ctx, events.TypeSummaryCreated, "summary-notifier", s.handleSummaryCreated); err != nil {
		return err
	}
	s.logger.Info(notificationModule, "Notification service started", nil)
	return nil
}

func (s *NotificationService) handleLimitExceeded(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	companyId, err := payloadId(payload, "company_id")
	if err != nil {
		// Redelivery cannot fix the payload.
		s.logger.Warn(notificationModule, "Dropping limit event", map[string]interface{}{"error": err.Error()})
		return nil
	}

	company, err := s.uowFactory.NewUnitOfWork(ctx).CompanyRepository().FindOne(ctx, specification.ByID{ID: companyId})
	if err != nil {
		return err
	}
	if company == nil || company.BillingEmail == "" {
		s.logger.Warn(notificationModule, "No billing contact for company", map[string]interface{}{"company_id": companyId})
		return nil
	}

	limit, _ := payload["limit"].(string)
	spent, _ := payload["current_spending"].(string)
	if err := s.mailer.SendBudgetAlert(company.BillingEmail, mailer.BudgetAlert{
		CompanyName:     company.Name,
		Limit:           limit,
		CurrentSpending: spent,
	}); err != nil {
		return fmt.Errorf("send budget alert: %w", err)
	}

	s.logger.Info(notificationModule, "Budget alert sent", map[string]interface{}{"company_id": companyId})
	return nil
}

func (s *NotificationService) handleSummaryCreated(_ context.Context, event events.Event) error {
	conversationId, err := payloadId(event.Payload(), "conversation_id")
	if err != nil {
		s.logger.Warn(notificationModule, "Dropping summary event", map[string]interface{}{"error": err.Error()})
		return nil
	}

	s.notifier.Push(conversationId, websocket.TypeNote, dto.ConversationNote{
		Code:    events.TypeSummaryCreated,
		Message: "A new conversation summary is available.",
	})
	return nil
}

// payloadId reads an integer id that may have been decoded as a JSON number or a string.
func payloadId(payload map[string]interface{}, key string) (int64, error) {
	switch v := payload[key].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, fmt.Errorf("missing %s", key)
	default:
		return 0, fmt.Errorf("unexpected %s type %T", key, v)
	}
}
