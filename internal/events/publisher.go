package events

import (
	"context"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	pkgEvents "teamcollab-be/pkg/events"
	pktNats "teamcollab-be/pkg/nats"

	"github.com/shopspring/decimal"
)

// Publisher abstracts domain event publishing for the conversation core.
// Publishing is best effort; failures are logged, never returned.
type Publisher interface {
	PublishSummaryCreated(ctx context.Context, summary *entity.PointInTimeSummary)
	PublishMonthlyLimitExceeded(ctx context.Context, companyId int64, limit, spending decimal.Decimal)
}

// NatsPublisher implements Publisher using NATS. A nil inner publisher turns it into a no-op.
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishSummaryCreated emits SUMMARY_CREATED
func (p *NatsPublisher) PublishSummaryCreated(ctx context.Context, summary *entity.PointInTimeSummary) {
	p.publish(ctx, pkgEvents.BaseEvent{
		Type: pkgEvents.TypeSummaryCreated,
		Data: map[string]interface{}{
			"summary_id":        summary.Id,
			"conversation_id":   summary.ConversationId,
			"latest_message_id": summary.LatestMessageId,
			"entity_type":       "point_in_time_summary",
		},
		OccurredAt: time.Now(),
	})
}

// PublishMonthlyLimitExceeded emits MONTHLY_LIMIT_EXCEEDED
func (p *NatsPublisher) PublishMonthlyLimitExceeded(ctx context.Context, companyId int64, limit, spending decimal.Decimal) {
	p.publish(ctx, pkgEvents.BaseEvent{
		Type: pkgEvents.TypeMonthlyLimitExceeded,
		Data: map[string]interface{}{
			"company_id":       companyId,
			"limit":            limit.StringFixed(5),
			"current_spending": spending.StringFixed(5),
			"entity_type":      "company",
		},
		OccurredAt: time.Now(),
	})
}

func (p *NatsPublisher) publish(ctx context.Context, evt pkgEvents.BaseEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
	}
}
