package testutil

import (
	"context"
	"sync"

	"teamcollab-be/internal/entity"

	"github.com/shopspring/decimal"
)

// LimitEvent is one recorded MONTHLY_LIMIT_EXCEEDED publication.
type LimitEvent struct {
	CompanyId int64
	Limit     decimal.Decimal
	Spending  decimal.Decimal
}

// FakePublisher records published domain events.
type FakePublisher struct {
	mu        sync.Mutex
	Summaries []*entity.PointInTimeSummary
	Limits    []LimitEvent
}

func (p *FakePublisher) PublishSummaryCreated(_ context.Context, summary *entity.PointInTimeSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Summaries = append(p.Summaries, summary)
}

func (p *FakePublisher) PublishMonthlyLimitExceeded(_ context.Context, companyId int64, limit, spending decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Limits = append(p.Limits, LimitEvent{CompanyId: companyId, Limit: limit, Spending: spending})
}

func (p *FakePublisher) SummaryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Summaries)
}
