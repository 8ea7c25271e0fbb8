// Package budget enforces the monthly spending limit of a company.
package budget

import (
	"context"
	"fmt"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/events"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/specification"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/pricing"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	logModule = "BUDGET"

	// alertRetention outlives the month an alert key names.
	alertRetention = 32 * 24 * time.Hour
)

type Guard struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	clock      orchestration.Clock
	logger     logger.ILogger
	// alerted holds one key per company and month whose limit event was published.
	alerted *cache.Cache
}

func NewGuard(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, clock orchestration.Clock, log logger.ILogger) *Guard {
	return &Guard{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clock,
		logger:     log,
		alerted:    cache.New(alertRetention, time.Hour),
	}
}

// CheckBudget fails with *orchestration.MonthlyLimitExceededError once the current month's
// spend reaches the company limit. Companies without a limit always pass. The limit event
// is published once per company and month.
func (g *Guard) CheckBudget(ctx context.Context, companyId int64) error {
	company, err := g.company(ctx, companyId)
	if err != nil {
		return err
	}
	if company.MonthlySpendingLimit == nil {
		return nil
	}

	now := g.clock.Now()
	spent, err := g.sum(ctx, companyId, orchestration.StartOfMonth(now), now)
	if err != nil {
		return err
	}

	limit := *company.MonthlySpendingLimit
	if spent.GreaterThanOrEqual(limit) {
		g.logger.Warn(logModule, "Monthly spending limit exceeded", map[string]interface{}{
			"company_id": companyId,
			"limit":      limit.StringFixed(pricing.CostScale),
			"spent":      spent.StringFixed(pricing.CostScale),
		})
		alertKey := fmt.Sprintf("%d:%s", companyId, now.Format("2006-01"))
		if g.alerted.Add(alertKey, struct{}{}, cache.DefaultExpiration) == nil {
			g.publisher.PublishMonthlyLimitExceeded(ctx, companyId, limit, spent)
		}
		return &orchestration.MonthlyLimitExceededError{CompanyId: companyId, Limit: limit, CurrentSpending: spent}
	}
	return nil
}

// CurrentSpending returns the cost of every model call billed to the company since the
// start of the current month.
func (g *Guard) CurrentSpending(ctx context.Context, companyId int64) (decimal.Decimal, error) {
	if _, err := g.company(ctx, companyId); err != nil {
		return decimal.Zero, err
	}
	return g.spending(ctx, companyId)
}

// Spending sums the cost of the company's metrics in [from, to].
func (g *Guard) Spending(ctx context.Context, companyId int64, from, to time.Time) (decimal.Decimal, error) {
	return g.sum(ctx, companyId, from, to)
}

func (g *Guard) company(ctx context.Context, companyId int64) (*entity.Company, error) {
	company, err := g.uowFactory.NewUnitOfWork(ctx).CompanyRepository().FindOne(ctx, specification.ByID{ID: companyId})
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	if company == nil {
		return nil, orchestration.NewInvalidArgument("companyId", fmt.Sprintf("company %d not found", companyId))
	}
	return company, nil
}

func (g *Guard) spending(ctx context.Context, companyId int64) (decimal.Decimal, error) {
	now := g.clock.Now()
	return g.sum(ctx, companyId, orchestration.StartOfMonth(now), now)
}

// sum prices each metrics row. Rows whose model has no price count as zero.
func (g *Guard) sum(ctx context.Context, companyId int64, from, to time.Time) (decimal.Decimal, error) {
	rows, err := g.uowFactory.NewUnitOfWork(ctx).MetricsRepository().FindForCompanyBetween(ctx, companyId, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load metrics: %w", err)
	}

	total := decimal.Zero
	for _, m := range rows {
		cost, err := pricing.ComputeCost(m.Model, int64(m.InputTokens), int64(m.OutputTokens))
		if err != nil {
			g.logger.Warn(logModule, "Skipping metrics without a price", map[string]interface{}{
				"metrics_id": m.Id,
				"model":      m.Model,
				"error":      err.Error(),
			})
			continue
		}
		total = total.Add(cost)
	}
	return total, nil
}
