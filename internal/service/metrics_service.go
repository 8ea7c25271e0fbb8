package service

import (
	"context"
	"time"

	"teamcollab-be/internal/dto"
	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/serverutils"
	"teamcollab-be/internal/repository/specification"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/budget"
	"teamcollab-be/pkg/orchestration/pricing"

	"github.com/shopspring/decimal"
)

const noModel = "N/A"

type IMetricsService interface {
	ConversationStatistics(ctx context.Context, userId, conversationId int64) (*dto.ConversationStatisticsResponse, error)
	CompanyCosts(ctx context.Context, userId, companyId int64) (*dto.CompanyCostsResponse, error)
	BudgetStatus(ctx context.Context, userId, companyId int64) (*dto.BudgetStatusResponse, error)
}

type metricsService struct {
	uowFactory unitofwork.RepositoryFactory
	guard      *budget.Guard
	clock      orchestration.Clock
}

func NewMetricsService(uowFactory unitofwork.RepositoryFactory, guard *budget.Guard, clock orchestration.Clock) IMetricsService {
	return &metricsService{
		uowFactory: uowFactory,
		guard:      guard,
		clock:      clock,
	}
}

// ConversationStatistics aggregates the per-model caches of a conversation.
func (s *metricsService) ConversationStatistics(ctx context.Context, userId, conversationId int64) (*dto.ConversationStatisticsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, serverutils.ErrNotFound
	}
	if _, err := s.member(ctx, uow, userId, conversation.CompanyId); err != nil {
		return nil, err
	}

	caches, err := uow.MetricCacheRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.OrderBy{Field: "llm_model"},
	)
	if err != nil {
		return nil, err
	}

	return aggregateCaches(conversation.Id, caches), nil
}

func aggregateCaches(conversationId int64, caches []*entity.MetricCache) *dto.ConversationStatisticsResponse {
	res := &dto.ConversationStatisticsResponse{
		ConversationId: conversationId,
		MostUsedModel:  noModel,
		Models:         make([]dto.ModelUsageResponse, 0, len(caches)),
	}

	var most int64
	for _, c := range caches {
		res.MessageCount += c.MessageCount
		res.TotalDurationMs += c.TotalDuration
		res.TotalInputTokens += c.TotalInputTokens
		res.TotalOutputTokens += c.TotalOutputTokens

		// Caches arrive ordered by model, so ties keep the first model alphabetically.
		if c.MessageCount > most {
			most = c.MessageCount
			res.MostUsedModel = c.LlmModel
		}

		res.Models = append(res.Models, dto.ModelUsageResponse{
			Model:             c.LlmModel,
			MessageCount:      c.MessageCount,
			TotalDurationMs:   c.TotalDuration,
			TotalInputTokens:  c.TotalInputTokens,
			TotalOutputTokens: c.TotalOutputTokens,
		})
	}

	res.TotalTokens = res.TotalInputTokens + res.TotalOutputTokens
	if res.MessageCount > 0 {
		res.AverageDurationMs = float64(res.TotalDurationMs) / float64(res.MessageCount)
	}
	return res
}

// CompanyCosts reports spend over the last 24 hours, 7 days and 30 days.
func (s *metricsService) CompanyCosts(ctx context.Context, userId, companyId int64) (*dto.CompanyCostsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.member(ctx, uow, userId, companyId); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	window := func(from time.Time) (dto.CostWindowResponse, error) {
		cost, err := s.guard.Spending(ctx, companyId, from, now)
		if err != nil {
			return dto.CostWindowResponse{}, err
		}
		return dto.CostWindowResponse{From: from, To: now, Cost: cost.StringFixed(pricing.CostScale)}, nil
	}

	res := &dto.CompanyCostsResponse{CompanyId: companyId}
	var err error
	if res.Daily, err = window(now.Add(-24 * time.Hour)); err != nil {
		return nil, err
	}
	if res.Weekly, err = window(now.AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if res.Monthly, err = window(now.AddDate(0, 0, -30)); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *metricsService) BudgetStatus(ctx context.Context, userId, companyId int64) (*dto.BudgetStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	company, err := s.member(ctx, uow, userId, companyId)
	if err != nil {
		return nil, err
	}

	spent, err := s.guard.CurrentSpending(ctx, companyId)
	if err != nil {
		return nil, err
	}

	res := &dto.BudgetStatusResponse{
		CompanyId:       companyId,
		CurrentSpending: spent.StringFixed(pricing.CostScale),
	}
	if company.MonthlySpendingLimit != nil {
		limit := *company.MonthlySpendingLimit
		remaining := decimal.Max(limit.Sub(spent), decimal.Zero)

		limitStr := limit.StringFixed(pricing.CostScale)
		remainingStr := remaining.StringFixed(pricing.CostScale)
		res.Limit = &limitStr
		res.Remaining = &remainingStr
		res.Exceeded = spent.GreaterThanOrEqual(limit)
	}
	return res, nil
}

// member returns the company when userId belongs to it.
func (s *metricsService) member(ctx context.Context, uow unitofwork.UnitOfWork, userId, companyId int64) (*entity.Company, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil || user.CompanyId != companyId {
		return nil, serverutils.ErrForbidden
	}

	company, err := uow.CompanyRepository().FindOne(ctx, specification.ByID{ID: companyId})
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, serverutils.ErrNotFound
	}
	return company, nil
}
