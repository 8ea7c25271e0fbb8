package service

import (
	"context"
	"testing"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/pkg/serverutils"
	"teamcollab-be/internal/repository/contract"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/testutil"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/budget"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var metricsNow = time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)

func newMetricsService(t *testing.T, limit *decimal.Decimal) (IMetricsService, *testutil.Fixture) {
	f := testutil.Seed(t, testutil.NewTestDB(t), limit, "Ada")
	clock := orchestration.FixedClock{At: metricsNow}
	guard := budget.NewGuard(f.Factory, &testutil.FakePublisher{}, clock, logger.NewNopLogger())
	return NewMetricsService(f.Factory, guard, clock), f
}

// spendAt stores a gpt-4o reply at sentAt costing 0.50 (100k input, 25k output).
func spendAt(t *testing.T, f *testutil.Fixture, sentAt time.Time) {
	msg := f.AddAssistantMessage(t, f.Assistants[0], "reply", sentAt)
	require.NoError(t, unitofwork.NewUnitOfWork(f.DB).MetricsRepository().Create(context.Background(), &entity.Metrics{
		MessageId:    msg.Id,
		InputTokens:  100_000,
		OutputTokens: 25_000,
		Provider:     "OpenAI",
		Model:        "gpt-4o",
		CreatedAt:    sentAt,
	}))
}

func TestAggregateCaches(t *testing.T) {
	tests := []struct {
		name    string
		caches  []*entity.MetricCache
		wantAvg float64
		want    string
		tokens  int64
	}{
		{"empty", nil, 0, noModel, 0},
		{
			"most messages wins",
			[]*entity.MetricCache{
				{LlmModel: "gpt-4o", MessageCount: 1, TotalDuration: 900, TotalInputTokens: 10, TotalOutputTokens: 5},
				{LlmModel: "gpt-4o-mini", MessageCount: 3, TotalDuration: 300, TotalInputTokens: 30, TotalOutputTokens: 15},
			},
			300, "gpt-4o-mini", 60,
		},
		{
			"tie keeps first",
			[]*entity.MetricCache{
				{LlmModel: "claude-3-haiku", MessageCount: 2, TotalDuration: 100},
				{LlmModel: "gpt-4o", MessageCount: 2, TotalDuration: 100},
			},
			50, "claude-3-haiku", 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := aggregateCaches(7, tt.caches)
			assert.Equal(t, int64(7), res.ConversationId)
			assert.Equal(t, tt.want, res.MostUsedModel)
			assert.InDelta(t, tt.wantAvg, res.AverageDurationMs, 0.0001)
			assert.Equal(t, tt.tokens, res.TotalTokens)
			assert.Len(t, res.Models, len(tt.caches))
		})
	}
}

func TestConversationStatistics(t *testing.T) {
	svc, f := newMetricsService(t, nil)
	ctx := context.Background()
	uow := unitofwork.NewUnitOfWork(f.DB)

	require.NoError(t, uow.MetricCacheRepository().EnsureExists(ctx, f.Conversation.Id, "gpt-4o-mini"))
	require.NoError(t, uow.MetricCacheRepository().Increment(ctx, f.Conversation.Id, "gpt-4o-mini", contract.CacheDelta{Duration: 400, Messages: 2, InputTokens: 120, OutputTokens: 40}))

	res, err := svc.ConversationStatistics(ctx, f.User.Id, f.Conversation.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.MessageCount)
	assert.Equal(t, int64(400), res.TotalDurationMs)
	assert.InDelta(t, 200, res.AverageDurationMs, 0.0001)
	assert.Equal(t, int64(160), res.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", res.MostUsedModel)

	outsider := addUser(t, f, addCompany(t, f, "Globex").Id, "mallory")
	_, err = svc.ConversationStatistics(ctx, outsider.Id, f.Conversation.Id)
	assert.ErrorIs(t, err, serverutils.ErrForbidden)
}

func TestCompanyCosts(t *testing.T) {
	svc, f := newMetricsService(t, nil)

	spendAt(t, f, metricsNow.Add(-2*time.Hour))
	spendAt(t, f, metricsNow.AddDate(0, 0, -3))
	spendAt(t, f, metricsNow.AddDate(0, 0, -20))
	spendAt(t, f, metricsNow.AddDate(0, 0, -45))

	res, err := svc.CompanyCosts(context.Background(), f.User.Id, f.Company.Id)
	require.NoError(t, err)
	assert.Equal(t, "0.50000", res.Daily.Cost)
	assert.Equal(t, "1.00000", res.Weekly.Cost)
	assert.Equal(t, "1.50000", res.Monthly.Cost)
	assert.Equal(t, metricsNow, res.Monthly.To)
	assert.Equal(t, metricsNow.AddDate(0, 0, -30), res.Monthly.From)
}

func TestCompanyCosts_OtherCompanyForbidden(t *testing.T) {
	svc, f := newMetricsService(t, nil)
	other := addCompany(t, f, "Globex")

	_, err := svc.CompanyCosts(context.Background(), f.User.Id, other.Id)
	assert.ErrorIs(t, err, serverutils.ErrForbidden)
}

func TestBudgetStatus(t *testing.T) {
	tests := []struct {
		name          string
		limit         *decimal.Decimal
		wantLimit     *string
		wantRemaining *string
		exceeded      bool
	}{
		{"unlimited", nil, nil, nil, false},
		{"under", decimalPtr("2.00"), strPtr("2.00000"), strPtr("1.00000"), false},
		{"over", decimalPtr("0.75"), strPtr("0.75000"), strPtr("0.00000"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f := newMetricsService(t, tt.limit)
			// Only the current month counts towards the budget.
			spendAt(t, f, metricsNow.Add(-time.Hour))
			spendAt(t, f, metricsNow.AddDate(0, 0, -5))
			spendAt(t, f, metricsNow.AddDate(0, -1, 0))

			res, err := svc.BudgetStatus(context.Background(), f.User.Id, f.Company.Id)
			require.NoError(t, err)
			assert.Equal(t, "1.00000", res.CurrentSpending)
			assert.Equal(t, tt.wantLimit, res.Limit)
			assert.Equal(t, tt.wantRemaining, res.Remaining)
			assert.Equal(t, tt.exceeded, res.Exceeded)
		})
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }
