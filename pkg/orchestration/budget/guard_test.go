package budget_test

import (
	"context"
	"testing"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/testutil"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/budget"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)

func setup(t *testing.T, limit *decimal.Decimal) (*budget.Guard, *testutil.Fixture, *testutil.FakePublisher) {
	f := testutil.Seed(t, testutil.NewTestDB(t), limit, "Nova")
	pub := &testutil.FakePublisher{}
	return budget.NewGuard(f.Factory, pub, orchestration.FixedClock{At: now}, logger.NewNopLogger()), f, pub
}

// spend stores an assistant reply at sentAt with metrics for model and tokens.
func spend(t *testing.T, f *testutil.Fixture, sentAt time.Time, model string, in, out int) {
	msg := f.AddAssistantMessage(t, f.Assistants[0], "reply", sentAt)
	require.NoError(t, unitofwork.NewUnitOfWork(f.DB).MetricsRepository().Create(context.Background(), &entity.Metrics{
		MessageId:    msg.Id,
		InputTokens:  in,
		OutputTokens: out,
		Provider:     "OpenAI",
		Model:        model,
		CreatedAt:    sentAt,
	}))
}

func limitOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCheckBudget_NoLimitNeverFails(t *testing.T) {
	guard, f, pub := setup(t, nil)
	// gpt-4: 1M input tokens = 30.00
	spend(t, f, now.Add(-time.Hour), "gpt-4", 1_000_000, 0)

	assert.NoError(t, guard.CheckBudget(context.Background(), f.Company.Id))
	assert.Empty(t, pub.Limits)
}

func TestCheckBudget_LimitReached(t *testing.T) {
	guard, f, pub := setup(t, limitOf("0.50"))
	// gpt-4o: 100k input = 0.25, 25k output = 0.25
	spend(t, f, now.Add(-2*time.Hour), "gpt-4o", 100_000, 0)
	spend(t, f, now.Add(-time.Hour), "gpt-4o", 0, 25_000)

	err := guard.CheckBudget(context.Background(), f.Company.Id)

	var exceeded *orchestration.MonthlyLimitExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, f.Company.Id, exceeded.CompanyId)
	assert.True(t, exceeded.Limit.Equal(decimal.RequireFromString("0.50")))
	assert.True(t, exceeded.CurrentSpending.Equal(decimal.RequireFromString("0.50")), exceeded.CurrentSpending.String())
	require.Len(t, pub.Limits, 1)
	assert.Equal(t, f.Company.Id, pub.Limits[0].CompanyId)
}

type steppingClock struct{ at *time.Time }

func (c steppingClock) Now() time.Time { return *c.at }

func TestCheckBudget_AlertsOncePerCompanyAndMonth(t *testing.T) {
	ctx := context.Background()
	f := testutil.Seed(t, testutil.NewTestDB(t), limitOf("0.50"), "Nova")
	pub := &testutil.FakePublisher{}
	at := now
	guard := budget.NewGuard(f.Factory, pub, steppingClock{at: &at}, logger.NewNopLogger())

	// gpt-4o: 200k input = 0.50
	spend(t, f, now.Add(-time.Hour), "gpt-4o", 200_000, 0)
	for i := 0; i < 3; i++ {
		var exceeded *orchestration.MonthlyLimitExceededError
		require.ErrorAs(t, guard.CheckBudget(ctx, f.Company.Id), &exceeded)
	}
	require.Len(t, pub.Limits, 1)

	at = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, guard.CheckBudget(ctx, f.Company.Id))

	spend(t, f, at.Add(-time.Hour), "gpt-4o", 200_000, 0)
	var exceeded *orchestration.MonthlyLimitExceededError
	require.ErrorAs(t, guard.CheckBudget(ctx, f.Company.Id), &exceeded)
	require.ErrorAs(t, guard.CheckBudget(ctx, f.Company.Id), &exceeded)
	assert.Len(t, pub.Limits, 2)
}

func TestCheckBudget_UnderLimit(t *testing.T) {
	guard, f, _ := setup(t, limitOf("0.50"))
	spend(t, f, now.Add(-time.Hour), "gpt-4o", 100_000, 0)

	assert.NoError(t, guard.CheckBudget(context.Background(), f.Company.Id))
}

func TestCurrentSpending_OnlyCountsThisMonth(t *testing.T) {
	guard, f, _ := setup(t, nil)
	spend(t, f, time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC), "gpt-4o", 1_000_000, 0)
	spend(t, f, time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC), "gpt-4o-mini", 1_000_000, 1_000_000)
	spend(t, f, now.Add(-time.Minute), "unknown-model", 1_000_000, 0)

	spent, err := guard.CurrentSpending(context.Background(), f.Company.Id)
	require.NoError(t, err)
	assert.True(t, spent.Equal(decimal.RequireFromString("0.75")), spent.String())
}

func TestCheckBudget_UnknownCompany(t *testing.T) {
	guard, _, _ := setup(t, nil)

	err := guard.CheckBudget(context.Background(), 999)
	assert.ErrorIs(t, err, orchestration.ErrInvalidArgument)
}
