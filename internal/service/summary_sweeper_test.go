package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type steppedClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *steppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *steppedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

func TestSummarySweeper_VisitsOnlyActiveConversations(t *testing.T) {
	f := testutil.Seed(t, testutil.NewTestDB(t), nil, "Ada")
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	clock := &steppedClock{at: start}

	quiet := &entity.Conversation{Purpose: "Quiet", UserId: f.User.Id, ProjectId: f.Project.Id, CompanyId: f.Company.Id}
	require.NoError(t, unitofwork.NewUnitOfWork(f.DB).ConversationRepository().Create(context.Background(), quiet))

	conversations := &fakeConversations{failIds: map[int64]bool{}}
	sweeper := NewSummarySweeper("@every 5m", f.Factory, conversations, clock, logger.NewNopLogger())

	f.AddUserMessage(t, "before startup", start.Add(-time.Hour))
	f.AddUserMessage(t, "after startup", start.Add(time.Minute))
	clock.advance(5 * time.Minute)

	visited, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, visited)
	assert.Equal(t, []int64{f.Conversation.Id}, conversations.refreshed)

	clock.advance(5 * time.Minute)
	visited, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, visited)
}

func TestSummarySweeper_RefreshFailureDoesNotStopSweep(t *testing.T) {
	f := testutil.Seed(t, testutil.NewTestDB(t), nil, "Ada")
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	clock := &steppedClock{at: start}

	conversations := &fakeConversations{failIds: map[int64]bool{f.Conversation.Id: true}}
	sweeper := NewSummarySweeper("@every 5m", f.Factory, conversations, clock, logger.NewNopLogger())

	f.AddUserMessage(t, "hello", start.Add(time.Second))
	clock.advance(time.Minute)

	visited, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, visited)
}

func TestSummarySweeper_InvalidSpec(t *testing.T) {
	f := testutil.Seed(t, testutil.NewTestDB(t), nil)
	sweeper := NewSummarySweeper("every now and then", f.Factory, &fakeConversations{}, &steppedClock{}, logger.NewNopLogger())

	assert.Error(t, sweeper.Start())
}
