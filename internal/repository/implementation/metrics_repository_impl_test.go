package implementation_test

import (
	"context"
	"sync"
	"testing"

	"teamcollab-be/internal/repository/contract"
	"teamcollab-be/internal/repository/implementation"
	"teamcollab-be/internal/repository/specification"
	"teamcollab-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMetricCacheRepository_IncrementIsOneServerSideUpdate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	f := testutil.Seed(t, db, nil)
	repo := implementation.NewMetricCacheRepository(db)
	require.NoError(t, repo.EnsureExists(ctx, f.Conversation.Id, "gpt-4o"))

	var (
		updates []string
		reads   int
	)
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:capture_update", func(tx *gorm.DB) {
		updates = append(updates, tx.Statement.SQL.String())
	}))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count_query", func(*gorm.DB) {
		reads++
	}))

	require.NoError(t, repo.Increment(ctx, f.Conversation.Id, "gpt-4o", contract.CacheDelta{
		Duration: 150, Messages: 1, InputTokens: 10, OutputTokens: 4,
	}))

	assert.Zero(t, reads)
	require.Len(t, updates, 1)
	for _, column := range []string{"total_duration", "message_count", "total_input_tokens", "total_output_tokens"} {
		assert.Regexp(t, column+"\\W*=\\s*"+column+" \\+ \\?", updates[0])
	}
}

func TestMetricCacheRepository_ParallelIncrementsAreNotLost(t *testing.T) {
	const (
		workers    = 8
		perWorker  = 5
		totalCalls = workers * perWorker
	)
	ctx := context.Background()
	db := testutil.NewConcurrentTestDB(t, workers)
	f := testutil.Seed(t, db, nil)
	repo := implementation.NewMetricCacheRepository(db)
	require.NoError(t, repo.EnsureExists(ctx, f.Conversation.Id, "gpt-4o-mini"))

	var wg sync.WaitGroup
	errs := make(chan error, totalCalls)
	start := make(chan struct{})
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < perWorker; i++ {
				errs <- repo.Increment(ctx, f.Conversation.Id, "gpt-4o-mini", contract.CacheDelta{
					Duration: 100, Messages: 1, InputTokens: 10, OutputTokens: 20,
				})
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cache, err := repo.FindOne(ctx,
		specification.ByConversationID{ConversationID: f.Conversation.Id},
		specification.Filter("llm_model", "gpt-4o-mini"),
	)
	require.NoError(t, err)
	require.NotNil(t, cache)
	assert.Equal(t, int64(100*totalCalls), cache.TotalDuration)
	assert.Equal(t, int64(totalCalls), cache.MessageCount)
	assert.Equal(t, int64(10*totalCalls), cache.TotalInputTokens)
	assert.Equal(t, int64(20*totalCalls), cache.TotalOutputTokens)
}

func TestMetricCacheRepository_IncrementWithoutRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	f := testutil.Seed(t, db, nil)
	repo := implementation.NewMetricCacheRepository(db)

	err := repo.Increment(context.Background(), f.Conversation.Id, "gpt-4o", contract.CacheDelta{Messages: 1})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
