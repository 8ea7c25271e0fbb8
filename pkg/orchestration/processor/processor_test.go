package processor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/specification"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/testutil"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/metrics"
	"teamcollab-be/pkg/orchestration/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	fixture   *testutil.Fixture
	fake      *testutil.FakeLLM
	processor *processor.Processor
	context   *orchestration.ChatContext
	message   *entity.Message
}

func setup(t *testing.T, chat func(context.Context, []llm.Message, *llm.Options) (*llm.Completion, error)) *env {
	f := testutil.Seed(t, testutil.NewTestDB(t), nil, "Nova")
	fake := &testutil.FakeLLM{ChatFunc: chat}
	log := logger.NewNopLogger()
	clock := orchestration.FixedClock{At: now}

	resolver := processor.NewModelResolver(f.Factory, orchestration.StaticSettings{LlmModel: "gpt-4o-mini"}, testutil.Providers{Provider: fake})
	p := processor.NewProcessor(f.Factory, resolver, metrics.NewRecorder(f.Factory, clock, log), clock, log, time.Second)

	msg := f.AddUserMessage(t, "Nova, which fuel?", now.Add(-time.Minute))
	cc := (&orchestration.ChatContext{
		Purpose:         f.Conversation.Purpose,
		ProjectOverview: f.Project.Overview,
		Messages:        []*entity.Message{msg},
		Assistants:      f.Assistants,
	}).WithResponder(orchestration.Responder{Assistant: f.Assistants[0]})

	return &env{fixture: f, fake: fake, processor: p, context: cc, message: msg}
}

func TestProcess_PersistsReplyWithMetrics(t *testing.T) {
	e := setup(t, testutil.Reply("Liquid hydrogen.", 120, 30))

	res, err := e.processor.Process(context.Background(), e.fixture.Conversation, e.message, e.context).Await(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Liquid hydrogen.", res.Content)
	require.NotNil(t, res.Message)
	assert.True(t, res.Message.IsAssistant())
	assert.Equal(t, now, res.Message.CreatedAt.UTC())
	require.NotNil(t, res.Metrics)
	assert.Equal(t, res.Message.Id, res.Metrics.MessageId)
	assert.Equal(t, "gpt-4o-mini", res.Metrics.Model)
	assert.Equal(t, 120, res.Metrics.InputTokens)
	assert.Equal(t, 30, res.Metrics.OutputTokens)

	history := e.fake.Call(0)
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleSystem, history[0].Role)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Nova, which fuel?"}, history[1])

	saved, err := unitofwork.NewUnitOfWork(e.fixture.DB).MessageRepository().FindOne(context.Background(), specification.ByID{ID: res.Message.Id})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assistantId, ok := saved.AssistantId()
	assert.True(t, ok)
	assert.Equal(t, e.fixture.Assistants[0].Id, assistantId)
	require.NotNil(t, saved.Metrics)
	assert.Equal(t, int64(120), int64(saved.Metrics.InputTokens))
}

func TestProcess_UsesCompanyModelOverride(t *testing.T) {
	e := setup(t, testutil.Reply("ok", 1, 1))
	db := e.fixture.DB
	require.NoError(t, db.Exec("UPDATE companies SET llm_model = ? WHERE id = ?", "gpt-4o", e.fixture.Company.Id).Error)

	res, err := e.processor.Process(context.Background(), e.fixture.Conversation, e.message, e.context).Await(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", e.fake.Options(0).Model)
	assert.Equal(t, "gpt-4o", res.Metrics.Model)
}

func TestProcess_NilInputsFailFast(t *testing.T) {
	e := setup(t, testutil.Reply("ok", 1, 1))
	noResponder := &orchestration.ChatContext{Messages: []*entity.Message{e.message}}

	tests := []struct {
		name         string
		conversation *entity.Conversation
		message      *entity.Message
		context      *orchestration.ChatContext
	}{
		{"nil conversation", nil, e.message, e.context},
		{"nil message", e.fixture.Conversation, nil, e.context},
		{"nil context", e.fixture.Conversation, e.message, nil},
		{"no responder", e.fixture.Conversation, e.message, noResponder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			future := e.processor.Process(context.Background(), tt.conversation, tt.message, tt.context)

			select {
			case <-future.Done():
			default:
				t.Fatal("future should already be resolved")
			}
			_, err := future.Await(context.Background())
			var invalid *orchestration.InvalidArgumentError
			assert.ErrorAs(t, err, &invalid)
		})
	}
	assert.Equal(t, 0, e.fake.CallCount())
}

func TestProcess_ErrorWrapping(t *testing.T) {
	tests := []struct {
		name     string
		modelErr error
		check    func(t *testing.T, err error)
	}{
		{
			name:     "invalid argument stays invalid argument",
			modelErr: orchestration.NewInvalidArgument("prompt", "too long"),
			check: func(t *testing.T, err error) {
				var invalid *orchestration.InvalidArgumentError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, "invalid input for message processing", invalid.Reason)
				assert.ErrorIs(t, err, orchestration.ErrInvalidArgument)
			},
		},
		{
			name:     "other errors become processing failures",
			modelErr: errors.New("upstream 503"),
			check: func(t *testing.T, err error) {
				var failure *orchestration.Failure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, orchestration.KindProcessing, failure.Kind)
				assert.Contains(t, failure.Error(), "upstream 503")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t, func(context.Context, []llm.Message, *llm.Options) (*llm.Completion, error) {
				return nil, tt.modelErr
			})

			_, err := e.processor.Process(context.Background(), e.fixture.Conversation, e.message, e.context).Await(context.Background())
			tt.check(t, err)
		})
	}
}

func TestProcess_OutlivesCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	e := setup(t, func(ctx context.Context, _ []llm.Message, opts *llm.Options) (*llm.Completion, error) {
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &llm.Completion{Content: "done", Model: opts.Model}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	future := e.processor.Process(ctx, e.fixture.Conversation, e.message, e.context)
	cancel()
	close(release)

	res, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", res.Content)
}
