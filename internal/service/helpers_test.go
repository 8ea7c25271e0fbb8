package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/pkg/logger"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/internal/testutil"
	"teamcollab-be/internal/websocket"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
	"teamcollab-be/pkg/orchestration/budget"
	"teamcollab-be/pkg/orchestration/decider"
	"teamcollab-be/pkg/orchestration/metrics"
	"teamcollab-be/pkg/orchestration/processor"
	"teamcollab-be/pkg/orchestration/summary"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testModel = "gpt-4o-mini"

type frame struct {
	ConversationId int64
	Type           websocket.MessageType
	Data           interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	frames []frame
}

func (n *fakeNotifier) Push(conversationId int64, messageType websocket.MessageType, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frames = append(n.frames, frame{ConversationId: conversationId, Type: messageType, Data: data})
}

func (n *fakeNotifier) ofType(t websocket.MessageType) []frame {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []frame
	for _, f := range n.frames {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}

type fakeJobs struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (j *fakeJobs) Publish(_ context.Context, payload []byte) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.payloads = append(j.payloads, payload)
	return j.err
}

type harness struct {
	f         *testutil.Fixture
	llm       *testutil.FakeLLM
	notifier  *fakeNotifier
	jobs      *fakeJobs
	publisher *testutil.FakePublisher
	svc       IConversationService
}

func newHarness(t *testing.T, limit *decimal.Decimal, assistants ...string) *harness {
	t.Helper()

	f := testutil.Seed(t, testutil.NewTestDB(t), limit, assistants...)
	fake := &testutil.FakeLLM{}
	providers := testutil.Providers{Provider: fake}
	settings := orchestration.StaticSettings{
		LlmModel:                     testModel,
		SummaryLlmModel:              testModel,
		AssistantInteractionLlmModel: testModel,
	}
	log := logger.NewNopLogger()
	clock := orchestration.SystemClock{}
	recorder := metrics.NewRecorder(f.Factory, clock, log)
	pub := &testutil.FakePublisher{}

	h := &harness{
		f:         f,
		llm:       fake,
		notifier:  &fakeNotifier{},
		jobs:      &fakeJobs{},
		publisher: pub,
	}
	h.svc = NewConversationService(
		f.Factory,
		h.jobs,
		decider.NewDecider(providers, settings, recorder, log, 5*time.Second),
		processor.NewProcessor(f.Factory, processor.NewModelResolver(f.Factory, settings, providers), recorder, clock, log, 5*time.Second),
		summary.NewGenerator(f.Factory, settings, providers, recorder, pub, clock, log, 5*time.Second),
		budget.NewGuard(f.Factory, pub, clock, log),
		h.notifier,
		clock,
		log,
	)
	return h
}

// route answers the decision prompt with decision, summary prompts with a fixed text and
// replies with reply (or replyErr).
func route(decision, reply string, replyErr error) func(context.Context, []llm.Message, *llm.Options) (*llm.Completion, error) {
	return func(_ context.Context, history []llm.Message, opts *llm.Options) (*llm.Completion, error) {
		system := history[0].Content
		content := reply
		switch {
		case strings.Contains(system, "routing messages"):
			content = decision
		case strings.HasPrefix(system, "You are an expert at"):
			content = "summary part"
		case replyErr != nil:
			return nil, replyErr
		}
		return &llm.Completion{
			Content: content,
			Model:   opts.Model,
			Usage:   llm.Usage{PromptTokens: 100, CompletionTokens: 20},
		}, nil
	}
}

func triggered(ids ...int64) string {
	items := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		items[i] = map[string]interface{}{"assistantId": id, "triggered": true}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func addUser(t *testing.T, f *testutil.Fixture, companyId int64, username string) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Email: username + "@example.test", CompanyId: companyId}
	require.NoError(t, unitofwork.NewUnitOfWork(f.DB).UserRepository().Create(context.Background(), u))
	return u
}

func addCompany(t *testing.T, f *testutil.Fixture, name string) *entity.Company {
	t.Helper()
	c := &entity.Company{Name: name, BillingEmail: "billing@" + strings.ToLower(name) + ".test"}
	require.NoError(t, unitofwork.NewUnitOfWork(f.DB).CompanyRepository().Create(context.Background(), c))
	return c
}
