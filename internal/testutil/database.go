// Package testutil provides an in-memory database and fakes shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/model"
	"teamcollab-be/internal/repository/unitofwork"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models is every table the service owns, in dependency order.
var Models = []interface{}{
	&model.Company{},
	&model.User{},
	&model.Project{},
	&model.SystemSettings{},
	&model.Assistant{},
	&model.AssistantTone{},
	&model.Conversation{},
	&model.ConversationAssistant{},
	&model.Message{},
	&model.Metrics{},
	&model.MetricCache{},
	&model.PointInTimeSummary{},
}

// NewTestDB opens a private in-memory SQLite database with the schema migrated.
// A single connection serialises concurrent transactions instead of failing them.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models...))
	return db
}

// NewConcurrentTestDB opens a file-backed SQLite database that allows several connections,
// so concurrent statements really interleave. Writers wait on the busy timeout.
func NewConcurrentTestDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(10000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models...))
	return db
}

// Fixture is a seeded company with one user, project, conversation and assistants.
type Fixture struct {
	DB           *gorm.DB
	Factory      unitofwork.RepositoryFactory
	Company      *entity.Company
	User         *entity.User
	Project      *entity.Project
	Conversation *entity.Conversation
	Assistants   []*entity.Assistant
}

// Seed creates a fixture; limit may be nil for an unlimited company.
func Seed(t *testing.T, db *gorm.DB, limit *decimal.Decimal, assistantNames ...string) *Fixture {
	t.Helper()
	ctx := context.Background()
	uow := unitofwork.NewUnitOfWork(db)

	company := &entity.Company{Name: "Acme", BillingEmail: "billing@acme.test", MonthlySpendingLimit: limit}
	require.NoError(t, uow.CompanyRepository().Create(ctx, company))

	user := &entity.User{Username: "alice", Email: "alice@acme.test", CompanyId: company.Id}
	require.NoError(t, uow.UserRepository().Create(ctx, user))

	project := &entity.Project{Name: "Apollo", Overview: "Ship the lunar lander", CompanyId: company.Id}
	require.NoError(t, uow.ProjectRepository().Create(ctx, project))

	conversation := &entity.Conversation{
		Purpose:   "Plan the launch",
		UserId:    user.Id,
		ProjectId: project.Id,
		CompanyId: company.Id,
	}
	require.NoError(t, uow.ConversationRepository().Create(ctx, conversation))

	f := &Fixture{
		DB:           db,
		Factory:      unitofwork.NewRepositoryFactory(db),
		Company:      company,
		User:         user,
		Project:      project,
		Conversation: conversation,
	}

	for _, name := range assistantNames {
		a := &entity.Assistant{Name: name, Expertise: name + " expertise", ExpertisePrompt: "You are " + name}
		require.NoError(t, uow.AssistantRepository().Create(ctx, a))
		require.NoError(t, uow.ConversationAssistantRepository().Create(ctx, &entity.ConversationAssistant{
			ConversationId: conversation.Id,
			AssistantId:    a.Id,
		}))
		f.Assistants = append(f.Assistants, a)
	}
	return f
}

// AddUserMessage persists a message authored by the fixture user at createdAt.
func (f *Fixture) AddUserMessage(t *testing.T, content string, createdAt time.Time) *entity.Message {
	t.Helper()
	msg := &entity.Message{
		Content:        content,
		ConversationId: f.Conversation.Id,
		Author:         entity.UserAuthor{UserId: f.User.Id, Username: f.User.Username},
		CreatedAt:      createdAt,
	}
	require.NoError(t, unitofwork.NewUnitOfWork(f.DB).MessageRepository().Create(context.Background(), msg))
	return msg
}

// AddAssistantMessage persists a message authored by assistant at createdAt.
func (f *Fixture) AddAssistantMessage(t *testing.T, assistant *entity.Assistant, content string, createdAt time.Time) *entity.Message {
	t.Helper()
	msg := &entity.Message{
		Content:        content,
		ConversationId: f.Conversation.Id,
		Author:         entity.AssistantAuthor{AssistantId: assistant.Id, Name: assistant.Name},
		CreatedAt:      createdAt,
	}
	require.NoError(t, unitofwork.NewUnitOfWork(f.DB).MessageRepository().Create(context.Background(), msg))
	return msg
}
