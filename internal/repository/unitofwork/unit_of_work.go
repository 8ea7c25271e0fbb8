package unitofwork

import (
	"context"

	"teamcollab-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CompanyRepository() contract.CompanyRepository
	UserRepository() contract.UserRepository
	ProjectRepository() contract.ProjectRepository
	SystemSettingsRepository() contract.SystemSettingsRepository

	ConversationRepository() contract.ConversationRepository
	AssistantRepository() contract.AssistantRepository
	ConversationAssistantRepository() contract.ConversationAssistantRepository
	MessageRepository() contract.MessageRepository

	MetricsRepository() contract.MetricsRepository
	MetricCacheRepository() contract.MetricCacheRepository
	SummaryRepository() contract.SummaryRepository
}
