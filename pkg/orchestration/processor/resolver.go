package processor

import (
	"context"
	"fmt"
	"strings"

	"teamcollab-be/internal/repository/specification"
	"teamcollab-be/internal/repository/unitofwork"
	"teamcollab-be/pkg/llm"
	"teamcollab-be/pkg/orchestration"
)

// ModelResolver picks the reply model for a company: its override when set, otherwise
// the platform default.
type ModelResolver struct {
	uowFactory unitofwork.RepositoryFactory
	settings   orchestration.SettingsProvider
	providers  orchestration.ProviderResolver
}

func NewModelResolver(uowFactory unitofwork.RepositoryFactory, settings orchestration.SettingsProvider, providers orchestration.ProviderResolver) *ModelResolver {
	return &ModelResolver{uowFactory: uowFactory, settings: settings, providers: providers}
}

func (r *ModelResolver) Resolve(ctx context.Context, companyId int64) (string, llm.LLMProvider, error) {
	company, err := r.uowFactory.NewUnitOfWork(ctx).CompanyRepository().FindOne(ctx, specification.ByID{ID: companyId})
	if err != nil {
		return "", nil, fmt.Errorf("load company: %w", err)
	}

	model := ""
	if company != nil {
		model = strings.TrimSpace(company.LlmModel)
	}
	if model == "" {
		settings, err := r.settings.Current(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("load settings: %w", err)
		}
		model = settings.LlmModel
	}
	if model == "" {
		return "", nil, orchestration.NewInvalidArgument("model", "no reply model configured")
	}

	provider, err := r.providers.ForModel(model)
	if err != nil {
		return "", nil, err
	}
	return model, provider, nil
}
