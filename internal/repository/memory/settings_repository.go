package memory

import (
	"context"
	"sync"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

const settingsKey = "system_settings"

// SettingsRepository serves SystemSettings from memory and reloads the row after ttl.
// Empty columns fall back to the configured defaults.
type SettingsRepository struct {
	cache      *cache.Cache
	uowFactory unitofwork.RepositoryFactory
	defaults   entity.SystemSettings
	mu         sync.Mutex
}

func NewSettingsRepository(uowFactory unitofwork.RepositoryFactory, defaults entity.SystemSettings, ttl time.Duration) *SettingsRepository {
	return &SettingsRepository{
		cache:      cache.New(ttl, 2*ttl),
		uowFactory: uowFactory,
		defaults:   defaults,
	}
}

func (r *SettingsRepository) Current(ctx context.Context) (*entity.SystemSettings, error) {
	if x, found := r.cache.Get(settingsKey); found {
		s := x.(entity.SystemSettings)
		return &s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another caller may have loaded it while we waited.
	if x, found := r.cache.Get(settingsKey); found {
		s := x.(entity.SystemSettings)
		return &s, nil
	}

	row, err := r.uowFactory.NewUnitOfWork(ctx).SystemSettingsRepository().FindCurrent(ctx)
	if err != nil {
		return nil, err
	}

	s := r.defaults
	if row != nil {
		s.Id = row.Id
		s.CreatedAt = row.CreatedAt
		if row.LlmModel != "" {
			s.LlmModel = row.LlmModel
		}
		if row.SummaryLlmModel != "" {
			s.SummaryLlmModel = row.SummaryLlmModel
		}
		if row.AssistantInteractionLlmModel != "" {
			s.AssistantInteractionLlmModel = row.AssistantInteractionLlmModel
		}
	}

	r.cache.Set(settingsKey, s, cache.DefaultExpiration)
	return &s, nil
}
