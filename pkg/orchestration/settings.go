package orchestration

import (
	"context"

	"teamcollab-be/internal/entity"
	"teamcollab-be/pkg/llm"
)

// SettingsProvider returns the platform-wide model defaults.
type SettingsProvider interface {
	Current(ctx context.Context) (*entity.SystemSettings, error)
}

// StaticSettings serves a fixed settings value.
type StaticSettings entity.SystemSettings

func (s StaticSettings) Current(context.Context) (*entity.SystemSettings, error) {
	settings := entity.SystemSettings(s)
	return &settings, nil
}

// ProviderResolver returns the backend that serves a model id.
type ProviderResolver interface {
	ForModel(modelId string) (llm.LLMProvider, error)
}
