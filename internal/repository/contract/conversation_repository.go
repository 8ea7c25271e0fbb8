package contract

import (
	"context"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/repository/specification"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	// ProjectOverview returns the overview of the project the conversation belongs to.
	ProjectOverview(ctx context.Context, conversationId int64) (string, error)
}

type AssistantRepository interface {
	Create(ctx context.Context, assistant *entity.Assistant) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assistant, error)
}

// ConversationAssistantRepository results always carry the Assistant and Tone associations.
type ConversationAssistantRepository interface {
	Create(ctx context.Context, ca *entity.ConversationAssistant) error
	Update(ctx context.Context, ca *entity.ConversationAssistant) error
	Delete(ctx context.Context, id int64) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationAssistant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationAssistant, error)
	CreateTone(ctx context.Context, tone *entity.AssistantTone) error
	// FindTone matches the tone name case-insensitively and returns nil when none exists.
	FindTone(ctx context.Context, name string) (*entity.AssistantTone, error)
}
