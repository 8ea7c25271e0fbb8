package contract

import (
	"context"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// CountAfter counts non-deleted messages of the conversation created strictly after messageId.
	CountAfter(ctx context.Context, conversationId, messageId int64) (int64, error)
	SoftDeleteByConversationId(ctx context.Context, conversationId int64) (int64, error)
	ConversationIdsActiveSince(ctx context.Context, since time.Time) ([]int64, error)
}
