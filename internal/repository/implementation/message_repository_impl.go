package implementation

import (
	"context"
	"errors"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/mapper"
	"teamcollab-be/internal/model"
	"teamcollab-be/internal/repository/contract"
	"teamcollab-be/internal/repository/specification"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

// withAuthors loads the association rows needed to resolve sender names.
func (r *MessageRepositoryImpl) withAuthors(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Assistant").Preload("Metrics")
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m, err := r.mapper.MessageToModel(message)
	if err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Omit("User", "Assistant", "Metrics").Create(m).Error; err != nil {
		return err
	}
	message.Id = m.Id
	message.CreatedAt = m.CreatedAt
	return nil
}

func (r *MessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	var m model.Message
	query := applySpecifications(r.withAuthors(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m)
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := applySpecifications(r.withAuthors(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Message, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.MessageToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageRepositoryImpl) CountAfter(ctx context.Context, conversationId, messageId int64) (int64, error) {
	// The referenced message may itself be soft-deleted after a reset.
	pivot := r.db.WithContext(ctx).Unscoped().Model(&model.Message{}).Select("created_at").Where("id = ?", messageId)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ?", conversationId).
		Where("created_at > (?)", pivot).
		Count(&count).Error
	return count, err
}

func (r *MessageRepositoryImpl) SoftDeleteByConversationId(ctx context.Context, conversationId int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).Delete(&model.Message{})
	return res.RowsAffected, res.Error
}

func (r *MessageRepositoryImpl) ConversationIdsActiveSince(ctx context.Context, since time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Distinct("conversation_id").
		Where("created_at > ?", since).
		Pluck("conversation_id", &ids).Error
	return ids, err
}
