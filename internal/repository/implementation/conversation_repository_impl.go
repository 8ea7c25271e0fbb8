package implementation

import (
	"context"
	"errors"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/mapper"
	"teamcollab-be/internal/model"
	"teamcollab-be/internal/repository/contract"
	"teamcollab-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Omit("Project").Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	var m model.Conversation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Conversation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ConversationToEntity(m)
	}
	return entities, nil
}

func (r *ConversationRepositoryImpl) ProjectOverview(ctx context.Context, conversationId int64) (string, error) {
	var overview string
	err := r.db.WithContext(ctx).
		Table("conversations").
		Select("projects.overview").
		Joins("JOIN projects ON projects.id = conversations.project_id").
		Where("conversations.id = ?", conversationId).
		Scan(&overview).Error
	return overview, err
}

type AssistantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewAssistantRepository(db *gorm.DB) contract.AssistantRepository {
	return &AssistantRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *AssistantRepositoryImpl) Create(ctx context.Context, assistant *entity.Assistant) error {
	m := r.mapper.AssistantToModel(assistant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*assistant = *r.mapper.AssistantToEntity(m)
	return nil
}

func (r *AssistantRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Assistant, error) {
	var m model.Assistant
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AssistantToEntity(&m), nil
}

func (r *AssistantRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Assistant, error) {
	var models []*model.Assistant
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Assistant, len(models))
	for i, m := range models {
		entities[i] = r.mapper.AssistantToEntity(m)
	}
	return entities, nil
}

type ConversationAssistantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationAssistantRepository(db *gorm.DB) contract.ConversationAssistantRepository {
	return &ConversationAssistantRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ConversationAssistantRepositoryImpl) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Assistant").Preload("Tone")
}

func (r *ConversationAssistantRepositoryImpl) Create(ctx context.Context, ca *entity.ConversationAssistant) error {
	m := r.mapper.ConversationAssistantToModel(ca)
	if err := r.db.WithContext(ctx).Omit("Assistant", "Tone").Create(m).Error; err != nil {
		return err
	}
	ca.Id = m.Id
	return nil
}

func (r *ConversationAssistantRepositoryImpl) Update(ctx context.Context, ca *entity.ConversationAssistant) error {
	m := r.mapper.ConversationAssistantToModel(ca)
	return r.db.WithContext(ctx).Omit("Assistant", "Tone").Save(m).Error
}

func (r *ConversationAssistantRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ConversationAssistant{}, id).Error
}

func (r *ConversationAssistantRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationAssistant, error) {
	var m model.ConversationAssistant
	query := applySpecifications(r.withAssociations(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationAssistantToEntity(&m), nil
}

func (r *ConversationAssistantRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationAssistant, error) {
	var models []*model.ConversationAssistant
	query := applySpecifications(r.withAssociations(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConversationAssistant, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ConversationAssistantToEntity(m)
	}
	return entities, nil
}

func (r *ConversationAssistantRepositoryImpl) CreateTone(ctx context.Context, tone *entity.AssistantTone) error {
	m := &model.AssistantTone{Name: tone.Name, DisplayName: tone.DisplayName, Prompt: tone.Prompt}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	tone.Id = m.Id
	return nil
}

func (r *ConversationAssistantRepositoryImpl) FindTone(ctx context.Context, name string) (*entity.AssistantTone, error) {
	var m model.AssistantTone
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToneToEntity(&m), nil
}
