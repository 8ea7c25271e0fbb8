package mapper

import (
	"errors"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/model"

	"gorm.io/gorm"
)

// ErrInvalidAuthor is returned for message rows whose author columns are both set or both empty.
var ErrInvalidAuthor = errors.New("message must have exactly one author")

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Conversation Mappers

func (m *ChatMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	return &entity.Conversation{
		Id:        c.Id,
		Purpose:   c.Purpose,
		UserId:    c.UserId,
		ProjectId: c.ProjectId,
		CompanyId: c.CompanyId,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}
	return &model.Conversation{
		Id:        c.Id,
		Purpose:   c.Purpose,
		UserId:    c.UserId,
		ProjectId: c.ProjectId,
		CompanyId: c.CompanyId,
		CreatedAt: c.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) (*entity.Message, error) {
	if msg == nil {
		return nil, nil
	}

	var author entity.Author
	switch {
	case msg.UserId != nil && msg.AssistantId != nil:
		return nil, ErrInvalidAuthor
	case msg.AssistantId != nil:
		a := entity.AssistantAuthor{AssistantId: *msg.AssistantId}
		if msg.Assistant != nil {
			a.Name = msg.Assistant.Name
		}
		author = a
	case msg.UserId != nil:
		u := entity.UserAuthor{UserId: *msg.UserId}
		if msg.User != nil {
			u.Username = msg.User.Username
		}
		author = u
	default:
		return nil, ErrInvalidAuthor
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Message{
		Id:             msg.Id,
		Content:        msg.Content,
		ConversationId: msg.ConversationId,
		Author:         author,
		CreatedAt:      msg.CreatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      msg.DeletedAt.Valid,
		Metrics:        NewMetricsMapper().MetricsToEntity(msg.Metrics),
	}, nil
}

// MessageToModel leaves associations empty so that saving a message never upserts
// its author or metrics rows.
func (m *ChatMapper) MessageToModel(msg *entity.Message) (*model.Message, error) {
	if msg == nil {
		return nil, nil
	}

	out := &model.Message{
		Id:             msg.Id,
		Content:        msg.Content,
		ConversationId: msg.ConversationId,
		CreatedAt:      msg.CreatedAt,
	}

	switch a := msg.Author.(type) {
	case entity.UserAuthor:
		id := a.UserId
		out.UserId = &id
	case entity.AssistantAuthor:
		id := a.AssistantId
		out.AssistantId = &id
	default:
		return nil, ErrInvalidAuthor
	}

	if msg.DeletedAt != nil {
		out.DeletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		out.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return out, nil
}

// Assistant Mappers

func (m *ChatMapper) AssistantToEntity(a *model.Assistant) *entity.Assistant {
	if a == nil {
		return nil
	}
	return &entity.Assistant{
		Id:              a.Id,
		Name:            a.Name,
		Expertise:       a.Expertise,
		ExpertisePrompt: a.ExpertisePrompt,
		CompanyId:       a.CompanyId,
		CreatedAt:       a.CreatedAt,
	}
}

func (m *ChatMapper) AssistantToModel(a *entity.Assistant) *model.Assistant {
	if a == nil {
		return nil
	}
	return &model.Assistant{
		Id:              a.Id,
		Name:            a.Name,
		Expertise:       a.Expertise,
		ExpertisePrompt: a.ExpertisePrompt,
		CompanyId:       a.CompanyId,
		CreatedAt:       a.CreatedAt,
	}
}

func (m *ChatMapper) ToneToEntity(t *model.AssistantTone) *entity.AssistantTone {
	if t == nil {
		return nil
	}
	return &entity.AssistantTone{
		Id:          t.Id,
		Name:        t.Name,
		DisplayName: t.DisplayName,
		Prompt:      t.Prompt,
	}
}

func (m *ChatMapper) ConversationAssistantToEntity(ca *model.ConversationAssistant) *entity.ConversationAssistant {
	if ca == nil {
		return nil
	}
	out := &entity.ConversationAssistant{
		Id:             ca.Id,
		ConversationId: ca.ConversationId,
		AssistantId:    ca.AssistantId,
		Muted:          ca.Muted,
		ToneId:         ca.ToneId,
		Tone:           m.ToneToEntity(ca.Tone),
	}
	if ca.Assistant.Id != 0 {
		out.Assistant = m.AssistantToEntity(&ca.Assistant)
	}
	return out
}

func (m *ChatMapper) ConversationAssistantToModel(ca *entity.ConversationAssistant) *model.ConversationAssistant {
	if ca == nil {
		return nil
	}
	return &model.ConversationAssistant{
		Id:             ca.Id,
		ConversationId: ca.ConversationId,
		AssistantId:    ca.AssistantId,
		Muted:          ca.Muted,
		ToneId:         ca.ToneId,
	}
}
