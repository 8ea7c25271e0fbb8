package entity

import "time"

// Author identifies who wrote a message. It is either a UserAuthor or an AssistantAuthor.
type Author interface {
	isAuthor()
}

type UserAuthor struct {
	UserId   int64
	Username string
}

type AssistantAuthor struct {
	AssistantId int64
	Name        string
}

func (UserAuthor) isAuthor()      {}
func (AssistantAuthor) isAuthor() {}

type Message struct {
	Id             int64
	Content        string
	ConversationId int64
	Author         Author
	CreatedAt      time.Time
	DeletedAt      *time.Time
	IsDeleted      bool

	Metrics *Metrics
}

func (m *Message) IsAssistant() bool {
	_, ok := m.Author.(AssistantAuthor)
	return ok
}

// AssistantId returns the authoring assistant, if any.
func (m *Message) AssistantId() (int64, bool) {
	if a, ok := m.Author.(AssistantAuthor); ok {
		return a.AssistantId, true
	}
	return 0, false
}

func (m *Message) UserId() (int64, bool) {
	if u, ok := m.Author.(UserAuthor); ok {
		return u.UserId, true
	}
	return 0, false
}
