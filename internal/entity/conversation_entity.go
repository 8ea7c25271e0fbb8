package entity

import "time"

type Conversation struct {
	Id        int64
	Purpose   string
	UserId    int64
	ProjectId int64
	CompanyId int64
	CreatedAt time.Time
}

type Assistant struct {
	Id              int64
	Name            string
	Expertise       string
	ExpertisePrompt string
	CompanyId       *int64
	CreatedAt       time.Time
}

type AssistantTone struct {
	Id          int64
	Name        string
	DisplayName string
	Prompt      string
}

// ConversationAssistant is the roster entry of an assistant inside a conversation.
type ConversationAssistant struct {
	Id             int64
	ConversationId int64
	AssistantId    int64
	Muted          bool
	ToneId         *int64

	Assistant *Assistant
	Tone      *AssistantTone
}
