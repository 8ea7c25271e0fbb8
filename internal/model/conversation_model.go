package model

import "time"

type Conversation struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	Purpose   string    `gorm:"type:text"`
	UserId    int64     `gorm:"not null;index"`
	ProjectId int64     `gorm:"not null;index"`
	CompanyId int64     `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Project Project `gorm:"foreignKey:ProjectId"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type Assistant struct {
	Id              int64     `gorm:"primaryKey;autoIncrement"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Expertise       string    `gorm:"type:text"`
	ExpertisePrompt string    `gorm:"type:text"`
	CompanyId       *int64    `gorm:"index"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (Assistant) TableName() string {
	return "assistants"
}

type AssistantTone struct {
	Id          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(100)"`
	Prompt      string `gorm:"type:text"`
}

func (AssistantTone) TableName() string {
	return "assistant_tones"
}

type ConversationAssistant struct {
	Id             int64 `gorm:"primaryKey;autoIncrement"`
	ConversationId int64 `gorm:"not null;uniqueIndex:idx_conversation_assistant,priority:1"`
	AssistantId    int64 `gorm:"not null;uniqueIndex:idx_conversation_assistant,priority:2"`
	Muted          bool  `gorm:"not null;default:false"`
	ToneId         *int64

	Assistant Assistant      `gorm:"foreignKey:AssistantId"`
	Tone      *AssistantTone `gorm:"foreignKey:ToneId"`
}

func (ConversationAssistant) TableName() string {
	return "conversation_assistants"
}
