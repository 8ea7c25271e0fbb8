package model

import (
	"time"

	"gorm.io/gorm"
)

// Message keeps the author as two nullable foreign keys; exactly one of them is set.
type Message struct {
	Id             int64          `gorm:"primaryKey;autoIncrement"`
	Content        string         `gorm:"type:text;not null"`
	ConversationId int64          `gorm:"not null;index:idx_messages_conversation_created,priority:1"`
	UserId         *int64         `gorm:"index"`
	AssistantId    *int64         `gorm:"index"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_messages_conversation_created,priority:2"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`

	User      *User      `gorm:"foreignKey:UserId"`
	Assistant *Assistant `gorm:"foreignKey:AssistantId"`
	Metrics   *Metrics   `gorm:"foreignKey:MessageId"`
}

func (Message) TableName() string {
	return "messages"
}
