package model

import (
	"time"

	"gorm.io/datatypes"
)

type Metrics struct {
	Id             int64             `gorm:"primaryKey;autoIncrement"`
	MessageId      int64             `gorm:"not null;uniqueIndex"`
	Duration       int64             `gorm:"not null"`
	InputTokens    int               `gorm:"not null"`
	OutputTokens   int               `gorm:"not null"`
	Provider       string            `gorm:"type:varchar(50)"`
	Model          string            `gorm:"type:varchar(100);not null"`
	AdditionalInfo datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"not null;index"`
}

func (Metrics) TableName() string {
	return "metrics"
}

type MetricCache struct {
	Id                int64     `gorm:"primaryKey;autoIncrement"`
	ConversationId    int64     `gorm:"not null;uniqueIndex:idx_metric_cache_conversation_model,priority:1"`
	LlmModel          string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_metric_cache_conversation_model,priority:2"`
	TotalDuration     int64     `gorm:"not null;default:0"`
	MessageCount      int64     `gorm:"not null;default:0"`
	TotalInputTokens  int64     `gorm:"not null;default:0"`
	TotalOutputTokens int64     `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (MetricCache) TableName() string {
	return "metric_caches"
}

type PointInTimeSummary struct {
	Id                 int64     `gorm:"primaryKey;autoIncrement"`
	ConversationId     int64     `gorm:"not null;index:idx_summaries_conversation_active,priority:1"`
	LatestMessageId    int64     `gorm:"not null"`
	TopicsAndKeyPoints string    `gorm:"type:text"`
	TopicSummaries     string    `gorm:"type:text"`
	AssistantSummaries string    `gorm:"type:text"`
	CreatedAt          time.Time `gorm:"not null"`
	IsActive           bool      `gorm:"not null;default:true;index:idx_summaries_conversation_active,priority:2"`
}

func (PointInTimeSummary) TableName() string {
	return "point_in_time_summaries"
}
