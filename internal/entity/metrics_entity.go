package entity

import "time"

type Metrics struct {
	Id             int64
	MessageId      int64
	Duration       int64 // milliseconds
	InputTokens    int
	OutputTokens   int
	Provider       string
	Model          string
	AdditionalInfo map[string]interface{}
	CreatedAt      time.Time
}

// MetricCache aggregates usage per (conversation, model).
type MetricCache struct {
	Id                int64
	ConversationId    int64
	LlmModel          string
	TotalDuration     int64
	MessageCount      int64
	TotalInputTokens  int64
	TotalOutputTokens int64
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

type PointInTimeSummary struct {
	Id                 int64
	ConversationId     int64
	LatestMessageId    int64
	TopicsAndKeyPoints string
	TopicSummaries     string
	AssistantSummaries string
	CreatedAt          time.Time
	IsActive           bool
}
