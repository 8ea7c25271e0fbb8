package dto

import "time"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

type PostMessageRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type MuteAssistantRequest struct {
	Muted *bool `json:"muted" validate:"required"`
}

type AddAssistantRequest struct {
	AssistantId int64 `json:"assistant_id" validate:"required,gt=0"`
}

type SetToneRequest struct {
	Tone string `json:"tone" validate:"required,max=50"`
}

// MessageCreatedJob is the watermill payload that starts the reply pipeline.
type MessageCreatedJob struct {
	MessageId      int64 `json:"message_id"`
	ConversationId int64 `json:"conversation_id"`
}

type MessageMetricsResponse struct {
	DurationMs   int64  `json:"duration_ms"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
}

type MessageResponse struct {
	Id             int64                   `json:"id"`
	ConversationId int64                   `json:"conversation_id"`
	Content        string                  `json:"content"`
	SenderType     string                  `json:"sender_type"`
	SenderId       int64                   `json:"sender_id"`
	SenderName     string                  `json:"sender_name"`
	CreatedAt      time.Time               `json:"created_at"`
	Metrics        *MessageMetricsResponse `json:"metrics,omitempty"`
}

type SummaryResponse struct {
	Id                 int64     `json:"id"`
	ConversationId     int64     `json:"conversation_id"`
	LatestMessageId    int64     `json:"latest_message_id"`
	TopicsAndKeyPoints string    `json:"topics_and_key_points"`
	TopicSummaries     string    `json:"topic_summaries"`
	AssistantSummaries string    `json:"assistant_summaries"`
	CreatedAt          time.Time `json:"created_at"`
}

type ConversationAssistantResponse struct {
	AssistantId int64  `json:"assistant_id"`
	Name        string `json:"name"`
	Muted       bool   `json:"muted"`
	Tone        string `json:"tone,omitempty"`
}

// ConversationNote is the payload of a NOTE frame.
type ConversationNote struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AssistantThinking is the payload of a THINKING frame.
type AssistantThinking struct {
	AssistantId int64  `json:"assistant_id"`
	Name        string `json:"name"`
	MessageId   int64  `json:"message_id"`
}
