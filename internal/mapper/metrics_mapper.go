package mapper

import (
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/model"

	"gorm.io/datatypes"
)

type MetricsMapper struct{}

func NewMetricsMapper() *MetricsMapper {
	return &MetricsMapper{}
}

func (m *MetricsMapper) MetricsToEntity(mt *model.Metrics) *entity.Metrics {
	if mt == nil {
		return nil
	}
	return &entity.Metrics{
		Id:             mt.Id,
		MessageId:      mt.MessageId,
		Duration:       mt.Duration,
		InputTokens:    mt.InputTokens,
		OutputTokens:   mt.OutputTokens,
		Provider:       mt.Provider,
		Model:          mt.Model,
		AdditionalInfo: map[string]interface{}(mt.AdditionalInfo),
		CreatedAt:      mt.CreatedAt,
	}
}

func (m *MetricsMapper) MetricsToModel(mt *entity.Metrics) *model.Metrics {
	if mt == nil {
		return nil
	}
	return &model.Metrics{
		Id:             mt.Id,
		MessageId:      mt.MessageId,
		Duration:       mt.Duration,
		InputTokens:    mt.InputTokens,
		OutputTokens:   mt.OutputTokens,
		Provider:       mt.Provider,
		Model:          mt.Model,
		AdditionalInfo: datatypes.JSONMap(mt.AdditionalInfo),
		CreatedAt:      mt.CreatedAt,
	}
}

func (m *MetricsMapper) MetricCacheToEntity(c *model.MetricCache) *entity.MetricCache {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.MetricCache{
		Id:                c.Id,
		ConversationId:    c.ConversationId,
		LlmModel:          c.LlmModel,
		TotalDuration:     c.TotalDuration,
		MessageCount:      c.MessageCount,
		TotalInputTokens:  c.TotalInputTokens,
		TotalOutputTokens: c.TotalOutputTokens,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *MetricsMapper) SummaryToEntity(s *model.PointInTimeSummary) *entity.PointInTimeSummary {
	if s == nil {
		return nil
	}
	return &entity.PointInTimeSummary{
		Id:                 s.Id,
		ConversationId:     s.ConversationId,
		LatestMessageId:    s.LatestMessageId,
		TopicsAndKeyPoints: s.TopicsAndKeyPoints,
		TopicSummaries:     s.TopicSummaries,
		AssistantSummaries: s.AssistantSummaries,
		CreatedAt:          s.CreatedAt,
		IsActive:           s.IsActive,
	}
}

func (m *MetricsMapper) SummaryToModel(s *entity.PointInTimeSummary) *model.PointInTimeSummary {
	if s == nil {
		return nil
	}
	return &model.PointInTimeSummary{
		Id:                 s.Id,
		ConversationId:     s.ConversationId,
		LatestMessageId:    s.LatestMessageId,
		TopicsAndKeyPoints: s.TopicsAndKeyPoints,
		TopicSummaries:     s.TopicSummaries,
		AssistantSummaries: s.AssistantSummaries,
		CreatedAt:          s.CreatedAt,
		IsActive:           s.IsActive,
	}
}
