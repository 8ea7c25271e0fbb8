package dto

import "time"

type ModelUsageResponse struct {
	Model             string `json:"model"`
	MessageCount      int64  `json:"message_count"`
	TotalDurationMs   int64  `json:"total_duration_ms"`
	TotalInputTokens  int64  `json:"total_input_tokens"`
	TotalOutputTokens int64  `json:"total_output_tokens"`
}

type ConversationStatisticsResponse struct {
	ConversationId    int64                `json:"conversation_id"`
	MessageCount      int64                `json:"message_count"`
	TotalDurationMs   int64                `json:"total_duration_ms"`
	AverageDurationMs float64              `json:"average_duration_ms"`
	TotalInputTokens  int64                `json:"total_input_tokens"`
	TotalOutputTokens int64                `json:"total_output_tokens"`
	TotalTokens       int64                `json:"total_tokens"`
	MostUsedModel     string               `json:"most_used_model"`
	Models            []ModelUsageResponse `json:"models"`
}

// CostWindowResponse amounts are decimal strings in dollars.
type CostWindowResponse struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Cost string    `json:"cost"`
}

type CompanyCostsResponse struct {
	CompanyId int64              `json:"company_id"`
	Daily     CostWindowResponse `json:"daily"`
	Weekly    CostWindowResponse `json:"weekly"`
	Monthly   CostWindowResponse `json:"monthly"`
}

type BudgetStatusResponse struct {
	CompanyId       int64   `json:"company_id"`
	Limit           *string `json:"limit"`
	CurrentSpending string  `json:"current_spending"`
	Remaining       *string `json:"remaining"`
	Exceeded        bool    `json:"exceeded"`
}
