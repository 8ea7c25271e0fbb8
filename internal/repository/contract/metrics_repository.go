package contract

import (
	"context"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/repository/specification"
)

type MetricsRepository interface {
	Create(ctx context.Context, metrics *entity.Metrics) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Metrics, error)
	// FindForCompanyBetween returns metrics of messages sent in [from, to] in any conversation of the company.
	FindForCompanyBetween(ctx context.Context, companyId int64, from, to time.Time) ([]*entity.Metrics, error)
}

// CacheDelta is added to a metric cache row in one statement.
type CacheDelta struct {
	Duration     int64
	Messages     int64
	InputTokens  int64
	OutputTokens int64
}

type MetricCacheRepository interface {
	EnsureExists(ctx context.Context, conversationId int64, llmModel string) error
	Increment(ctx context.Context, conversationId int64, llmModel string, delta CacheDelta) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MetricCache, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MetricCache, error)
}

type SummaryRepository interface {
	Create(ctx context.Context, summary *entity.PointInTimeSummary) error
	FindLatestActive(ctx context.Context, conversationId int64) (*entity.PointInTimeSummary, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PointInTimeSummary, error)
}
