package implementation

import (
	"context"
	"errors"
	"time"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/mapper"
	"teamcollab-be/internal/model"
	"teamcollab-be/internal/repository/contract"
	"teamcollab-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetricsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MetricsMapper
}

func NewMetricsRepository(db *gorm.DB) contract.MetricsRepository {
	return &MetricsRepositoryImpl{
		db:     db,
		mapper: mapper.NewMetricsMapper(),
	}
}

func (r *MetricsRepositoryImpl) Create(ctx context.Context, metrics *entity.Metrics) error {
	m := r.mapper.MetricsToModel(metrics)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*metrics = *r.mapper.MetricsToEntity(m)
	return nil
}

func (r *MetricsRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Metrics, error) {
	var models []*model.Metrics
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *MetricsRepositoryImpl) FindForCompanyBetween(ctx context.Context, companyId int64, from, to time.Time) ([]*entity.Metrics, error) {
	var models []*model.Metrics
	err := r.db.WithContext(ctx).
		Select("metrics.*").
		Joins("JOIN messages ON messages.id = metrics.message_id").
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.company_id = ?", companyId).
		Where("messages.created_at BETWEEN ? AND ?", from, to).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *MetricsRepositoryImpl) toEntities(models []*model.Metrics) []*entity.Metrics {
	entities := make([]*entity.Metrics, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MetricsToEntity(m)
	}
	return entities
}

type MetricCacheRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MetricsMapper
}

func NewMetricCacheRepository(db *gorm.DB) contract.MetricCacheRepository {
	return &MetricCacheRepositoryImpl{
		db:     db,
		mapper: mapper.NewMetricsMapper(),
	}
}

func (r *MetricCacheRepositoryImpl) EnsureExists(ctx context.Context, conversationId int64, llmModel string) error {
	row := &model.MetricCache{ConversationId: conversationId, LlmModel: llmModel}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

// Increment applies delta with server-side arithmetic in a single UPDATE.
func (r *MetricCacheRepositoryImpl) Increment(ctx context.Context, conversationId int64, llmModel string, delta contract.CacheDelta) error {
	res := r.db.WithContext(ctx).
		Model(&model.MetricCache{}).
		Where("conversation_id = ? AND llm_model = ?", conversationId, llmModel).
		Updates(map[string]interface{}{
			"total_duration":      gorm.Expr("total_duration + ?", delta.Duration),
			"message_count":       gorm.Expr("message_count + ?", delta.Messages),
			"total_input_tokens":  gorm.Expr("total_input_tokens + ?", delta.InputTokens),
			"total_output_tokens": gorm.Expr("total_output_tokens + ?", delta.OutputTokens),
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MetricCacheRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MetricCache, error) {
	var m model.MetricCache
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MetricCacheToEntity(&m), nil
}

func (r *MetricCacheRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MetricCache, error) {
	var models []*model.MetricCache
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.MetricCache, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MetricCacheToEntity(m)
	}
	return entities, nil
}

type SummaryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MetricsMapper
}

func NewSummaryRepository(db *gorm.DB) contract.SummaryRepository {
	return &SummaryRepositoryImpl{
		db:     db,
		mapper: mapper.NewMetricsMapper(),
	}
}

func (r *SummaryRepositoryImpl) Create(ctx context.Context, summary *entity.PointInTimeSummary) error {
	m := r.mapper.SummaryToModel(summary)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*summary = *r.mapper.SummaryToEntity(m)
	return nil
}

func (r *SummaryRepositoryImpl) FindLatestActive(ctx context.Context, conversationId int64) (*entity.PointInTimeSummary, error) {
	var m model.PointInTimeSummary
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND is_active = ?", conversationId, true).
		Order("created_at DESC").
		Order("id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SummaryToEntity(&m), nil
}

func (r *SummaryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PointInTimeSummary, error) {
	var models []*model.PointInTimeSummary
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PointInTimeSummary, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SummaryToEntity(m)
	}
	return entities, nil
}
