package mapper

import (
	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/model"

	"github.com/shopspring/decimal"
)

type CompanyMapper struct{}

func NewCompanyMapper() *CompanyMapper {
	return &CompanyMapper{}
}

func (m *CompanyMapper) CompanyToEntity(c *model.Company) *entity.Company {
	if c == nil {
		return nil
	}

	var limit *decimal.Decimal
	if c.MonthlySpendingLimit.Valid {
		l := c.MonthlySpendingLimit.Decimal
		limit = &l
	}

	return &entity.Company{
		Id:                   c.Id,
		Name:                 c.Name,
		BillingEmail:         c.BillingEmail,
		LlmModel:             c.LlmModel,
		MonthlySpendingLimit: limit,
		CreatedAt:            c.CreatedAt,
	}
}

func (m *CompanyMapper) CompanyToModel(c *entity.Company) *model.Company {
	if c == nil {
		return nil
	}

	var limit decimal.NullDecimal
	if c.MonthlySpendingLimit != nil {
		limit = decimal.NullDecimal{Decimal: *c.MonthlySpendingLimit, Valid: true}
	}

	return &model.Company{
		Id:                   c.Id,
		Name:                 c.Name,
		BillingEmail:         c.BillingEmail,
		LlmModel:             c.LlmModel,
		MonthlySpendingLimit: limit,
		CreatedAt:            c.CreatedAt,
	}
}

func (m *CompanyMapper) UserToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		CompanyId: u.CompanyId,
		CreatedAt: u.CreatedAt,
	}
}

func (m *CompanyMapper) UserToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		CompanyId: u.CompanyId,
		CreatedAt: u.CreatedAt,
	}
}

func (m *CompanyMapper) ProjectToEntity(p *model.Project) *entity.Project {
	if p == nil {
		return nil
	}
	return &entity.Project{
		Id:        p.Id,
		Name:      p.Name,
		Overview:  p.Overview,
		CompanyId: p.CompanyId,
		CreatedAt: p.CreatedAt,
	}
}

func (m *CompanyMapper) ProjectToModel(p *entity.Project) *model.Project {
	if p == nil {
		return nil
	}
	return &model.Project{
		Id:        p.Id,
		Name:      p.Name,
		Overview:  p.Overview,
		CompanyId: p.CompanyId,
		CreatedAt: p.CreatedAt,
	}
}

func (m *CompanyMapper) SettingsToEntity(s *model.SystemSettings) *entity.SystemSettings {
	if s == nil {
		return nil
	}
	return &entity.SystemSettings{
		Id:                           s.Id,
		LlmModel:                     s.LlmModel,
		SummaryLlmModel:              s.SummaryLlmModel,
		AssistantInteractionLlmModel: s.AssistantInteractionLlmModel,
		CreatedAt:                    s.CreatedAt,
	}
}

func (m *CompanyMapper) SettingsToModel(s *entity.SystemSettings) *model.SystemSettings {
	if s == nil {
		return nil
	}
	return &model.SystemSettings{
		Id:                           s.Id,
		LlmModel:                     s.LlmModel,
		SummaryLlmModel:              s.SummaryLlmModel,
		AssistantInteractionLlmModel: s.AssistantInteractionLlmModel,
		CreatedAt:                    s.CreatedAt,
	}
}
