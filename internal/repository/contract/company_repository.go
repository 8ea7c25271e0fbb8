package contract

import (
	"context"

	"teamcollab-be/internal/entity"
	"teamcollab-be/internal/repository/specification"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Company, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error)
}

type SystemSettingsRepository interface {
	Create(ctx context.Context, settings *entity.SystemSettings) error
	// FindCurrent returns the most recently created settings row, or nil.
	FindCurrent(ctx context.Context) (*entity.SystemSettings, error)
}
