package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	Id                   int64               `gorm:"primaryKey;autoIncrement"`
	Name                 string              `gorm:"type:varchar(200);not null"`
	BillingEmail         string              `gorm:"type:varchar(255)"`
	LlmModel             string              `gorm:"type:varchar(100)"`
	MonthlySpendingLimit decimal.NullDecimal `gorm:"type:numeric(14,5)"`
	CreatedAt            time.Time           `gorm:"autoCreateTime"`
}

func (Company) TableName() string {
	return "companies"
}

type User struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email     string    `gorm:"type:varchar(255)"`
	CompanyId int64     `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

type Project struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Overview  string    `gorm:"type:text"`
	CompanyId int64     `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Project) TableName() string {
	return "projects"
}

type SystemSettings struct {
	Id                           int64     `gorm:"primaryKey;autoIncrement"`
	LlmModel                     string    `gorm:"type:varchar(100);not null"`
	SummaryLlmModel              string    `gorm:"type:varchar(100);not null"`
	AssistantInteractionLlmModel string    `gorm:"type:varchar(100);not null"`
	CreatedAt                    time.Time `gorm:"autoCreateTime"`
}

func (SystemSettings) TableName() string {
	return "system_settings"
}
