package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	Id           int64
	Name         string
	BillingEmail string
	// LlmModel overrides the system default reply model when non-empty.
	LlmModel             string
	MonthlySpendingLimit *decimal.Decimal
	CreatedAt            time.Time
}

type User struct {
	Id        int64
	Username  string
	Email     string
	CompanyId int64
	CreatedAt time.Time
}

type Project struct {
	Id        int64
	Name      string
	Overview  string
	CompanyId int64
	CreatedAt time.Time
}

// SystemSettings is the singleton row that holds platform-wide model defaults.
type SystemSettings struct {
	Id                           int64
	LlmModel                     string
	SummaryLlmModel              string
	AssistantInteractionLlmModel string
	CreatedAt                    time.Time
}
