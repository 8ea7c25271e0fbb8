package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByConversationID struct {
	ConversationID int64
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

type ByCompanyID struct {
	CompanyID int64
}

func (s ByCompanyID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("company_id = ?", s.CompanyID)
}

// CreatedAfter keeps rows created strictly after At.
type CreatedAfter struct {
	At time.Time
}

func (s CreatedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at > ?", s.At)
}

// CreatedBetween is inclusive on both ends.
type CreatedBetween struct {
	From time.Time
	To   time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at BETWEEN ? AND ?", s.From, s.To)
}

type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

type NotMuted struct{}

func (s NotMuted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("muted = ?", false)
}
