package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserEmail string `gorm:"size:255"`

	Entity   string `gorm:"size:50;not null"` // "portfolio", "project", "tech_tag" и т.п.
	EntityID uint
	Action   string `gorm:"size:50;not null"` // "create", "update", "delete", "invite"
	Details  string `gorm:"type:text"`
}
