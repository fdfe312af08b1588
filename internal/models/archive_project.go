package models

import "gorm.io/gorm"

// ArchiveProject — записи архива (старые/мелкие работы без карточки проекта).
type ArchiveProject struct {
	gorm.Model
	PortfolioID uint      `gorm:"not null;index" json:"portfolio_id"`
	Portfolio   Portfolio `gorm:"foreignKey:PortfolioID" json:"-"`

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Year        string     `gorm:"size:10" json:"year"`
	MadeAt      string     `gorm:"size:255" json:"made_at"`
	Build       StringList `gorm:"serializer:json" json:"build"`
	LiveURL     string     `gorm:"size:512" json:"live_url"`
	RepoURL     string     `gorm:"size:512" json:"repo_url"`

	Tags []ArchiveProjectTag `gorm:"foreignKey:ArchiveProjectID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}
