package models

import "gorm.io/gorm"

type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformDesign Platform = "design"
)

func ValidPlatform(p Platform) bool {
	return p == PlatformWeb || p == PlatformDesign
}

type Project struct {
	gorm.Model
	PortfolioID uint      `gorm:"not null;index" json:"portfolio_id"`
	Portfolio   Portfolio `gorm:"foreignKey:PortfolioID" json:"-"`

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Platform    Platform   `gorm:"type:varchar(20);not null" json:"platform"`
	Tools       StringList `gorm:"serializer:json" json:"tools"`
	ImageURL    string     `gorm:"size:512" json:"image_url"`
	LiveURL     string     `gorm:"size:512" json:"live_url"`
	RepoURL     string     `gorm:"size:512" json:"repo_url"`
	Featured    bool       `gorm:"not null;default:false" json:"featured"`

	Tags []ProjectTag `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}
