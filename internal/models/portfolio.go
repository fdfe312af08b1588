package models

import "gorm.io/gorm"

type Portfolio struct {
	gorm.Model
	Name              string     `gorm:"size:255;not null" json:"name"`
	JobTitle          string     `gorm:"size:255" json:"job_title"`
	AboutDescription1 string     `gorm:"type:text" json:"about_description_1"`
	AboutDescription2 string     `gorm:"type:text" json:"about_description_2"`
	Skills            StringList `gorm:"serializer:json" json:"skills"`

	// Адрес владельца — корень дерева доступа, один портфель на владельца.
	OwnerEmail string `gorm:"uniqueIndex;size:255;not null" json:"owner_email"`

	ContactEmail    string `gorm:"size:255" json:"contact_email"`
	GithubURL       string `gorm:"size:512" json:"github_url"`
	LinkedinURL     string `gorm:"size:512" json:"linkedin_url"`
	TwitterURL      string `gorm:"size:512" json:"twitter_url"`
	ResumeURL       string `gorm:"size:512" json:"resume_url"`
	ContactLocation string `gorm:"size:255" json:"contact_location"`

	Projects        []Project        `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"-"`
	ArchiveProjects []ArchiveProject `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"-"`
	Roles           []PortfolioRole  `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"-"`
}

// StringList хранится в одной JSON-колонке (skills, tools, build).
type StringList []string

func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}
