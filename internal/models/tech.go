package models

import "gorm.io/gorm"

// Глобальный словарь тегов (frontend, backend, fullstack и т.п.).
type TechTag struct {
	gorm.Model
	Tag string `gorm:"uniqueIndex;size:100;not null" json:"tag"`
}

// Глобальный словарь технологий с необязательной категорией.
type TechOption struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Category string `gorm:"size:100" json:"category"`
}

// Связь "проект → тег".
type ProjectTag struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProjectID uint `gorm:"not null;index;uniqueIndex:idx_project_tag" json:"project_id"`
	TechTagID uint `gorm:"not null;uniqueIndex:idx_project_tag" json:"tech_tag_id"`

	TechTag TechTag `gorm:"foreignKey:TechTagID" json:"tech_tag,omitempty"`
}

// Связь "архивная запись → тег".
type ArchiveProjectTag struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ArchiveProjectID uint `gorm:"not null;index;uniqueIndex:idx_archive_project_tag" json:"archive_project_id"`
	TechTagID        uint `gorm:"not null;uniqueIndex:idx_archive_project_tag" json:"tech_tag_id"`

	TechTag TechTag `gorm:"foreignKey:TechTagID" json:"tech_tag,omitempty"`
}
