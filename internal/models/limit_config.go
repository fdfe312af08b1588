package models

// LimitConfig — singleton-запись с лимитами проектов.
// Всегда живёт под фиксированным id (LimitConfigID), создаётся атомарным
// upsert'ом при первом обращении.
type LimitConfig struct {
	ID                uint `gorm:"primaryKey" json:"id"`
	MaxWebProjects    int  `gorm:"not null" json:"max_web_projects"`
	MaxDesignProjects int  `gorm:"not null" json:"max_design_projects"`
	MaxTotalProjects  int  `gorm:"not null" json:"max_total_projects"`
}

const LimitConfigID uint = 1

const (
	DefaultMaxWebProjects    = 6
	DefaultMaxDesignProjects = 6
	DefaultMaxTotalProjects  = 12
)
