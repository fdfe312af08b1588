package limits

import (
	"fmt"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureConfig возвращает singleton-конфиг лимитов, создавая его с
// дефолтами при первом обращении. Вставка идёт через ON CONFLICT DO NOTHING
// по фиксированному id, поэтому конкурентные первые вызовы не плодят строк.
func EnsureConfig(db *gorm.DB) (*models.LimitConfig, error) {
	seed := models.LimitConfig{
		ID:                models.LimitConfigID,
		MaxWebProjects:    models.DefaultMaxWebProjects,
		MaxDesignProjects: models.DefaultMaxDesignProjects,
		MaxTotalProjects:  models.DefaultMaxTotalProjects,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var cfg models.LimitConfig
	if err := db.First(&cfg, models.LimitConfigID).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &cfg, nil
}

// CheckProjectLimit отклоняет создание проекта сверх лимитов.
// Сначала проверяется общий лимит, затем лимит платформы.
func CheckProjectLimit(db *gorm.DB, portfolioID uint, platform models.Platform) error {
	cfg, err := EnsureConfig(db)
	if err != nil {
		return err
	}

	var total int64
	if err := db.Model(&models.Project{}).
		Where("portfolio_id = ?", portfolioID).
		Count(&total).Error; err != nil {
		return apperrors.Internal(err)
	}
	if total >= int64(cfg.MaxTotalProjects) {
		return apperrors.Conflict(fmt.Sprintf("project limit reached: max %d projects per portfolio", cfg.MaxTotalProjects))
	}

	var platformCount int64
	if err := db.Model(&models.Project{}).
		Where("portfolio_id = ? AND platform = ?", portfolioID, platform).
		Count(&platformCount).Error; err != nil {
		return apperrors.Internal(err)
	}

	max := cfg.MaxWebProjects
	if platform == models.PlatformDesign {
		max = cfg.MaxDesignProjects
	}
	if platformCount >= int64(max) {
		return apperrors.Conflict(fmt.Sprintf("project limit reached: max %d %s projects per portfolio", max, platform))
	}
	return nil
}

type ConfigPatch struct {
	MaxWebProjects    *int `json:"max_web_projects"`
	MaxDesignProjects *int `json:"max_design_projects"`
	MaxTotalProjects  *int `json:"max_total_projects"`
}

// UpdateConfig частично обновляет лимиты; нулевые и отрицательные значения
// не принимаются.
func UpdateConfig(db *gorm.DB, patch ConfigPatch) (*models.LimitConfig, error) {
	cfg, err := EnsureConfig(db)
	if err != nil {
		return nil, err
	}

	apply := func(target *int, v *int, field string) error {
		if v == nil {
			return nil
		}
		if *v <= 0 {
			return apperrors.Validation("limits must be positive", []string{field})
		}
		*target = *v
		return nil
	}
	if err := apply(&cfg.MaxWebProjects, patch.MaxWebProjects, "max_web_projects"); err != nil {
		return nil, err
	}
	if err := apply(&cfg.MaxDesignProjects, patch.MaxDesignProjects, "max_design_projects"); err != nil {
		return nil, err
	}
	if err := apply(&cfg.MaxTotalProjects, patch.MaxTotalProjects, "max_total_projects"); err != nil {
		return nil, err
	}

	if err := db.Save(cfg).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return cfg, nil
}
