package handlers

import (
	"errors"
	"net/http"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/limits"
	"portfolio-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Лимиты проектов читает и правит только владелец портфеля.

func requirePortfolioOwner(c *gin.Context) bool {
	var portfolio models.Portfolio
	err := database.DB.Where("owner_email = ?", currentEmail(c)).First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, apperrors.Authorization("owner access required"))
		} else {
			fail(c, apperrors.Internal(err))
		}
		return false
	}
	return true
}

func GetLimitConfig(c *gin.Context) {
	if !requirePortfolioOwner(c) {
		return
	}

	cfg, err := limits.EnsureConfig(database.DB)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

func UpdateLimitConfig(c *gin.Context) {
	if !requirePortfolioOwner(c) {
		return
	}

	var patch limits.ConfigPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	cfg, err := limits.UpdateConfig(database.DB, patch)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(currentEmail(c), "config", cfg.ID, "update", "updated project limits")
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}
