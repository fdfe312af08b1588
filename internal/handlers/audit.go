package handlers

import (
	"net/http"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	if !requirePortfolioOwner(c) {
		return
	}

	var logs []models.AuditLog
	err := database.DB.
		Order("created_at desc").
		Limit(200).
		Find(&logs).Error
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
