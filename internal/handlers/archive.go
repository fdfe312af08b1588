package handlers

import (
	"net/http"

	"portfolio-backend/internal/access"
	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/models"

	"github.com/gin-gonic/gin"
)

func ListArchiveProjects(c *gin.Context) {
	portfolioID, err := portfolioIDQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := access.RequireAccess(database.DB, currentEmail(c), access.KindPortfolio, portfolioID); err != nil {
		fail(c, err)
		return
	}

	var archived []models.ArchiveProject
	err = database.DB.Preload("Tags.TechTag").
		Where("portfolio_id = ?", portfolioID).
		Order("year desc, created_at desc").
		Find(&archived).Error
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"archive_projects": archived})
}

func GetArchiveProject(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := access.RequireAccess(database.DB, currentEmail(c), access.KindArchiveProject, id); err != nil {
		fail(c, err)
		return
	}

	var archived models.ArchiveProject
	if err := database.DB.Preload("Tags.TechTag").First(&archived, id).Error; err != nil {
		fail(c, apperrors.NotFound("archive project"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"archive_project": archived})
}

type archiveProjectInput struct {
	PortfolioID *uint              `json:"portfolio_id"`
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Year        *string            `json:"year"`
	MadeAt      *string            `json:"made_at"`
	Build       *models.StringList `json:"build"`
	LiveURL     *string            `json:"live_url"`
	RepoURL     *string            `json:"repo_url"`
}

func CreateArchiveProject(c *gin.Context) {
	var input archiveProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	var missing []string
	if input.PortfolioID == nil || *input.PortfolioID == 0 {
		missing = append(missing, "portfolio_id")
	}
	if input.Title == nil || *input.Title == "" {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		fail(c, apperrors.Validation("missing required fields", missing))
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireEditor(database.DB, email, access.KindPortfolio, *input.PortfolioID); err != nil {
		fail(c, err)
		return
	}

	archived := models.ArchiveProject{
		PortfolioID: *input.PortfolioID,
		Title:       *input.Title,
	}
	applyArchivePatch(&archived, input)

	if err := database.DB.Create(&archived).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(email, "archive_project", archived.ID, "create", "created archive entry "+archived.Title)
	c.JSON(http.StatusCreated, gin.H{"archive_project": archived})
}

func UpdateArchiveProject(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireEditor(database.DB, email, access.KindArchiveProject, id); err != nil {
		fail(c, err)
		return
	}

	var input archiveProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	var archived models.ArchiveProject
	if err := database.DB.First(&archived, id).Error; err != nil {
		fail(c, apperrors.NotFound("archive project"))
		return
	}

	if input.Title != nil {
		archived.Title = *input.Title
	}
	applyArchivePatch(&archived, input)

	if err := database.DB.Save(&archived).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(email, "archive_project", archived.ID, "update", "updated archive entry "+archived.Title)
	c.JSON(http.StatusOK, gin.H{"archive_project": archived})
}

func DeleteArchiveProject(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireEditor(database.DB, email, access.KindArchiveProject, id); err != nil {
		fail(c, err)
		return
	}

	if err := database.DB.Where("archive_project_id = ?", id).Delete(&models.ArchiveProjectTag{}).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	if err := database.DB.Delete(&models.ArchiveProject{}, id).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(email, "archive_project", id, "delete", "deleted archive entry")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func applyArchivePatch(a *models.ArchiveProject, input archiveProjectInput) {
	if input.Description != nil {
		a.Description = *input.Description
	}
	if input.Year != nil {
		a.Year = *input.Year
	}
	if input.MadeAt != nil {
		a.MadeAt = *input.MadeAt
	}
	if input.Build != nil {
		a.Build = *input.Build
	}
	if input.LiveURL != nil {
		a.LiveURL = *input.LiveURL
	}
	if input.RepoURL != nil {
		a.RepoURL = *input.RepoURL
	}
}
