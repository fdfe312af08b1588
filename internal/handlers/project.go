package handlers

import (
	"net/http"
	"strconv"

	"portfolio-backend/internal/access"
	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/limits"
	"portfolio-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListProjects отдаёт проекты одного портфеля (?portfolio_id=N).
func ListProjects(c *gin.Context) {
	portfolioID, err := portfolioIDQuery(c)
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := access.RequireAccess(database.DB, currentEmail(c), access.KindPortfolio, portfolioID); err != nil {
		fail(c, err)
		return
	}

	var projects []models.Project
	dbq := database.DB.Preload("Tags.TechTag").
		Where("portfolio_id = ?", portfolioID).
		Order("created_at desc")
	if platform := c.Query("platform"); platform != "" {
		dbq = dbq.Where("platform = ?", platform)
	}
	if err := dbq.Find(&projects).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func GetProject(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := access.RequireAccess(database.DB, currentEmail(c), access.KindProject, id); err != nil {
		fail(c, err)
		return
	}

	var project models.Project
	if err := database.DB.Preload("Tags.TechTag").First(&project, id).Error; err != nil {
		fail(c, apperrors.NotFound("project"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

type projectInput struct {
	PortfolioID *uint              `json:"portfolio_id"`
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Platform    *models.Platform   `json:"platform"`
	Tools       *models.StringList `json:"tools"`
	ImageURL    *string            `json:"image_url"`
	LiveURL     *string            `json:"live_url"`
	RepoURL     *string            `json:"repo_url"`
	Featured    *bool              `json:"featured"`
	TagIDs      *[]uint            `json:"tag_ids"`
}

// CreateProject: редакторский доступ к портфелю, затем лимиты, затем запись.
func CreateProject(c *gin.Context) {
	var input projectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	// Обо всех пропущенных полях сообщаем разом, не по одному.
	var missing []string
	if input.PortfolioID == nil || *input.PortfolioID == 0 {
		missing = append(missing, "portfolio_id")
	}
	if input.Title == nil || *input.Title == "" {
		missing = append(missing, "title")
	}
	if input.Platform == nil || *input.Platform == "" {
		missing = append(missing, "platform")
	}
	if len(missing) > 0 {
		fail(c, apperrors.Validation("missing required fields", missing))
		return
	}
	if !models.ValidPlatform(*input.Platform) {
		fail(c, apperrors.Validation("platform must be web or design", []string{"platform"}))
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireEditor(database.DB, email, access.KindPortfolio, *input.PortfolioID); err != nil {
		fail(c, err)
		return
	}

	if err := limits.CheckProjectLimit(database.DB, *input.PortfolioID, *input.Platform); err != nil {
		fail(c, err)
		return
	}

	project := models.Project{
		PortfolioID: *input.PortfolioID,
		Title:       *input.Title,
		Platform:    *input.Platform,
	}
	applyProjectPatch(&project, input)

	if err := database.DB.Create(&project).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	if input.TagIDs != nil {
		if err := replaceProjectTags(project.ID, *input.TagIDs); err != nil {
			fail(c, err)
			return
		}
	}

	database.CreateAuditLog(email, "project", project.ID, "create", "created project "+project.Title)
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func UpdateProject(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireEditor(database.DB, email, access.KindProject, id); err != nil {
		fail(c, err)
		return
	}

	var input projectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		fail(c, apperrors.NotFound("project"))
		return
	}

	if input.Title != nil {
		project.Title = *input.Title
	}
	if input.Platform != nil {
		if !models.ValidPlatform(*input.Platform) {
			fail(c, apperrors.Validation("platform must be web or design", []string{"platform"}))
			return
		}
		project.Platform = *input.Platform
	}
	applyProjectPatch(&project, input)

	if err := database.DB.Save(&project).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	if input.TagIDs != nil {
		if err := replaceProjectTags(project.ID, *input.TagIDs); err != nil {
			fail(c, err)
			return
		}
	}

	database.CreateAuditLog(email, "project", project.ID, "update", "updated project "+project.Title)
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func DeleteProject(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireEditor(database.DB, email, access.KindProject, id); err != nil {
		fail(c, err)
		return
	}

	if err := database.DB.Where("project_id = ?", id).Delete(&models.ProjectTag{}).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	if err := database.DB.Delete(&models.Project{}, id).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(email, "project", id, "delete", "deleted project")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func applyProjectPatch(p *models.Project, input projectInput) {
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Tools != nil {
		p.Tools = *input.Tools
	}
	if input.ImageURL != nil {
		p.ImageURL = *input.ImageURL
	}
	if input.LiveURL != nil {
		p.LiveURL = *input.LiveURL
	}
	if input.RepoURL != nil {
		p.RepoURL = *input.RepoURL
	}
	if input.Featured != nil {
		p.Featured = *input.Featured
	}
}

func replaceProjectTags(projectID uint, tagIDs []uint) error {
	if err := database.DB.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
		return apperrors.Internal(err)
	}
	for _, tagID := range tagIDs {
		var tag models.TechTag
		if err := database.DB.First(&tag, tagID).Error; err != nil {
			return apperrors.NotFound("tech tag")
		}
		link := models.ProjectTag{ProjectID: projectID, TechTagID: tagID}
		if err := database.DB.Create(&link).Error; err != nil {
			return apperrors.Internal(err)
		}
	}
	return nil
}

func portfolioIDQuery(c *gin.Context) (uint, error) {
	raw := c.Query("portfolio_id")
	if raw == "" {
		return 0, apperrors.Validation("portfolio_id query parameter is required", []string{"portfolio_id"})
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid portfolio_id", []string{"portfolio_id"})
	}
	return uint(id), nil
}
