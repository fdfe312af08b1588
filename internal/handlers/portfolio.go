package handlers

import (
	"net/http"
	"strconv"

	"portfolio-backend/internal/access"
	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListPortfolios отдаёт портфели, доступные вызывающему: свой плюс те,
// куда его пригласили.
func ListPortfolios(c *gin.Context) {
	email := currentEmail(c)

	var portfolios []models.Portfolio
	err := database.DB.
		Distinct("portfolios.*").
		Joins("LEFT JOIN portfolio_roles ON portfolio_roles.portfolio_id = portfolios.id AND portfolio_roles.deleted_at IS NULL").
		Joins("LEFT JOIN users ON users.id = portfolio_roles.user_id").
		Where("portfolios.owner_email = ? OR users.email = ?", email, email).
		Find(&portfolios).Error
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
}

func GetPortfolio(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	if _, err := access.RequireAccess(database.DB, currentEmail(c), access.KindPortfolio, id); err != nil {
		fail(c, err)
		return
	}

	var portfolio models.Portfolio
	if err := database.DB.First(&portfolio, id).Error; err != nil {
		fail(c, apperrors.NotFound("portfolio"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
}

type portfolioInput struct {
	Name              *string            `json:"name"`
	JobTitle          *string            `json:"job_title"`
	AboutDescription1 *string            `json:"about_description_1"`
	AboutDescription2 *string            `json:"about_description_2"`
	Skills            *models.StringList `json:"skills"`
	ContactEmail      *string            `json:"contact_email"`
	GithubURL         *string            `json:"github_url"`
	LinkedinURL       *string            `json:"linkedin_url"`
	TwitterURL        *string            `json:"twitter_url"`
	ResumeURL         *string            `json:"resume_url"`
	ContactLocation   *string            `json:"contact_location"`
}

// CreatePortfolio заводит портфель под владением вызывающего.
// Один портфель на владельца: повторное создание — конфликт.
func CreatePortfolio(c *gin.Context) {
	email := currentEmail(c)

	var input portfolioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	if input.Name == nil || *input.Name == "" {
		fail(c, apperrors.Validation("missing required fields", []string{"name"}))
		return
	}

	portfolio := models.Portfolio{
		Name:       *input.Name,
		OwnerEmail: email,
	}
	applyPortfolioPatch(&portfolio, input)

	var count int64
	if err := database.DB.Model(&models.Portfolio{}).
		Where("owner_email = ?", email).
		Count(&count).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	if count > 0 {
		fail(c, apperrors.Conflict("portfolio already exists for this owner"))
		return
	}

	if err := database.DB.Create(&portfolio).Error; err != nil {
		// Уникальный индекс по owner_email закрывает гонку двух create.
		fail(c, apperrors.Conflict("portfolio already exists for this owner"))
		return
	}

	database.CreateAuditLog(email, "portfolio", portfolio.ID, "create", "created portfolio "+portfolio.Name)
	c.JSON(http.StatusCreated, gin.H{"portfolio": portfolio})
}

func UpdatePortfolio(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireEditor(database.DB, email, access.KindPortfolio, id); err != nil {
		fail(c, err)
		return
	}

	var input portfolioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	var portfolio models.Portfolio
	if err := database.DB.First(&portfolio, id).Error; err != nil {
		fail(c, apperrors.NotFound("portfolio"))
		return
	}

	if input.Name != nil {
		portfolio.Name = *input.Name
	}
	applyPortfolioPatch(&portfolio, input)

	if err := database.DB.Save(&portfolio).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(email, "portfolio", portfolio.ID, "update", "updated portfolio "+portfolio.Name)
	c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
}

// DeletePortfolio — только владелец. Сначала зависимые строки (связи тегов,
// проекты, архив, гранты), потом сам портфель.
func DeletePortfolio(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	email := currentEmail(c)
	if _, err := access.RequireOwner(database.DB, email, access.KindPortfolio, id); err != nil {
		fail(c, err)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint
		if err := tx.Model(&models.Project{}).
			Where("portfolio_id = ?", id).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}
		if len(projectIDs) > 0 {
			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.ProjectTag{}).Error; err != nil {
				return err
			}
		}

		var archiveIDs []uint
		if err := tx.Model(&models.ArchiveProject{}).
			Where("portfolio_id = ?", id).
			Pluck("id", &archiveIDs).Error; err != nil {
			return err
		}
		if len(archiveIDs) > 0 {
			if err := tx.Where("archive_project_id IN ?", archiveIDs).Delete(&models.ArchiveProjectTag{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("portfolio_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&models.ArchiveProject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("portfolio_id = ?", id).Delete(&models.PortfolioRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Portfolio{}, id).Error
	})
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(email, "portfolio", id, "delete", "deleted portfolio")
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func applyPortfolioPatch(p *models.Portfolio, input portfolioInput) {
	if input.JobTitle != nil {
		p.JobTitle = *input.JobTitle
	}
	if input.AboutDescription1 != nil {
		p.AboutDescription1 = *input.AboutDescription1
	}
	if input.AboutDescription2 != nil {
		p.AboutDescription2 = *input.AboutDescription2
	}
	if input.Skills != nil {
		p.Skills = *input.Skills
	}
	if input.ContactEmail != nil {
		p.ContactEmail = *input.ContactEmail
	}
	if input.GithubURL != nil {
		p.GithubURL = *input.GithubURL
	}
	if input.LinkedinURL != nil {
		p.LinkedinURL = *input.LinkedinURL
	}
	if input.TwitterURL != nil {
		p.TwitterURL = *input.TwitterURL
	}
	if input.ResumeURL != nil {
		p.ResumeURL = *input.ResumeURL
	}
	if input.ContactLocation != nil {
		p.ContactLocation = *input.ContactLocation
	}
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid id", nil)
	}
	return uint(id), nil
}
