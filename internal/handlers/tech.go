package handlers

import (
	"fmt"
	"net/http"

	"portfolio-backend/internal/access"
	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Словари тегов и технологий глобальные: читают все, пишут только
// редакторы (владелец либо EDITOR хотя бы одного портфеля).

func ListTechTags(c *gin.Context) {
	var tags []models.TechTag
	if err := database.DB.Order("tag asc").Find(&tags).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tech_tags": tags})
}

func ListTechOptions(c *gin.Context) {
	var options []models.TechOption
	dbq := database.DB.Order("name asc")
	if category := c.Query("category"); category != "" {
		dbq = dbq.Where("category = ?", category)
	}
	if err := dbq.Find(&options).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tech_options": options})
}

func requireVocabularyEditor(c *gin.Context) bool {
	ok, err := access.EditorAnywhere(database.DB, currentEmail(c))
	if err != nil {
		fail(c, err)
		return false
	}
	if !ok {
		fail(c, apperrors.Authorization("editor access required"))
		return false
	}
	return true
}

type techTagInput struct {
	Tag string `json:"tag"`
}

func CreateTechTag(c *gin.Context) {
	if !requireVocabularyEditor(c) {
		return
	}

	var input techTagInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Tag == "" {
		fail(c, apperrors.Validation("missing required fields", []string{"tag"}))
		return
	}

	tag, err := createTechTag(input.Tag)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(currentEmail(c), "tech_tag", tag.ID, "create", "created tag "+tag.Tag)
	c.JSON(http.StatusCreated, gin.H{"tech_tag": tag})
}

func createTechTag(name string) (*models.TechTag, error) {
	var count int64
	if err := database.DB.Model(&models.TechTag{}).Where("tag = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("tag already exists: " + name)
	}

	tag := models.TechTag{Tag: name}
	if err := database.DB.Create(&tag).Error; err != nil {
		return nil, apperrors.Conflict("tag already exists: " + name)
	}
	return &tag, nil
}

// DeleteTechTag отказывает, пока на тег ссылается хотя бы один проект;
// в деталях — количество ссылок.
func DeleteTechTag(c *gin.Context) {
	if !requireVocabularyEditor(c) {
		return
	}

	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	var tag models.TechTag
	if err := database.DB.First(&tag, id).Error; err != nil {
		fail(c, apperrors.NotFound("tech tag"))
		return
	}

	var refs int64
	if err := database.DB.Model(&models.ProjectTag{}).Where("tech_tag_id = ?", id).Count(&refs).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	var archiveRefs int64
	if err := database.DB.Model(&models.ArchiveProjectTag{}).Where("tech_tag_id = ?", id).Count(&archiveRefs).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	refs += archiveRefs

	if refs > 0 {
		fail(c, apperrors.ConflictWithDetails(
			fmt.Sprintf("tag is referenced by %d projects", refs),
			gin.H{"referencing_projects": refs},
		))
		return
	}

	if err := database.DB.Delete(&tag).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(currentEmail(c), "tech_tag", id, "delete", "deleted tag "+tag.Tag)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type bulkTagsInput struct {
	Tags []string `json:"tags"`
}

// BulkCreateTechTags — частичный успех это не транзакция: годные теги
// создаются, дубли и пустые попадают в errors, статус 207.
func BulkCreateTechTags(c *gin.Context) {
	if !requireVocabularyEditor(c) {
		return
	}

	var input bulkTagsInput
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Tags) == 0 {
		fail(c, apperrors.Validation("missing required fields", []string{"tags"}))
		return
	}

	var results []models.TechTag
	var errs []gin.H
	for _, name := range input.Tags {
		if name == "" {
			errs = append(errs, gin.H{"tag": name, "error": "tag must not be empty"})
			continue
		}
		tag, err := createTechTag(name)
		if err != nil {
			errs = append(errs, gin.H{"tag": name, "error": apperrors.From(err).Message})
			continue
		}
		results = append(results, *tag)
	}

	status := http.StatusCreated
	if len(errs) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"created": len(results),
		"failed":  len(errs),
		"results": results,
		"errors":  errs,
	})
}

type techOptionInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func CreateTechOption(c *gin.Context) {
	if !requireVocabularyEditor(c) {
		return
	}

	var input techOptionInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Name == "" {
		fail(c, apperrors.Validation("missing required fields", []string{"name"}))
		return
	}

	option, err := createTechOption(input.Name, input.Category)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(currentEmail(c), "tech_option", option.ID, "create", "created option "+option.Name)
	c.JSON(http.StatusCreated, gin.H{"tech_option": option})
}

func createTechOption(name, category string) (*models.TechOption, error) {
	var count int64
	if err := database.DB.Model(&models.TechOption{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("option already exists: " + name)
	}

	option := models.TechOption{Name: name, Category: category}
	if err := database.DB.Create(&option).Error; err != nil {
		return nil, apperrors.Conflict("option already exists: " + name)
	}
	return &option, nil
}

// Проекты хранят технологии как список строк, поэтому ссылки на option
// считаем по содержимому tools/build в коде приложения.
func DeleteTechOption(c *gin.Context) {
	if !requireVocabularyEditor(c) {
		return
	}

	id, err := idParam(c)
	if err != nil {
		fail(c, err)
		return
	}

	var option models.TechOption
	if err := database.DB.First(&option, id).Error; err != nil {
		fail(c, apperrors.NotFound("tech option"))
		return
	}

	refs, err := countOptionReferences(option.Name)
	if err != nil {
		fail(c, err)
		return
	}
	if refs > 0 {
		fail(c, apperrors.ConflictWithDetails(
			fmt.Sprintf("option is referenced by %d projects", refs),
			gin.H{"referencing_projects": refs},
		))
		return
	}

	if err := database.DB.Delete(&option).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(currentEmail(c), "tech_option", id, "delete", "deleted option "+option.Name)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func countOptionReferences(name string) (int, error) {
	var projects []models.Project
	if err := database.DB.Select("id", "tools").Find(&projects).Error; err != nil {
		return 0, apperrors.Internal(err)
	}
	var archived []models.ArchiveProject
	if err := database.DB.Select("id", "build").Find(&archived).Error; err != nil {
		return 0, apperrors.Internal(err)
	}

	refs := 0
	for _, p := range projects {
		if p.Tools.Contains(name) {
			refs++
		}
	}
	for _, a := range archived {
		if a.Build.Contains(name) {
			refs++
		}
	}
	return refs, nil
}

type bulkOptionsInput struct {
	Options []techOptionInput `json:"options"`
}

func BulkCreateTechOptions(c *gin.Context) {
	if !requireVocabularyEditor(c) {
		return
	}

	var input bulkOptionsInput
	if err := c.ShouldBindJSON(&input); err != nil || len(input.Options) == 0 {
		fail(c, apperrors.Validation("missing required fields", []string{"options"}))
		return
	}

	var results []models.TechOption
	var errs []gin.H
	for _, item := range input.Options {
		if item.Name == "" {
			errs = append(errs, gin.H{"name": item.Name, "error": "name must not be empty"})
			continue
		}
		option, err := createTechOption(item.Name, item.Category)
		if err != nil {
			errs = append(errs, gin.H{"name": item.Name, "error": apperrors.From(err).Message})
			continue
		}
		results = append(results, *option)
	}

	status := http.StatusCreated
	if len(errs) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"created": len(results),
		"failed":  len(errs),
		"results": results,
		"errors":  errs,
	})
}
