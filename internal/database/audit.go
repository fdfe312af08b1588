package database

import "portfolio-backend/internal/models"

// helper для записи в журнал аудита
func CreateAuditLog(userEmail, entity string, entityID uint, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		UserEmail: userEmail,
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Details:   details,
	}
	_ = DB.Create(&record).Error
}
