package database

import (
	"time"

	"portfolio-backend/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		zap.S().Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			zap.S().Info("connected to DB successfully")
			break
		}

		zap.S().Warnf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		zap.S().Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	if err := Migrate(DB); err != nil {
		zap.S().Fatalf("failed to migrate: %v", err)
	}
}

// Migrate прогоняет автомиграции; вынесено отдельно, чтобы тесты могли
// поднимать схему на своём соединении.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.PortfolioRole{},
		&models.Project{},
		&models.ArchiveProject{},
		&models.TechTag{},
		&models.TechOption{},
		&models.ProjectTag{},
		&models.ArchiveProjectTag{},
		&models.LimitConfig{},
		&models.AuditLog{},
	)
}

// SeedOwner создаёт стартовый аккаунт владельца из окружения.
// Портфель при этом не создаётся и тем более не "подбирается" из
// существующих — владелец заводит его сам через API.
func SeedOwner(email, password string) {
	if email == "" || password == "" {
		return
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		zap.S().Warnf("failed to check seed owner: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		zap.S().Warnf("failed to hash seed owner password: %v", err)
		return
	}

	owner := models.User{
		Email:         email,
		PasswordHash:  string(hash),
		IsActive:      true,
		EmailVerified: true,
	}

	if err := DB.Create(&owner).Error; err != nil {
		zap.S().Warnf("failed to create seed owner: %v", err)
		return
	}

	zap.S().Infof("created seed owner account: %s", email)
}
