package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	Name          string `gorm:"size:255" json:"name"`
	IsActive      bool   `gorm:"not null;default:true" json:"is_active"`
	EmailVerified bool   `gorm:"not null;default:false" json:"email_verified"`

	PortfolioRoles []PortfolioRole `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
