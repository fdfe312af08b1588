package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// PortfolioRole — грант доступа пользователя к портфелю.
// Одна запись на пару (user, portfolio); повторное приглашение
// перезаписывает роль, а не добавляет вторую строку.
type PortfolioRole struct {
	gorm.Model
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_portfolio" json:"user_id"`
	PortfolioID uint      `gorm:"not null;uniqueIndex:idx_user_portfolio" json:"portfolio_id"`
	Role        Role      `gorm:"type:varchar(20);not null" json:"role"`
	InvitedAt   time.Time `json:"invited_at"`

	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Portfolio Portfolio `gorm:"foreignKey:PortfolioID" json:"-"`
}
