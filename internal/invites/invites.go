package invites

import (
	"context"
	"errors"
	"time"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Result struct {
	Status      string `json:"status"`
	PortfolioID uint   `json:"portfolio_id"`
	Warning     string `json:"warning,omitempty"`
}

// Invite выдаёт inviteeEmail роль на портфеле пригласившего.
// Приглашать может только владелец; OWNER через приглашение не выдаётся.
// Повторное приглашение перезаписывает роль (upsert), а письмо-уведомление
// не влияет на сам грант: его сбой — предупреждение, не откат.
func Invite(ctx context.Context, db *gorm.DB, notifier notify.Notifier, inviterEmail, inviteeEmail string, role models.Role, baseURL string) (*Result, error) {
	if role != models.RoleEditor && role != models.RoleViewer {
		return nil, apperrors.Validation("role must be EDITOR or VIEWER", []string{"role"})
	}

	inviteeEmail = auth.NormalizeEmail(inviteeEmail)
	if !auth.ValidEmail(inviteeEmail) {
		return nil, apperrors.Validation("invalid invitee email", []string{"email"})
	}

	var portfolio models.Portfolio
	if err := db.Where("owner_email = ?", inviterEmail).First(&portfolio).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Authorization("only a portfolio owner may invite collaborators")
		}
		return nil, apperrors.Internal(err)
	}

	if inviteeEmail == portfolio.OwnerEmail {
		return nil, apperrors.Conflict("owner already has full access")
	}

	invitee, err := ensureUser(db, inviteeEmail)
	if err != nil {
		return nil, err
	}

	grant := models.PortfolioRole{
		UserID:      invitee.ID,
		PortfolioID: portfolio.ID,
		Role:        role,
		InvitedAt:   time.Now(),
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "portfolio_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"role":       grant.Role,
			"invited_at": grant.InvitedAt,
			"updated_at": time.Now(),
		}),
	}).Create(&grant).Error
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	result := &Result{Status: "invited", PortfolioID: portfolio.ID}

	msg := notify.Message{
		ID:   uuid.NewString(),
		To:   inviteeEmail,
		Kind: notify.KindInvite,
		Data: map[string]string{
			"inviter":    inviterEmail,
			"portfolio":  portfolio.Name,
			"role":       string(role),
			"accept_url": baseURL + "/signup?invite=" + inviteeEmail,
		},
	}
	if err := notifier.Send(ctx, msg); err != nil {
		zap.S().Warnw("invite notification failed", "to", inviteeEmail, "error", err)
		result.Warning = "invitation saved but notification could not be sent"
	}

	return result, nil
}

// ensureUser находит пользователя или создаёт заглушку под будущую
// регистрацию. Вставка конфликто-безопасна по уникальному email.
func ensureUser(db *gorm.DB, email string) (*models.User, error) {
	stub := models.User{
		Email:    email,
		IsActive: true,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&stub).Error; err != nil {
		return nil, apperrors.Internal(err)
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, apperrors.Internal(err)
	}
	return &user, nil
}
