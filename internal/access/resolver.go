package access

import (
	"errors"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/models"

	"gorm.io/gorm"
)

type ResourceKind string

const (
	KindPortfolio      ResourceKind = "portfolio"
	KindProject        ResourceKind = "project"
	KindArchiveProject ResourceKind = "archive project"
)

// Access — вычисленные права вызывающего на ресурс.
// OWNER ⊃ EDITOR ⊃ доступ на чтение; записи требуют IsEditor,
// чтения — HasAccess.
type Access struct {
	IsOwner   bool
	IsEditor  bool
	HasAccess bool
}

// Resolve определяет права callerEmail на ресурс. Несуществующий ресурс —
// всегда NotFound до каких-либо проверок прав; существующий без прав —
// Authorization на стороне Require*-хелперов. Владение считается по
// owner_email портфеля и не требует строки PortfolioRole.
func Resolve(db *gorm.DB, callerEmail string, kind ResourceKind, id uint) (Access, error) {
	portfolioID, err := resolvePortfolioID(db, kind, id)
	if err != nil {
		return Access{}, err
	}

	var portfolio models.Portfolio
	if err := db.First(&portfolio, portfolioID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, apperrors.NotFound(string(KindPortfolio))
		}
		return Access{}, apperrors.Internal(err)
	}

	acc := Access{IsOwner: portfolio.OwnerEmail == callerEmail}
	if acc.IsOwner {
		acc.IsEditor = true
		acc.HasAccess = true
		return acc, nil
	}

	role, ok, err := grantFor(db, callerEmail, portfolio.ID)
	if err != nil {
		return Access{}, err
	}
	if !ok {
		return acc, nil
	}

	switch role {
	case models.RoleOwner, models.RoleEditor:
		acc.IsEditor = true
		acc.HasAccess = true
	case models.RoleViewer:
		acc.HasAccess = true
	}
	return acc, nil
}

func resolvePortfolioID(db *gorm.DB, kind ResourceKind, id uint) (uint, error) {
	switch kind {
	case KindPortfolio:
		return id, nil
	case KindProject:
		var project models.Project
		if err := db.Select("id", "portfolio_id").First(&project, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, apperrors.NotFound(string(kind))
			}
			return 0, apperrors.Internal(err)
		}
		return project.PortfolioID, nil
	case KindArchiveProject:
		var archived models.ArchiveProject
		if err := db.Select("id", "portfolio_id").First(&archived, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, apperrors.NotFound(string(kind))
			}
			return 0, apperrors.Internal(err)
		}
		return archived.PortfolioID, nil
	default:
		return 0, apperrors.Internal(errors.New("unknown resource kind: " + string(kind)))
	}
}

func grantFor(db *gorm.DB, email string, portfolioID uint) (models.Role, bool, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, apperrors.Internal(err)
	}

	var grant models.PortfolioRole
	err := db.Where("user_id = ? AND portfolio_id = ?", user.ID, portfolioID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, apperrors.Internal(err)
	}
	return grant.Role, true, nil
}

// RequireAccess — для чтений: 404 если ресурса нет, 403 если есть, но прав нет.
func RequireAccess(db *gorm.DB, callerEmail string, kind ResourceKind, id uint) (Access, error) {
	acc, err := Resolve(db, callerEmail, kind, id)
	if err != nil {
		return Access{}, err
	}
	if !acc.HasAccess {
		return Access{}, apperrors.Authorization("access denied")
	}
	return acc, nil
}

// RequireEditor — для записей: VIEWER сюда не проходит.
func RequireEditor(db *gorm.DB, callerEmail string, kind ResourceKind, id uint) (Access, error) {
	acc, err := Resolve(db, callerEmail, kind, id)
	if err != nil {
		return Access{}, err
	}
	if !acc.IsEditor {
		return Access{}, apperrors.Authorization("editor access required")
	}
	return acc, nil
}

// RequireOwner — удаление портфеля и другие операции только для владельца.
func RequireOwner(db *gorm.DB, callerEmail string, kind ResourceKind, id uint) (Access, error) {
	acc, err := Resolve(db, callerEmail, kind, id)
	if err != nil {
		return Access{}, err
	}
	if !acc.IsOwner {
		return Access{}, apperrors.Authorization("owner access required")
	}
	return acc, nil
}

// EditorAnywhere — право на изменение глобальных словарей: владелец любого
// портфеля либо держатель EDITOR-гранта хотя бы на один.
func EditorAnywhere(db *gorm.DB, callerEmail string) (bool, error) {
	var count int64
	if err := db.Model(&models.Portfolio{}).
		Where("owner_email = ?", callerEmail).
		Count(&count).Error; err != nil {
		return false, apperrors.Internal(err)
	}
	if count > 0 {
		return true, nil
	}

	err := db.Model(&models.PortfolioRole{}).
		Joins("JOIN users ON users.id = portfolio_roles.user_id").
		Where("users.email = ? AND portfolio_roles.role = ?", callerEmail, models.RoleEditor).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return count > 0, nil
}
