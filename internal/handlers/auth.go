package handlers

import (
	"errors"
	"net/http"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/notify"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Одно сообщение на все варианты провала логина, чтобы не подсказывать,
// какие адреса зарегистрированы.
const loginFailedMessage = "invalid email or password"

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	req.Email = auth.NormalizeEmail(req.Email)

	var problems []string
	if req.Email == "" {
		problems = append(problems, "email is required")
	} else if !auth.ValidEmail(req.Email) {
		problems = append(problems, "email is malformed")
	}
	if req.Password == "" {
		problems = append(problems, "password is required")
	} else if !auth.ValidPassword(req.Password) {
		problems = append(problems, "password must be at least 8 characters")
	}
	if len(problems) > 0 {
		fail(c, apperrors.Validation("invalid registration data", problems))
		return
	}

	var existing models.User
	err := database.DB.Where("email = ?", req.Email).First(&existing).Error
	switch {
	case err == nil && existing.PasswordHash != "":
		fail(c, apperrors.Conflict("email already registered"))
		return
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		fail(c, apperrors.Internal(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	var user models.User
	if existing.ID != 0 {
		// Заглушка из приглашения: регистрация "занимает" аккаунт.
		existing.PasswordHash = hash
		existing.Name = req.Name
		existing.IsActive = true
		if err := database.DB.Save(&existing).Error; err != nil {
			fail(c, apperrors.Internal(err))
			return
		}
		user = existing
	} else {
		user = models.User{
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
			IsActive:     true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			// Гонка на уникальном email: второй insert проигрывает.
			fail(c, apperrors.Conflict("email already registered"))
			return
		}
	}

	access, refresh, err := tokenService.IssuePair(&user)
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	establishSession(c, &user)
	setAuthCookies(c, access, refresh)
	c.JSON(http.StatusCreated, gin.H{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	req.Email = auth.NormalizeEmail(req.Email)

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		fail(c, apperrors.Authentication(loginFailedMessage))
		return
	}
	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, req.Password) {
		fail(c, apperrors.Authentication(loginFailedMessage))
		return
	}
	if !user.IsActive {
		fail(c, apperrors.Authentication(loginFailedMessage))
		return
	}

	access, refresh, err := tokenService.IssuePair(&user)
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	establishSession(c, &user)
	setAuthCookies(c, access, refresh)
	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh ротирует пару токенов: каждый успешный вызов выпускает новый
// refresh, старый считается использованным.
func Refresh(c *gin.Context) {
	raw, _ := c.Cookie("refresh_token")
	if raw == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		fail(c, apperrors.Authentication("refresh token is required"))
		return
	}

	claims, err := tokenService.Verify(raw, auth.TokenRefresh)
	if err != nil {
		fail(c, err)
		return
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		fail(c, apperrors.Authentication("invalid or expired token"))
		return
	}
	if !user.IsActive {
		fail(c, apperrors.Authentication("invalid or expired token"))
		return
	}

	access, refresh, err := tokenService.IssuePair(&user)
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	establishSession(c, &user)
	setAuthCookies(c, access, refresh)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Logout идемпотентен: чистим сессию и куки, всегда 200.
func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()

	clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func Me(c *gin.Context) {
	ident, _ := middleware.CurrentIdentity(c)

	var user models.User
	if err := database.DB.Where("email = ?", ident.Email).First(&user).Error; err != nil {
		// Личность установлена сторонним провайдером, локальной записи нет.
		c.JSON(http.StatusOK, gin.H{"email": ident.Email})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetRequest всегда отвечает 200 — существование адреса не
// раскрывается.
func PasswordResetRequest(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err == nil && user.IsActive {
		token, err := tokenService.Issue(&user, auth.TokenReset, auth.ResetTokenTTL)
		if err == nil {
			msg := notify.Message{
				ID:   uuid.NewString(),
				To:   user.Email,
				Kind: notify.KindPasswordReset,
				Data: map[string]string{
					"reset_url": opts.PublicBaseURL + "/reset-password?token=" + token,
				},
			}
			if err := notifier.Send(c.Request.Context(), msg); err != nil {
				zap.S().Warnw("password reset notification failed", "to", user.Email, "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset requested"})
}

type passwordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func PasswordResetConfirm(c *gin.Context) {
	var req passwordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}
	if !auth.ValidPassword(req.Password) {
		fail(c, apperrors.Validation("password must be at least 8 characters", []string{"password"}))
		return
	}

	claims, err := tokenService.Verify(req.Token, auth.TokenReset)
	if err != nil {
		fail(c, err)
		return
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		fail(c, apperrors.Authentication("invalid or expired token"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(c, apperrors.Internal(err))
		return
	}
	user.PasswordHash = hash
	if err := database.DB.Save(&user).Error; err != nil {
		fail(c, apperrors.Internal(err))
		return
	}

	database.CreateAuditLog(user.Email, "user", user.ID, "password_reset", "password reset confirmed")
	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

func establishSession(c *gin.Context, user *models.User) {
	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserIDKey, user.ID)
	sess.Set(middleware.SessionEmailKey, user.Email)
	_ = sess.Save()
}

func setAuthCookies(c *gin.Context, access, refresh string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", access, int(opts.AccessTTL.Seconds()), "/", "", opts.CookieSecure, true)
	c.SetCookie("refresh_token", refresh, int(opts.RefreshTTL.Seconds()), "/", "", opts.CookieSecure, true)
}

func clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", "", -1, "/", "", opts.CookieSecure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", opts.CookieSecure, true)
}
