package handlers

import (
	"time"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	CookieSecure  bool
	PublicBaseURL string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

var (
	tokenService *auth.TokenService
	notifier     notify.Notifier
	opts         Options
)

// Init связывает хендлеры с сервисом токенов и нотификатором.
// Вызывается из main и из тестов.
func Init(tokens *auth.TokenService, n notify.Notifier, o Options) {
	tokenService = tokens
	notifier = n
	opts = o
}

// fail — единая точка выхода ошибок: структурированный JSON + статус.
// Неожиданные ошибки логируются целиком, наружу уходит generic internal.
func fail(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	if appErr.Code == apperrors.CodeInternal {
		zap.S().Errorw("internal error", "path", c.FullPath(), "error", appErr.Error())
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.Status, body)
}

func currentEmail(c *gin.Context) string {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return ""
	}
	return ident.Email
}
