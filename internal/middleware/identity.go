package middleware

import (
	"net/http"

	"portfolio-backend/internal/auth"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const ContextIdentityKey = "identity"

const (
	SessionUserIDKey = "user_id"
	SessionEmailKey  = "user_email"
)

// InjectIdentity устанавливает личность вызывающего из первого сработавшего
// источника: серверная сессия, access-cookie, bearer-токен (свой JWT, затем
// сторонние провайдеры). Дальше по пайплайну ходит только проверенный email.
func InjectIdentity(providers ...auth.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident := identityFromSession(c); ident != nil {
			c.Set(ContextIdentityKey, *ident)
			c.Next()
			return
		}

		if token, err := c.Cookie("access_token"); err == nil && token != "" {
			if ident := verifyAny(c, token, providers); ident != nil {
				c.Set(ContextIdentityKey, *ident)
				c.Next()
				return
			}
		}

		if token := bearerToken(c); token != "" {
			if ident := verifyAny(c, token, providers); ident != nil {
				c.Set(ContextIdentityKey, *ident)
			}
		}

		c.Next()
	}
}

func identityFromSession(c *gin.Context) *auth.Identity {
	sess := sessions.Default(c)
	email, ok := sess.Get(SessionEmailKey).(string)
	if !ok || email == "" {
		return nil
	}
	ident := auth.Identity{Email: auth.NormalizeEmail(email)}
	if uid, ok := sess.Get(SessionUserIDKey).(uint); ok {
		ident.UserID = uid
	}
	return &ident
}

func verifyAny(c *gin.Context, token string, providers []auth.IdentityProvider) *auth.Identity {
	for _, p := range providers {
		if ident, err := p.Verify(c.Request.Context(), token); err == nil {
			return ident
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "AUTHENTICATION_ERROR",
			})
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	val, ok := c.Get(ContextIdentityKey)
	if !ok {
		return auth.Identity{}, false
	}
	ident, ok := val.(auth.Identity)
	return ident, ok
}
