package server

import (
	"net/http"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func NewRouter(cfg *config.Config, providers ...auth.IdentityProvider) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("portfolio_session", store))

	r.Use(middleware.InjectIdentity(providers...))

	// AUTH
	r.POST("/auth/register", handlers.Register)
	r.POST("/auth/login", handlers.Login)
	r.POST("/auth/refresh", handlers.Refresh)
	r.POST("/auth/logout", handlers.Logout)
	r.POST("/auth/password-reset/request", handlers.PasswordResetRequest)
	r.POST("/auth/password-reset/confirm", handlers.PasswordResetConfirm)

	// Словари читаются без авторизации — их отдаёт публичный сайт.
	pub := r.Group("/api")
	pub.GET("/tech-tags", handlers.ListTechTags)
	pub.GET("/tech-options", handlers.ListTechOptions)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())

	api.GET("/me", handlers.Me)

	// ПОРТФЕЛИ
	api.GET("/portfolios", handlers.ListPortfolios)
	api.POST("/portfolios", handlers.CreatePortfolio)
	api.GET("/portfolios/:id", handlers.GetPortfolio)
	api.PUT("/portfolios/:id", handlers.UpdatePortfolio)
	api.DELETE("/portfolios/:id", handlers.DeletePortfolio)

	// ПРОЕКТЫ
	api.GET("/projects", handlers.ListProjects)
	api.POST("/projects", handlers.CreateProject)
	api.GET("/projects/:id", handlers.GetProject)
	api.PUT("/projects/:id", handlers.UpdateProject)
	api.DELETE("/projects/:id", handlers.DeleteProject)

	// АРХИВ
	api.GET("/archive-projects", handlers.ListArchiveProjects)
	api.POST("/archive-projects", handlers.CreateArchiveProject)
	api.GET("/archive-projects/:id", handlers.GetArchiveProject)
	api.PUT("/archive-projects/:id", handlers.UpdateArchiveProject)
	api.DELETE("/archive-projects/:id", handlers.DeleteArchiveProject)

	// СЛОВАРИ (запись)
	api.POST("/tech-tags", handlers.CreateTechTag)
	api.POST("/tech-tags/bulk", handlers.BulkCreateTechTags)
	api.DELETE("/tech-tags/:id", handlers.DeleteTechTag)
	api.POST("/tech-options", handlers.CreateTechOption)
	api.POST("/tech-options/bulk", handlers.BulkCreateTechOptions)
	api.DELETE("/tech-options/:id", handlers.DeleteTechOption)

	// ПРИГЛАШЕНИЯ
	api.POST("/invite", handlers.Invite)

	// ЛИМИТЫ
	api.GET("/config", handlers.GetLimitConfig)
	api.PUT("/config", handlers.UpdateLimitConfig)

	// АУДИТ
	api.GET("/audit", handlers.ListAuditLogs)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
