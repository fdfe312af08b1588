package handlers

import (
	"net/http"

	"portfolio-backend/internal/apperrors"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/invites"
	"portfolio-backend/internal/models"

	"github.com/gin-gonic/gin"
)

type inviteRequest struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.Validation("invalid request body", nil))
		return
	}

	var missing []string
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		fail(c, apperrors.Validation("missing required fields", missing))
		return
	}

	email := currentEmail(c)
	result, err := invites.Invite(c.Request.Context(), database.DB, notifier, email, req.Email, req.Role, opts.PublicBaseURL)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(email, "portfolio", result.PortfolioID, "invite",
		"invited "+req.Email+" as "+string(req.Role))
	c.JSON(http.StatusOK, result)
}
