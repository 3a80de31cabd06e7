package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrAccountDisabled):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "retryable": false})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	actor := actorFrom(c)
	if actor.UserID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "retryable": false})
		return
	}

	u, err := h.authService.GetUser(c.Request.Context(), actor.OrgID, *actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":      u.ID,
		"org_id":       u.OrgID,
		"role":         u.Role,
		"name":         u.Name,
		"email":        u.Email,
		"can_rollback": u.CanRollback(),
	})
}
