package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
)

// UserHandler manages the accounts of the caller's organization. Routes are
// expected to be admin-only.
type UserHandler struct {
	authService *services.AuthService
	audit       *services.AuditService
}

func NewUserHandler(authService *services.AuthService, audit *services.AuditService) *UserHandler {
	return &UserHandler{authService: authService, audit: audit}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context(), actorFrom(c).OrgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// CreateUser adds an account to the caller's organization.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	actor := actorFrom(c)
	user, err := h.authService.Register(c.Request.Context(), actor.OrgID, req.Email, req.Password, req.Name, req.Role)
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": false})
		return
	case errors.Is(err, services.ErrInvalidUser):
		badRequest(c, err.Error())
		return
	case err != nil:
		respondError(c, err)
		return
	}

	h.audit.RecordBestEffort(c.Request.Context(), services.AuditInput{
		OrgID:      actor.OrgID,
		ActorID:    actor.UserID,
		Action:     "Created user",
		EntityKind: models.KindUser,
		EntityID:   &user.ID,
		Metadata:   map[string]any{"role": user.Role},
	})

	c.JSON(http.StatusCreated, gin.H{"data": user})
}
