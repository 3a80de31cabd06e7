package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
)

type AuditHandler struct {
	service *services.AuditService
}

func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List returns the caller's organization audit log, newest first. Supports
// entity_kind, entity_id, actor_id, limit and offset query parameters.
func (h *AuditHandler) List(c *gin.Context) {
	limit, offset := page(c)
	entries, err := h.service.List(c.Request.Context(), actorFrom(c).OrgID, services.AuditFilter{
		EntityKind: c.Query("entity_kind"),
		EntityID:   c.Query("entity_id"),
		ActorID:    c.Query("actor_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}
