package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

// EntityHandler serves CRUD endpoints for one restorable kind. Request
// bodies use the same keys as the kind's snapshots.
type EntityHandler struct {
	service *services.EntityService
	kind    string
}

func NewEntityHandler(service *services.EntityService, kind string) *EntityHandler {
	return &EntityHandler{service: service, kind: kind}
}

// Register mounts the handler's routes on group.
func (h *EntityHandler) Register(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

func (h *EntityHandler) List(c *gin.Context) {
	limit, offset := page(c)
	items, err := h.service.List(c.Request.Context(), actorFrom(c).OrgID, h.kind, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *EntityHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), actorFrom(c).OrgID, h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (h *EntityHandler) Create(c *gin.Context) {
	var payload snapshot.Snapshot
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	res, err := h.service.Create(c.Request.Context(), actorFrom(c), h.kind, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": res.Entity, "trail_id": res.TrailID})
}

func (h *EntityHandler) Update(c *gin.Context) {
	var payload snapshot.Snapshot
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	res, err := h.service.Update(c.Request.Context(), actorFrom(c), h.kind, c.Param("id"), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res.Entity, "trail_id": res.TrailID})
}

func (h *EntityHandler) Delete(c *gin.Context) {
	res, err := h.service.Delete(c.Request.Context(), actorFrom(c), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "trail_id": res.TrailID})
}
