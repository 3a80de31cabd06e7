package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/models"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
)

type TrailHandler struct {
	trails   *services.TrailService
	rollback *services.RollbackService
}

func NewTrailHandler(trails *services.TrailService, rollback *services.RollbackService) *TrailHandler {
	return &TrailHandler{trails: trails, rollback: rollback}
}

type trailResponse struct {
	models.DecisionTrail
	Status string `json:"status"`
}

func present(t models.DecisionTrail) trailResponse {
	return trailResponse{DecisionTrail: t, Status: t.Status()}
}

// List supports entity_kind, entity_id, active, limit and offset query
// parameters.
func (h *TrailHandler) List(c *gin.Context) {
	limit, offset := page(c)
	active, _ := strconv.ParseBool(c.Query("active"))
	trails, err := h.trails.List(c.Request.Context(), actorFrom(c).OrgID, services.TrailFilter{
		EntityKind: c.Query("entity_kind"),
		EntityID:   c.Query("entity_id"),
		ActiveOnly: active,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]trailResponse, 0, len(trails))
	for _, t := range trails {
		out = append(out, present(t))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (h *TrailHandler) Get(c *gin.Context) {
	trail, err := h.trails.GetForOrg(c.Request.Context(), actorFrom(c).OrgID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": present(*trail)})
}

// Rollback reverts the mutation recorded by the trail.
func (h *TrailHandler) Rollback(c *gin.Context) {
	actor := actorFrom(c)
	res, err := h.rollback.Rollback(c.Request.Context(), actor.OrgID, c.Param("id"), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"trail":              present(*res.Trail),
			"operation":          res.Operation,
			"cleared_references": res.ClearedReferences,
			"already_absent":     res.AlreadyAbsent,
		},
	})
}
