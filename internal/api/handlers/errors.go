package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/api/middleware"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/services"
	"github.com/Ikenna-Git/ik-crm-erp-sub001/internal/snapshot"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTrailNotFound), errors.Is(err, services.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyRolledBack),
		errors.Is(err, services.ErrUnsupportedEntityKind),
		errors.Is(err, services.ErrMissingEntityReference),
		errors.Is(err, services.ErrInvalidRollbackRequest),
		errors.Is(err, services.ErrInvalidAuditEntry),
		errors.Is(err, snapshot.ErrInvalidField):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrStaleTarget):
		return http.StatusConflict
	case errors.Is(err, services.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error", "retryable"}. Storage and unexpected errors
// are logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		middleware.GetRequestLogger(c).WithError(err).Warn("storage unavailable")
		msg = "storage temporarily unavailable"
	case http.StatusInternalServerError:
		middleware.GetRequestLogger(c).WithError(err).Error("request failed")
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg, "retryable": services.Retryable(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "retryable": false})
}

// actorFrom builds the acting user from the claims AuthMiddleware stored.
func actorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{OrgID: c.GetString(middleware.OrgIDKey)}
	if id := c.GetString(middleware.UserIDKey); id != "" {
		actor.UserID = &id
	}
	return actor
}

// page reads limit and offset query parameters. Invalid values fall back to
// the service defaults.
func page(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}
