package handler

import (
	"net/http"

	"safetydesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FamilyHandler exposes the agent-facing family read path.
type FamilyHandler interface {
	GetFamily(c *gin.Context)
}

type familyHandler struct {
	escape *service.EscapeService
	logger *zap.Logger
}

// NewFamilyHandler creates the family handler.
func NewFamilyHandler(escape *service.EscapeService, logger *zap.Logger) FamilyHandler {
	return &familyHandler{escape: escape, logger: logger}
}

// GetFamily handles GET /api/safety/families/:id
// Agents load this view to pick sever targets and device ids; it is never
// served to family members.
func (h *familyHandler) GetFamily(c *gin.Context) {
	id := c.Param("id")

	overview, err := h.escape.GetFamilyOverview(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"family":    overview.Family,
		"guardians": overview.Guardians,
		"devices":   overview.Devices,
	})
}
