package handler

import (
	"net/http"

	"safetydesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SealedAuditHandler exposes the compliance read path for sealed audit
// entries.
type SealedAuditHandler interface {
	ListSealed(c *gin.Context)
}

type sealedAuditHandler struct {
	escape *service.EscapeService
	logger *zap.Logger
}

// NewSealedAuditHandler creates the sealed audit handler.
func NewSealedAuditHandler(escape *service.EscapeService, logger *zap.Logger) SealedAuditHandler {
	return &sealedAuditHandler{escape: escape, logger: logger}
}

type listSealedRequest struct {
	FamilyID            string `json:"familyId" binding:"required,max=128"`
	AuthorizationReason string `json:"authorizationReason" binding:"required,max=1024"`
}

// ListSealed handles POST /api/safety/sealed-audit/list
func (h *sealedAuditHandler) ListSealed(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req listSealedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.escape.ListSealedAudit(c.Request.Context(), actor, req.FamilyID, req.AuthorizationReason)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"entries":         entries,
		"entriesAccessed": len(entries),
	})
}
