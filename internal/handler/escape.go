package handler

import (
	"errors"
	"net/http"

	"safetydesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EscapeHandler exposes the five escape actions.
type EscapeHandler interface {
	SeverGuardianAccess(c *gin.Context)
	DisableLocationFeatures(c *gin.Context)
	UnenrollDevices(c *gin.Context)
	GrantLegalParentAccess(c *gin.Context)
	DenyLegalParentPetition(c *gin.Context)
}

type escapeHandler struct {
	escape *service.EscapeService
	logger *zap.Logger
}

// NewEscapeHandler creates the escape action handler.
func NewEscapeHandler(escape *service.EscapeService, logger *zap.Logger) EscapeHandler {
	return &escapeHandler{escape: escape, logger: logger}
}

// actorFromContext builds the acting agent's identity from the values the
// auth middleware set.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	agentID, exists := c.Get("agent_id")
	if !exists {
		return service.Actor{}, false
	}
	email, _ := c.Get("email")
	ip, _ := c.Get("ip_address")

	agentIDStr, _ := agentID.(string)
	emailStr, _ := email.(string)
	ipStr, _ := ip.(string)
	if agentIDStr == "" {
		return service.Actor{}, false
	}

	return service.Actor{AgentID: agentIDStr, AgentEmail: emailStr, IPAddress: ipStr}, true
}

// writeServiceError maps a service error kind to an HTTP response.
// Internal failures carry only the generic message; detail stays in logs.
func writeServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logger.Error("Unclassified service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindUnauthenticated:
		status = http.StatusUnauthorized
	case service.KindPermissionDenied:
		status = http.StatusForbidden
	case service.KindInvalidArgument:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindAlreadyExists:
		status = http.StatusConflict
	case service.KindFailedPrecondition:
		status = http.StatusPreconditionFailed
	case service.KindInternal:
		logger.Error("Escape action failed", zap.Error(svcErr))
	}

	c.JSON(status, gin.H{"error": svcErr.Message})
}

type severRequest struct {
	TicketID           string `json:"ticketId" binding:"required,max=128"`
	FamilyID           string `json:"familyId" binding:"required,max=128"`
	GuardianUID        string `json:"guardianUid" binding:"required,max=128"`
	ConfirmationPhrase string `json:"confirmationPhrase" binding:"required"`
	Reason             string `json:"reason" binding:"required,max=1024"`
}

// SeverGuardianAccess handles POST /api/safety/actions/sever
func (h *escapeHandler) SeverGuardianAccess(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req severRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.escape.SeverGuardianAccess(c.Request.Context(), actor, service.SeverGuardianInput{
		TicketID:           req.TicketID,
		FamilyID:           req.FamilyID,
		GuardianUID:        req.GuardianUID,
		ConfirmationPhrase: req.ConfirmationPhrase,
		Reason:             req.Reason,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result.Message,
		"changed": result.Changed,
	})
}

type disableLocationRequest struct {
	TicketID string `json:"ticketId" binding:"required,max=128"`
	FamilyID string `json:"familyId" binding:"required,max=128"`
	Reason   string `json:"reason" binding:"required,max=1024"`
}

// DisableLocationFeatures handles POST /api/safety/actions/disable-location
func (h *escapeHandler) DisableLocationFeatures(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req disableLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.escape.DisableLocationFeatures(c.Request.Context(), actor, service.DisableLocationInput{
		TicketID: req.TicketID,
		FamilyID: req.FamilyID,
		Reason:   req.Reason,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result.Message,
		"changed": result.Changed,
	})
}

type unenrollRequest struct {
	TicketID  string   `json:"ticketId" binding:"required,max=128"`
	FamilyID  string   `json:"familyId" binding:"required,max=128"`
	DeviceIDs []string `json:"deviceIds" binding:"required,min=1,max=50,dive,required,max=128"`
	Reason    string   `json:"reason" binding:"required,max=1024"`
}

// UnenrollDevices handles POST /api/safety/actions/unenroll-devices
func (h *escapeHandler) UnenrollDevices(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req unenrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.escape.UnenrollDevices(c.Request.Context(), actor, service.UnenrollDevicesInput{
		TicketID:  req.TicketID,
		FamilyID:  req.FamilyID,
		DeviceIDs: req.DeviceIDs,
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         result.Message,
		"unenrolledCount": result.UnenrolledCount,
		"skippedCount":    result.SkippedCount,
	})
}

type grantRequest struct {
	TicketID         string `json:"ticketId" binding:"required,max=128"`
	FamilyID         string `json:"familyId" binding:"required,max=128"`
	PetitionerEmail  string `json:"petitionerEmail" binding:"required,email,max=320"`
	ClaimedChildName string `json:"claimedChildName" binding:"max=256"`
	Reason           string `json:"reason" binding:"required,max=1024"`
}

// GrantLegalParentAccess handles POST /api/safety/actions/grant-legal-parent
func (h *escapeHandler) GrantLegalParentAccess(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.escape.GrantLegalParentAccess(c.Request.Context(), actor, service.GrantLegalParentInput{
		TicketID:         req.TicketID,
		FamilyID:         req.FamilyID,
		PetitionerEmail:  req.PetitionerEmail,
		ClaimedChildName: req.ClaimedChildName,
		Reason:           req.Reason,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result.Message,
	})
}

type denyRequest struct {
	TicketID     string `json:"ticketId" binding:"required,max=128"`
	DenialReason string `json:"denialReason" binding:"required,max=2048"`
	Reason       string `json:"reason" binding:"required,max=1024"`
}

// DenyLegalParentPetition handles POST /api/safety/actions/deny-petition
func (h *escapeHandler) DenyLegalParentPetition(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req denyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.escape.DenyLegalParentPetition(c.Request.Context(), actor, service.DenyPetitionInput{
		TicketID:     req.TicketID,
		DenialReason: req.DenialReason,
		Reason:       req.Reason,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result.Message,
		"changed": result.Changed,
	})
}
