package handler

import (
	"net/http"

	"safetydesk/internal/crypto"
	"safetydesk/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TicketHandler exposes the agent-facing ticket read path and
// verification-check updates.
type TicketHandler interface {
	GetTicket(c *gin.Context)
	SetVerificationCheck(c *gin.Context)
}

type ticketHandler struct {
	ticketRepo repository.TicketRepository
	notes      *crypto.NoteCipher
	logger     *zap.Logger
}

// NewTicketHandler creates the ticket handler.
func NewTicketHandler(ticketRepo repository.TicketRepository, notes *crypto.NoteCipher, logger *zap.Logger) TicketHandler {
	return &ticketHandler{ticketRepo: ticketRepo, notes: notes, logger: logger}
}

// GetTicket handles GET /api/safety/tickets/:id
// Internal notes are decrypted for the agent view; they are never served
// to family members from any endpoint.
func (h *ticketHandler) GetTicket(c *gin.Context) {
	id := c.Param("id")

	ticket, err := h.ticketRepo.GetByID(id)
	if err != nil {
		h.logger.Error("Failed to get ticket", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket"})
		return
	}
	if ticket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}

	notes, err := h.ticketRepo.ListNotes(id)
	if err != nil {
		h.logger.Error("Failed to list ticket notes", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket"})
		return
	}

	for _, note := range notes {
		body, err := h.notes.Open(note.BodyEncrypted)
		if err != nil {
			h.logger.Warn("Failed to decrypt internal note", zap.Int64("note_id", note.ID), zap.Error(err))
			continue
		}
		note.Body = body
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "notes": notes})
}

type setVerificationRequest struct {
	Check    string `json:"check" binding:"required,oneof=phone id_document account_match security_questions"`
	Verified bool   `json:"verified"`
}

// SetVerificationCheck handles PUT /api/safety/tickets/:id/verification
// Setting verified=false is an explicit agent revocation; the completed
// count is otherwise monotonic non-decreasing.
func (h *ticketHandler) SetVerificationCheck(c *gin.Context) {
	id := c.Param("id")

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req setVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.ticketRepo.GetByID(id)
	if err != nil {
		h.logger.Error("Failed to get ticket", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ticket"})
		return
	}
	if ticket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}

	if err := h.ticketRepo.SetVerificationCheck(id, req.Check, req.Verified, actor.AgentID); err != nil {
		h.logger.Error("Failed to set verification check", zap.String("id", id), zap.String("check", req.Check), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update verification"})
		return
	}

	action := "verification_check_set"
	if !req.Verified {
		action = "verification_check_revoked"
	}
	if err := h.ticketRepo.AppendHistory(id, action, actor.AgentID, req.Check); err != nil {
		h.logger.Error("Failed to append verification history", zap.String("id", id), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification updated"})
}
