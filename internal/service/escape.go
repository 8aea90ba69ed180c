package service

import (
	"context"
	"encoding/json"

	"safetydesk/internal/models"
	"safetydesk/internal/repository"
	"safetydesk/internal/stealth_client"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor identifies the authenticated safety-team agent performing an
// action, as resolved by the auth middleware.
type Actor struct {
	AgentID    string
	AgentEmail string
	IPAddress  string
}

// StealthWindowActivator starts a time-boxed suppression of notifications
// about an affected account after a sever.
type StealthWindowActivator interface {
	Activate(ctx context.Context, req stealth_client.ActivationRequest) error
}

// NoteSealer encrypts internal note bodies before storage.
type NoteSealer interface {
	Seal(plaintext string) (string, error)
}

// EscapeService implements the escape action executors. All dependencies
// are injected at construction; the service holds no mutable state across
// invocations.
type EscapeService struct {
	tickets  repository.TicketRepository
	families repository.FamilyRepository
	devices  repository.DeviceRepository
	accounts repository.AccountRepository
	audit    repository.AuditRepository
	stealth  StealthWindowActivator
	notes    NoteSealer
	minimum  int
	logger   *zap.Logger
}

// NewEscapeService creates the escape action service. minimum is the
// verification threshold; pass DefaultVerificationMinimum unless policy
// changes it for all actions at once.
func NewEscapeService(
	tickets repository.TicketRepository,
	families repository.FamilyRepository,
	devices repository.DeviceRepository,
	accounts repository.AccountRepository,
	audit repository.AuditRepository,
	stealth StealthWindowActivator,
	notes NoteSealer,
	minimum int,
	logger *zap.Logger,
) *EscapeService {
	return &EscapeService{
		tickets:  tickets,
		families: families,
		devices:  devices,
		accounts: accounts,
		audit:    audit,
		stealth:  stealth,
		notes:    notes,
		minimum:  minimum,
		logger:   logger,
	}
}

// loadGatedTicket fetches the ticket and applies the verification gate.
// Every executor passes through here before touching anything else.
func (s *EscapeService) loadGatedTicket(ticketID string) (*models.SafetyTicket, error) {
	ticket, err := s.tickets.GetByID(ticketID)
	if err != nil {
		return nil, internalError(err)
	}
	if ticket == nil {
		return nil, notFound("Ticket not found")
	}

	count := VerifiedCount(ticket.Verification)
	if !MeetsThreshold(count, s.minimum) {
		return nil, failedPrecondition("Identity verification below required threshold")
	}

	return ticket, nil
}

// recordAudit writes one admin-only audit entry. Best-effort relative to
// the already-committed mutation: a failure here is logged in full but
// never fails the action.
func (s *EscapeService) recordAudit(actor Actor, a auditAction) {
	metadata, err := a.metadata()
	if err != nil {
		s.logger.Error("Failed to encode audit metadata",
			zap.String("action", a.action()),
			zap.String("agent_id", actor.AgentID),
			zap.Error(err))
		return
	}

	entry := &models.AuditLogEntry{
		ID:           uuid.NewString(),
		Action:       a.action(),
		ResourceType: a.resourceType(),
		ResourceID:   a.resourceID(),
		AgentID:      actor.AgentID,
		Metadata:     json.RawMessage(metadata),
	}

	if err := s.audit.RecordAdmin(entry); err != nil {
		s.logger.Error("Failed to write admin audit entry",
			zap.String("action", a.action()),
			zap.String("resource_id", a.resourceID()),
			zap.String("agent_id", actor.AgentID),
			zap.Error(err))
	}
}

// annotate appends a history entry and an encrypted internal note to the
// ticket. Like the audit write, failures are logged but do not undo the
// committed mutation.
func (s *EscapeService) annotate(ticketID string, actor Actor, action, details, noteBody string) {
	if err := s.tickets.AppendHistory(ticketID, action, actor.AgentID, details); err != nil {
		s.logger.Error("Failed to append ticket history",
			zap.String("ticket_id", ticketID),
			zap.String("action", action),
			zap.Error(err))
	}

	sealed, err := s.notes.Seal(noteBody)
	if err != nil {
		s.logger.Error("Failed to encrypt internal note",
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		return
	}
	if err := s.tickets.AddInternalNote(ticketID, actor.AgentID, sealed); err != nil {
		s.logger.Error("Failed to add internal note",
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
}
