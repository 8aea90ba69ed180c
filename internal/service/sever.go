package service

import (
	"context"
	"fmt"

	"safetydesk/internal/repository"
	"safetydesk/internal/stealth_client"

	"go.uber.org/zap"
)

// SeverGuardianInput carries the parameters of a sever action.
type SeverGuardianInput struct {
	TicketID           string
	FamilyID           string
	GuardianUID        string
	ConfirmationPhrase string
	Reason             string
}

// SeverGuardianResult reports the outcome of a sever action.
type SeverGuardianResult struct {
	Changed bool
	Message string
}

// SeverGuardianAccess permanently removes a guardian's access to the
// family, without notifying them. This is the highest-severity escape
// action: it requires the typed confirmation phrase on top of the
// verification gate, and its success must never appear on any
// family-visible trail.
func (s *EscapeService) SeverGuardianAccess(ctx context.Context, actor Actor, input SeverGuardianInput) (*SeverGuardianResult, error) {
	if _, err := s.loadGatedTicket(input.TicketID); err != nil {
		return nil, err
	}

	family, err := s.families.GetByID(input.FamilyID)
	if err != nil {
		return nil, internalError(err)
	}
	if family == nil {
		return nil, notFound("Family not found")
	}

	// Idempotency check comes before the confirmation phrase: once the
	// guardian is gone their email is no longer available to derive the
	// expected phrase, and a retry of a completed sever must succeed.
	if !family.HasGuardian(input.GuardianUID) {
		s.recordAudit(actor, newSeverAudit(input.TicketID, input.FamilyID, input.GuardianUID, actor, input.Reason, false))
		return &SeverGuardianResult{Changed: false, Message: "Access already severed"}, nil
	}

	guardian := family.GuardianByUID(input.GuardianUID)
	if guardian == nil {
		// guardian_uids and the display records are out of lock-step.
		return nil, internalError(fmt.Errorf("guardian %s missing display record on family %s", input.GuardianUID, input.FamilyID))
	}

	if !ConfirmationMatches(input.ConfirmationPhrase, guardian.Email) {
		return nil, invalidArgument("Confirmation phrase does not match")
	}

	if len(family.GuardianUIDs) < 2 {
		return nil, failedPrecondition("Cannot sever the last remaining guardian")
	}

	removed, err := s.families.SeverGuardian(input.FamilyID, input.GuardianUID)
	if err != nil {
		switch err {
		case repository.ErrLastGuardian:
			return nil, failedPrecondition("Cannot sever the last remaining guardian")
		default:
			return nil, internalError(err)
		}
	}

	if !removed {
		// Lost a race to another identical request; same terminal state.
		s.recordAudit(actor, newSeverAudit(input.TicketID, input.FamilyID, input.GuardianUID, actor, input.Reason, false))
		return &SeverGuardianResult{Changed: false, Message: "Access already severed"}, nil
	}

	s.recordAudit(actor, newSeverAudit(input.TicketID, input.FamilyID, input.GuardianUID, actor, input.Reason, true))
	s.annotate(input.TicketID, actor, ActionSeverGuardian,
		fmt.Sprintf("Severed guardian %s from family %s", input.GuardianUID, input.FamilyID),
		fmt.Sprintf("Guardian %s (%s) severed from family %s. Reason: %s", input.GuardianUID, guardian.Email, input.FamilyID, input.Reason))

	// Start the notification suppression window for the affected account.
	// Best effort: the sever is already durable.
	err = s.stealth.Activate(ctx, stealth_client.ActivationRequest{
		FamilyID:        input.FamilyID,
		TicketID:        input.TicketID,
		AffectedUserIDs: []string{input.GuardianUID},
		AgentID:         actor.AgentID,
	})
	if err != nil {
		s.logger.Error("Failed to activate stealth window",
			zap.String("family_id", input.FamilyID),
			zap.String("ticket_id", input.TicketID),
			zap.Error(err))
	}

	return &SeverGuardianResult{Changed: true, Message: "Guardian access severed"}, nil
}
