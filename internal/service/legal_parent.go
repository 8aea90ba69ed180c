package service

import (
	"context"
	"fmt"
	"strings"

	"safetydesk/internal/models"
	"safetydesk/internal/repository"

	"go.uber.org/zap"
)

// GrantLegalParentInput carries the parameters of a petition grant.
type GrantLegalParentInput struct {
	TicketID         string
	FamilyID         string
	PetitionerEmail  string
	ClaimedChildName string
	Reason           string
}

// GrantLegalParentResult reports the outcome of a petition grant.
type GrantLegalParentResult struct {
	PetitionerUID string
	Message       string
}

// DenyPetitionInput carries the parameters of a petition denial.
type DenyPetitionInput struct {
	TicketID     string
	DenialReason string
	Reason       string
}

// DenyPetitionResult reports the outcome of a petition denial.
type DenyPetitionResult struct {
	Changed bool
	Message string
}

// GrantLegalParentAccess adds a court-ordered legal parent as a guardian.
// This is the one transparency action: the family-visible trail receives a
// deliberately redacted entry with no petitioner contact information.
func (s *EscapeService) GrantLegalParentAccess(ctx context.Context, actor Actor, input GrantLegalParentInput) (*GrantLegalParentResult, error) {
	ticket, err := s.loadGatedTicket(input.TicketID)
	if err != nil {
		return nil, err
	}

	if ticket.Type != models.TicketTypeLegalParentPetition {
		return nil, failedPrecondition("Ticket is not a legal parent petition")
	}
	if ticket.Status == models.TicketStatusResolved {
		return nil, failedPrecondition("Petition is already resolved")
	}

	family, err := s.families.GetByID(input.FamilyID)
	if err != nil {
		return nil, internalError(err)
	}
	if family == nil {
		return nil, notFound("Family not found")
	}
	if len(family.Children) == 0 {
		return nil, failedPrecondition("Family has no children")
	}

	petitioner, err := s.accounts.GetByEmail(input.PetitionerEmail)
	if err != nil {
		return nil, internalError(err)
	}
	if petitioner == nil {
		return nil, notFound("Petitioner has no existing account")
	}

	if family.HasGuardian(petitioner.UID) {
		return nil, alreadyExists("Petitioner is already a guardian of this family")
	}

	// The claimed child name is matched loosely and only logged. Legal
	// parentage is established by court documents reviewed by a human,
	// not by string similarity; a mismatch never blocks the grant.
	nameMatch := childNameMatches(input.ClaimedChildName, family.Children)
	if !nameMatch {
		s.logger.Warn("Claimed child name does not match any child on the family",
			zap.String("ticket_id", input.TicketID),
			zap.String("family_id", input.FamilyID))
	}

	err = s.families.GrantGuardian(input.FamilyID, models.Guardian{
		FamilyID:    input.FamilyID,
		UID:         petitioner.UID,
		Email:       petitioner.Email,
		DisplayName: petitioner.DisplayName,
		Role:        "guardian",
	})
	if err != nil {
		if err == repository.ErrGuardianExists {
			return nil, alreadyExists("Petitioner is already a guardian of this family")
		}
		return nil, internalError(err)
	}

	if err := s.tickets.UpdateStatus(input.TicketID, models.TicketStatusResolved); err != nil {
		s.logger.Error("Failed to resolve petition ticket after grant",
			zap.String("ticket_id", input.TicketID),
			zap.Error(err))
	}

	s.recordAudit(actor, newGrantAudit(input.TicketID, input.FamilyID, petitioner.UID, actor, input.Reason, nameMatch))

	// Redacted family-visible entry: the notice type carries no
	// petitioner fields.
	notice := familyGrantNotice{}
	if err := s.audit.RecordFamilyActivity(input.FamilyID, notice.action(), notice.details()); err != nil {
		s.logger.Error("Failed to write family-visible grant notice",
			zap.String("family_id", input.FamilyID),
			zap.Error(err))
	}

	s.annotate(input.TicketID, actor, ActionGrantLegalParent,
		fmt.Sprintf("Granted legal parent access on family %s", input.FamilyID),
		fmt.Sprintf("Petitioner %s added as guardian of family %s by court order. Reason: %s", petitioner.UID, input.FamilyID, input.Reason))

	return &GrantLegalParentResult{PetitionerUID: petitioner.UID, Message: "Legal parent access granted"}, nil
}

// DenyLegalParentPetition closes a petition without granting access. The
// denial reason is stored internally only; the petitioner may resubmit,
// so nothing is written to any family-visible trail.
func (s *EscapeService) DenyLegalParentPetition(ctx context.Context, actor Actor, input DenyPetitionInput) (*DenyPetitionResult, error) {
	ticket, err := s.loadGatedTicket(input.TicketID)
	if err != nil {
		return nil, err
	}

	if ticket.Type != models.TicketTypeLegalParentPetition {
		return nil, failedPrecondition("Ticket is not a legal parent petition")
	}
	if ticket.Status == models.TicketStatusResolved {
		return nil, failedPrecondition("Petition is already resolved")
	}

	sealedReason, err := s.notes.Seal(input.DenialReason)
	if err != nil {
		return nil, internalError(err)
	}

	changed, err := s.tickets.MarkDenied(input.TicketID, sealedReason)
	if err != nil {
		return nil, internalError(err)
	}

	if !changed {
		s.recordAudit(actor, newDenyAudit(input.TicketID, actor, input.Reason, false))
		return &DenyPetitionResult{Changed: false, Message: "Petition already denied"}, nil
	}

	s.recordAudit(actor, newDenyAudit(input.TicketID, actor, input.Reason, true))
	s.annotate(input.TicketID, actor, ActionDenyPetition,
		"Denied legal parent petition",
		fmt.Sprintf("Petition denied. Reason: %s", input.Reason))

	return &DenyPetitionResult{Changed: true, Message: "Petition denied"}, nil
}

// childNameMatches compares the claimed child name to the family's
// children, case-insensitively, accepting token containment in either
// direction ("Sam" vs "Sam Smith").
func childNameMatches(claimed string, children []models.Child) bool {
	claimed = strings.ToLower(strings.TrimSpace(claimed))
	if claimed == "" {
		return false
	}

	for _, child := range children {
		name := strings.ToLower(strings.TrimSpace(child.Name))
		if name == claimed {
			return true
		}
		if strings.Contains(name, claimed) || strings.Contains(claimed, name) {
			return true
		}
	}
	return false
}
