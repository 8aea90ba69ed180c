package service

import (
	"context"
	"fmt"
)

// DisableLocationInput carries the parameters of a location-disable action.
type DisableLocationInput struct {
	TicketID string
	FamilyID string
	Reason   string
}

// DisableLocationResult reports the outcome of a location-disable action.
type DisableLocationResult struct {
	Changed bool
	Message string
}

// DisableLocationFeatures turns off the family's location features and
// marks historical location data redacted. Stealth action: no
// family-visible trail is written.
func (s *EscapeService) DisableLocationFeatures(ctx context.Context, actor Actor, input DisableLocationInput) (*DisableLocationResult, error) {
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

	changed, err := s.families.DisableLocation(input.FamilyID)
	if err != nil {
		return nil, internalError(err)
	}

	if !changed {
		s.recordAudit(actor, newLocationAudit(input.TicketID, input.FamilyID, actor, input.Reason, false))
		return &DisableLocationResult{Changed: false, Message: "Location features already disabled"}, nil
	}

	s.recordAudit(actor, newLocationAudit(input.TicketID, input.FamilyID, actor, input.Reason, true))
	s.annotate(input.TicketID, actor, ActionDisableLocation,
		fmt.Sprintf("Disabled location features for family %s", input.FamilyID),
		fmt.Sprintf("Location features disabled and history redacted for family %s. Reason: %s", input.FamilyID, input.Reason))

	return &DisableLocationResult{Changed: true, Message: "Location features disabled"}, nil
}
