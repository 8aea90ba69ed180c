package service

import (
	"context"

	"safetydesk/internal/models"
)

// GuardianStatus pairs a guardian's display record with the state of the
// backing product account.
type GuardianStatus struct {
	models.Guardian
	// AccountMissing flags a guardian uid with no accounts row. The
	// membership list and the accounts table must stay in lock-step;
	// a flagged guardian needs manual repair before a sever can target
	// them.
	AccountMissing bool `json:"account_missing,omitempty"`
}

// FamilyOverview is the agent-facing read model for one family: the
// membership and location flags, per-guardian account status, and the
// enrolled devices an unenroll request would target.
type FamilyOverview struct {
	Family    *models.Family   `json:"family"`
	Guardians []GuardianStatus `json:"guardians"`
	Devices   []*models.Device `json:"devices"`
}

// GetFamilyOverview loads the family an agent is working, with devices and
// guardian account checks. Read-only; writes nothing to either trail.
func (s *EscapeService) GetFamilyOverview(ctx context.Context, familyID string) (*FamilyOverview, error) {
	family, err := s.families.GetByID(familyID)
	if err != nil {
		return nil, internalError(err)
	}
	if family == nil {
		return nil, notFound("Family not found")
	}

	devices, err := s.devices.ListByFamily(familyID)
	if err != nil {
		return nil, internalError(err)
	}

	guardians := make([]GuardianStatus, 0, len(family.Guardians))
	for _, g := range family.Guardians {
		account, err := s.accounts.GetByUID(g.UID)
		if err != nil {
			return nil, internalError(err)
		}
		guardians = append(guardians, GuardianStatus{Guardian: g, AccountMissing: account == nil})
	}

	return &FamilyOverview{Family: family, Guardians: guardians, Devices: devices}, nil
}
