package models

import (
	"time"

	"github.com/lib/pq"
)

// Guardian is the denormalized display record for one adult with access to
// a family's monitoring data. The authoritative membership list is
// Family.GuardianUIDs; the two must stay in lock-step.
type Guardian struct {
	FamilyID    string `db:"family_id" json:"-"`
	UID         string `db:"uid" json:"uid"`
	Email       string `db:"email" json:"email"`
	DisplayName string `db:"display_name" json:"display_name"`
	Role        string `db:"role" json:"role"`
}

// Child is a monitored child account within a family.
type Child struct {
	FamilyID string `db:"family_id" json:"-"`
	UID      string `db:"uid" json:"uid"`
	Name     string `db:"name" json:"name"`
}

// Family owns guardian membership and the location-feature flags. At least
// one guardian must always remain.
type Family struct {
	ID                     string         `db:"id" json:"id"`
	GuardianUIDs           pq.StringArray `db:"guardian_uids" json:"guardian_uids"`
	SafetyLocationDisabled bool           `db:"safety_location_disabled" json:"safety_location_disabled"`
	LocationRedacted       bool           `db:"location_redacted" json:"location_redacted"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at" json:"updated_at"`

	Guardians []Guardian `db:"-" json:"guardians,omitempty"`
	Children  []Child    `db:"-" json:"children,omitempty"`
}

// HasGuardian reports whether uid is in the authoritative membership list.
func (f *Family) HasGuardian(uid string) bool {
	for _, g := range f.GuardianUIDs {
		if g == uid {
			return true
		}
	}
	return false
}

// GuardianByUID returns the display record for uid, or nil.
func (f *Family) GuardianByUID(uid string) *Guardian {
	for i := range f.Guardians {
		if f.Guardians[i].UID == uid {
			return &f.Guardians[i]
		}
	}
	return nil
}
