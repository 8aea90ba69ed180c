package service

import "encoding/json"

// Action names as recorded on the admin audit trail.
const (
	ActionSeverGuardian     = "sever_guardian_access"
	ActionDisableLocation   = "disable_location_features"
	ActionUnenrollDevices   = "unenroll_devices"
	ActionGrantLegalParent  = "grant_legal_parent_access"
	ActionDenyPetition      = "deny_legal_parent_petition"
	ActionSealedAuditAccess = "sealed_audit_access"
)

// auditAction is one typed admin-audit payload. Every executor has exactly
// one variant with a fixed field set, so what an action may record is
// checked at compile time rather than by convention.
type auditAction interface {
	action() string
	resourceType() string
	resourceID() string
	metadata() (json.RawMessage, error)
}

type severAudit struct {
	TicketID    string `json:"ticketId"`
	FamilyID    string `json:"familyId"`
	GuardianUID string `json:"guardianUid"`
	AgentEmail  string `json:"agentEmail"`
	IPAddress   string `json:"ipAddress"`
	Reason      string `json:"reason"`
	Changed     bool   `json:"changed"`
}

func newSeverAudit(ticketID, familyID, guardianUID string, actor Actor, reason string, changed bool) severAudit {
	return severAudit{
		TicketID:    ticketID,
		FamilyID:    familyID,
		GuardianUID: guardianUID,
		AgentEmail:  actor.AgentEmail,
		IPAddress:   actor.IPAddress,
		Reason:      reason,
		Changed:     changed,
	}
}

func (a severAudit) action() string { return ActionSeverGuardian }
func (a severAudit) resourceType() string { return "family" }
func (a severAudit) resourceID() string { return a.FamilyID }
func (a severAudit) metadata() (json.RawMessage, error) { return json.Marshal(a) }

type locationAudit struct {
	TicketID   string `json:"ticketId"`
	FamilyID   string `json:"familyId"`
	AgentEmail string `json:"agentEmail"`
	IPAddress  string `json:"ipAddress"`
	Reason     string `json:"reason"`
	Changed    bool   `json:"changed"`
}

func newLocationAudit(ticketID, familyID string, actor Actor, reason string, changed bool) locationAudit {
	return locationAudit{
		TicketID:   ticketID,
		FamilyID:   familyID,
		AgentEmail: actor.AgentEmail,
		IPAddress:  actor.IPAddress,
		Reason:     reason,
		Changed:    changed,
	}
}

func (a locationAudit) action() string { return ActionDisableLocation }
func (a locationAudit) resourceType() string { return "family" }
func (a locationAudit) resourceID() string { return a.FamilyID }
func (a locationAudit) metadata() (json.RawMessage, error) { return json.Marshal(a) }

type unenrollAudit struct {
	TicketID        string `json:"ticketId"`
	FamilyID        string `json:"familyId"`
	AgentEmail      string `json:"agentEmail"`
	IPAddress       string `json:"ipAddress"`
	Reason          string `json:"reason"`
	RequestedCount  int    `json:"requestedCount"`
	UnenrolledCount int    `json:"unenrolledCount"`
	SkippedCount    int    `json:"skippedCount"`
}

func newUnenrollAudit(ticketID, familyID string, actor Actor, reason string, requested, unenrolled, skipped int) unenrollAudit {
	return unenrollAudit{
		TicketID:        ticketID,
		FamilyID:        familyID,
		AgentEmail:      actor.AgentEmail,
		IPAddress:       actor.IPAddress,
		Reason:          reason,
		RequestedCount:  requested,
		UnenrolledCount: unenrolled,
		SkippedCount:    skipped,
	}
}

func (a unenrollAudit) action() string { return ActionUnenrollDevices }
func (a unenrollAudit) resourceType() string { return "family" }
func (a unenrollAudit) resourceID() string { return a.FamilyID }
func (a unenrollAudit) metadata() (json.RawMessage, error) { return json.Marshal(a) }

type grantAudit struct {
	TicketID       string `json:"ticketId"`
	FamilyID       string `json:"familyId"`
	PetitionerUID  string `json:"petitionerUid"`
	AgentEmail     string `json:"agentEmail"`
	IPAddress      string `json:"ipAddress"`
	Reason         string `json:"reason"`
	ChildNameMatch bool   `json:"childNameMatch"`
}

func newGrantAudit(ticketID, familyID, petitionerUID string, actor Actor, reason string, childNameMatch bool) grantAudit {
	return grantAudit{
		TicketID:       ticketID,
		FamilyID:       familyID,
		PetitionerUID:  petitionerUID,
		AgentEmail:     actor.AgentEmail,
		IPAddress:      actor.IPAddress,
		Reason:         reason,
		ChildNameMatch: childNameMatch,
	}
}

func (a grantAudit) action() string { return ActionGrantLegalParent }
func (a grantAudit) resourceType() string { return "family" }
func (a grantAudit) resourceID() string { return a.FamilyID }
func (a grantAudit) metadata() (json.RawMessage, error) { return json.Marshal(a) }

type denyAudit struct {
	TicketID   string `json:"ticketId"`
	AgentEmail string `json:"agentEmail"`
	IPAddress  string `json:"ipAddress"`
	Reason     string `json:"reason"`
	Changed    bool   `json:"changed"`
}

func newDenyAudit(ticketID string, actor Actor, reason string, changed bool) denyAudit {
	return denyAudit{
		TicketID:   ticketID,
		AgentEmail: actor.AgentEmail,
		IPAddress:  actor.IPAddress,
		Reason:     reason,
		Changed:    changed,
	}
}

func (a denyAudit) action() string { return ActionDenyPetition }
func (a denyAudit) resourceType() string { return "ticket" }
func (a denyAudit) resourceID() string { return a.TicketID }
func (a denyAudit) metadata() (json.RawMessage, error) { return json.Marshal(a) }

type sealedAccessAudit struct {
	FamilyID        string `json:"familyId"`
	AgentEmail      string `json:"agentEmail"`
	IPAddress       string `json:"ipAddress"`
	Reason          string `json:"authorizationReason"`
	EntriesAccessed int    `json:"entriesAccessed"`
}

func newSealedAccessAudit(familyID string, actor Actor, reason string, entriesAccessed int) sealedAccessAudit {
	return sealedAccessAudit{
		FamilyID:        familyID,
		AgentEmail:      actor.AgentEmail,
		IPAddress:       actor.IPAddress,
		Reason:          reason,
		EntriesAccessed: entriesAccessed,
	}
}

func (a sealedAccessAudit) action() string { return ActionSealedAuditAccess }
func (a sealedAccessAudit) resourceType() string { return "family" }
func (a sealedAccessAudit) resourceID() string { return a.FamilyID }
func (a sealedAccessAudit) metadata() (json.RawMessage, error) { return json.Marshal(a) }

// familyGrantNotice is the only payload that may reach the family-visible
// trail. It has no fields at all, so it cannot carry petitioner identity.
type familyGrantNotice struct{}

func (familyGrantNotice) action() string { return "guardian_added" }

func (familyGrantNotice) details() string {
	return "A legal parent was added to this family by court order."
}
