package service

import (
	"context"
	"time"

	"safetydesk/internal/models"
	"safetydesk/internal/repository"
	"safetydesk/internal/stealth_client"

	"go.uber.org/zap"
)

// Hand-rolled fakes over the repository interfaces. The executor tests
// assert not just results but which trails were written, so the fakes
// record every write.

type fakeTicketRepo struct {
	tickets map[string]*models.SafetyTicket
	history []models.TicketHistoryEntry
	notes   []models.TicketNote
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*models.SafetyTicket)}
}

func (r *fakeTicketRepo) GetByID(id string) (*models.SafetyTicket, error) {
	return r.tickets[id], nil
}

func (r *fakeTicketRepo) AppendHistory(ticketID, action, agentID, details string) error {
	r.history = append(r.history, models.TicketHistoryEntry{
		TicketID: ticketID, Action: action, AgentID: agentID, Details: details, CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeTicketRepo) AddInternalNote(ticketID, agentID, bodyEncrypted string) error {
	r.notes = append(r.notes, models.TicketNote{
		TicketID: ticketID, AgentID: agentID, BodyEncrypted: bodyEncrypted, CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeTicketRepo) ListNotes(ticketID string) ([]*models.TicketNote, error) {
	var out []*models.TicketNote
	for i := range r.notes {
		if r.notes[i].TicketID == ticketID {
			out = append(out, &r.notes[i])
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) SetVerificationCheck(ticketID, check string, verified bool, agentID string) error {
	return nil
}

func (r *fakeTicketRepo) UpdateStatus(id, status string) error {
	if t, ok := r.tickets[id]; ok {
		t.Status = status
	}
	return nil
}

func (r *fakeTicketRepo) MarkDenied(ticketID, reasonEncrypted string) (bool, error) {
	t, ok := r.tickets[ticketID]
	if !ok {
		return false, nil
	}
	if t.Status == models.TicketStatusDenied {
		return false, nil
	}
	t.Status = models.TicketStatusDenied
	return true, nil
}

type fakeFamilyRepo struct {
	families map[string]*models.Family
}

func newFakeFamilyRepo() *fakeFamilyRepo {
	return &fakeFamilyRepo{families: make(map[string]*models.Family)}
}

func (r *fakeFamilyRepo) GetByID(id string) (*models.Family, error) {
	return r.families[id], nil
}

func (r *fakeFamilyRepo) SeverGuardian(familyID, uid string) (bool, error) {
	f := r.families[familyID]
	if f == nil {
		return false, nil
	}
	if !f.HasGuardian(uid) {
		return false, nil
	}
	if len(f.GuardianUIDs) < 2 {
		return false, repository.ErrLastGuardian
	}
	remaining := f.GuardianUIDs[:0:0]
	for _, u := range f.GuardianUIDs {
		if u != uid {
			remaining = append(remaining, u)
		}
	}
	f.GuardianUIDs = remaining
	guardians := f.Guardians[:0:0]
	for _, g := range f.Guardians {
		if g.UID != uid {
			guardians = append(guardians, g)
		}
	}
	f.Guardians = guardians
	return true, nil
}

func (r *fakeFamilyRepo) DisableLocation(familyID string) (bool, error) {
	f := r.families[familyID]
	if f == nil {
		return false, nil
	}
	if f.SafetyLocationDisabled {
		return false, nil
	}
	f.SafetyLocationDisabled = true
	f.LocationRedacted = true
	return true, nil
}

func (r *fakeFamilyRepo) GrantGuardian(familyID string, g models.Guardian) error {
	f := r.families[familyID]
	if f == nil {
		return repository.ErrGuardianExists
	}
	if f.HasGuardian(g.UID) {
		return repository.ErrGuardianExists
	}
	f.GuardianUIDs = append(f.GuardianUIDs, g.UID)
	f.Guardians = append(f.Guardians, g)
	return nil
}

type fakeDeviceRepo struct {
	devices map[string]*models.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*models.Device)}
}

func (r *fakeDeviceRepo) ListByFamily(familyID string) ([]*models.Device, error) {
	var out []*models.Device
	for _, d := range r.devices {
		if d.FamilyID == familyID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) UnenrollBatch(familyID string, deviceIDs []string) (int, int, error) {
	unenrolled := 0
	for _, id := range deviceIDs {
		d, ok := r.devices[id]
		if !ok || d.FamilyID != familyID || d.Status == models.DeviceStatusUnenrolled {
			continue
		}
		d.Status = models.DeviceStatusUnenrolled
		unenrolled++
	}
	return unenrolled, len(deviceIDs) - unenrolled, nil
}

type fakeAccountRepo struct {
	accounts map[string]*models.Account // keyed by email
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*models.Account)}
}

func (r *fakeAccountRepo) GetByEmail(email string) (*models.Account, error) {
	return r.accounts[email], nil
}

func (r *fakeAccountRepo) GetByUID(uid string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.UID == uid {
			return a, nil
		}
	}
	return nil, nil
}

type fakeAuditRepo struct {
	admin    []*models.AuditLogEntry
	family   []models.FamilyActivityEntry
	sealed   map[string][]*models.SealedAuditEntry
	accesses []models.SealedAuditAccess
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{sealed: make(map[string][]*models.SealedAuditEntry)}
}

func (r *fakeAuditRepo) RecordAdmin(entry *models.AuditLogEntry) error {
	entry.CreatedAt = time.Now()
	r.admin = append(r.admin, entry)
	return nil
}

func (r *fakeAuditRepo) RecordFamilyActivity(familyID, action, details string) error {
	r.family = append(r.family, models.FamilyActivityEntry{
		FamilyID: familyID, Action: action, Details: details, CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeAuditRepo) ListSealedWithAccessLog(familyID, agentID, reason string) ([]*models.SealedAuditEntry, error) {
	entries := r.sealed[familyID]
	for _, e := range entries {
		access := models.SealedAuditAccess{EntryID: e.ID, AgentID: agentID, Reason: reason, AccessedAt: time.Now()}
		r.accesses = append(r.accesses, access)
		e.AccessLog = append(e.AccessLog, access)
	}
	return entries, nil
}

type fakeStealth struct {
	calls []stealth_client.ActivationRequest
}

func (s *fakeStealth) Activate(ctx context.Context, req stealth_client.ActivationRequest) error {
	s.calls = append(s.calls, req)
	return nil
}

type fakeSealer struct{}

func (fakeSealer) Seal(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

// testEnv bundles the fakes behind one constructed service.
type testEnv struct {
	svc      *EscapeService
	tickets  *fakeTicketRepo
	families *fakeFamilyRepo
	devices  *fakeDeviceRepo
	accounts *fakeAccountRepo
	audit    *fakeAuditRepo
	stealth  *fakeStealth
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tickets:  newFakeTicketRepo(),
		families: newFakeFamilyRepo(),
		devices:  newFakeDeviceRepo(),
		accounts: newFakeAccountRepo(),
		audit:    newFakeAuditRepo(),
		stealth:  &fakeStealth{},
	}
	env.svc = NewEscapeService(
		env.tickets,
		env.families,
		env.devices,
		env.accounts,
		env.audit,
		env.stealth,
		fakeSealer{},
		DefaultVerificationMinimum,
		zap.NewNop(),
	)
	return env
}

func verifiedTicket(id, ticketType string, verifiedChecks int) *models.SafetyTicket {
	t := &models.SafetyTicket{
		ID:     id,
		Status: models.TicketStatusInProgress,
		Type:   ticketType,
	}
	checks := []*models.VerificationCheck{
		&t.Verification.Phone,
		&t.Verification.IDDocument,
		&t.Verification.AccountMatch,
		&t.Verification.SecurityQuestions,
	}
	for i := 0; i < verifiedChecks && i < len(checks); i++ {
		checks[i].Verified = true
	}
	return t
}

func twoGuardianFamily(id string) *models.Family {
	return &models.Family{
		ID:           id,
		GuardianUIDs: []string{"p1", "p2"},
		Guardians: []models.Guardian{
			{FamilyID: id, UID: "p1", Email: "p1@x.com", DisplayName: "Parent One", Role: "guardian"},
			{FamilyID: id, UID: "p2", Email: "p2@x.com", DisplayName: "Parent Two", Role: "guardian"},
		},
		Children: []models.Child{
			{FamilyID: id, UID: "c1", Name: "Sam Smith"},
		},
	}
}

var testActor = Actor{AgentID: "agent-1", AgentEmail: "agent@safetydesk.test", IPAddress: "10.0.0.1"}
