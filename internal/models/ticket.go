package models

import "time"

// Ticket status values
const (
	TicketStatusPending    = "pending"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusEscalated  = "escalated"
	TicketStatusDenied     = "denied"
)

// Ticket types
const (
	TicketTypeGeneric             = "generic"
	TicketTypeLegalParentPetition = "legal_parent_petition"
)

// VerificationCheck is one of the four identity checks on a safety ticket.
type VerificationCheck struct {
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	VerifiedBy *string    `json:"verified_by,omitempty"`
}

// VerificationRecord holds the four fixed identity checks. The completed
// count across these is the only gating signal for escape actions.
type VerificationRecord struct {
	Phone             VerificationCheck `json:"phone"`
	IDDocument        VerificationCheck `json:"id_document"`
	AccountMatch      VerificationCheck `json:"account_match"`
	SecurityQuestions VerificationCheck `json:"security_questions"`
}

// SafetyTicket represents one support request, possibly tied to a
// family-escape scenario. Tickets are never deleted, only moved to a
// terminal status.
type SafetyTicket struct {
	ID           string             `db:"id" json:"id"`
	Status       string             `db:"status" json:"status"`
	Type         string             `db:"type" json:"type"`
	UserID       *string            `db:"user_id" json:"user_id,omitempty"` // nil for anonymous tickets
	Verification VerificationRecord `db:"-" json:"verification"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}

// TicketHistoryEntry is one record in a ticket's append-only action log.
type TicketHistoryEntry struct {
	ID        int64     `db:"id" json:"id"`
	TicketID  string    `db:"ticket_id" json:"ticket_id"`
	Action    string    `db:"action" json:"action"`
	AgentID   string    `db:"agent_id" json:"agent_id"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TicketNote is an agent-authored internal note, stored encrypted and
// never exposed to family members.
type TicketNote struct {
	ID            int64     `db:"id" json:"id"`
	TicketID      string    `db:"ticket_id" json:"ticket_id"`
	AgentID       string    `db:"agent_id" json:"agent_id"`
	BodyEncrypted string    `db:"body_encrypted" json:"-"`
	Body          string    `db:"-" json:"body,omitempty"` // decrypted for agent views only
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
