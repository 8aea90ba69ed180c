package repository

import (
	"database/sql"
	"errors"
	"time"

	"safetydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TicketRepository defines the persistence operations on safety tickets.
// History is an append-only log: concurrent appends insert independent
// rows and never overwrite each other.
type TicketRepository interface {
	GetByID(id string) (*models.SafetyTicket, error)
	AppendHistory(ticketID, action, agentID, details string) error
	AddInternalNote(ticketID, agentID, bodyEncrypted string) error
	ListNotes(ticketID string) ([]*models.TicketNote, error)
	SetVerificationCheck(ticketID, check string, verified bool, agentID string) error
	UpdateStatus(id, status string) error
	// MarkDenied sets the ticket to denied with an encrypted internal
	// reason. Returns false without writing when already denied.
	MarkDenied(ticketID, reasonEncrypted string) (bool, error)
}

type ticketRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sqlx.DB, logger *zap.Logger) TicketRepository {
	return &ticketRepository{db: db, logger: logger}
}

// ticketRow is the flat scan target; the four verification checks are
// stored as explicit column triples, not dynamic field names.
type ticketRow struct {
	ID        string    `db:"id"`
	Status    string    `db:"status"`
	Type      string    `db:"type"`
	UserID    *string   `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	PhoneVerified   bool       `db:"phone_verified"`
	PhoneVerifiedAt *time.Time `db:"phone_verified_at"`
	PhoneVerifiedBy *string    `db:"phone_verified_by"`
	IDDocVerified   bool       `db:"id_document_verified"`
	IDDocVerifiedAt *time.Time `db:"id_document_verified_at"`
	IDDocVerifiedBy *string    `db:"id_document_verified_by"`
	AcctVerified    bool       `db:"account_match_verified"`
	AcctVerifiedAt  *time.Time `db:"account_match_verified_at"`
	AcctVerifiedBy  *string    `db:"account_match_verified_by"`
	SecQVerified    bool       `db:"security_questions_verified"`
	SecQVerifiedAt  *time.Time `db:"security_questions_verified_at"`
	SecQVerifiedBy  *string    `db:"security_questions_verified_by"`
}

const ticketColumns = `id, status, type, user_id, created_at, updated_at,
	phone_verified, phone_verified_at, phone_verified_by,
	id_document_verified, id_document_verified_at, id_document_verified_by,
	account_match_verified, account_match_verified_at, account_match_verified_by,
	security_questions_verified, security_questions_verified_at, security_questions_verified_by`

func (row *ticketRow) toModel() *models.SafetyTicket {
	return &models.SafetyTicket{
		ID:        row.ID,
		Status:    row.Status,
		Type:      row.Type,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Verification: models.VerificationRecord{
			Phone:             models.VerificationCheck{Verified: row.PhoneVerified, VerifiedAt: row.PhoneVerifiedAt, VerifiedBy: row.PhoneVerifiedBy},
			IDDocument:        models.VerificationCheck{Verified: row.IDDocVerified, VerifiedAt: row.IDDocVerifiedAt, VerifiedBy: row.IDDocVerifiedBy},
			AccountMatch:      models.VerificationCheck{Verified: row.AcctVerified, VerifiedAt: row.AcctVerifiedAt, VerifiedBy: row.AcctVerifiedBy},
			SecurityQuestions: models.VerificationCheck{Verified: row.SecQVerified, VerifiedAt: row.SecQVerifiedAt, VerifiedBy: row.SecQVerifiedBy},
		},
	}
}

func (r *ticketRepository) GetByID(id string) (*models.SafetyTicket, error) {
	var row ticketRow
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	err := r.db.Get(&row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get ticket by ID", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return row.toModel(), nil
}

func (r *ticketRepository) AppendHistory(ticketID, action, agentID, details string) error {
	query := `
		INSERT INTO ticket_history (ticket_id, action, agent_id, details)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(query, ticketID, action, agentID, details)
	if err != nil {
		r.logger.Error("Failed to append ticket history", zap.String("ticket_id", ticketID), zap.String("action", action), zap.Error(err))
		return err
	}

	return nil
}

func (r *ticketRepository) AddInternalNote(ticketID, agentID, bodyEncrypted string) error {
	query := `
		INSERT INTO ticket_notes (ticket_id, agent_id, body_encrypted)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(query, ticketID, agentID, bodyEncrypted)
	if err != nil {
		r.logger.Error("Failed to add internal note", zap.String("ticket_id", ticketID), zap.Error(err))
		return err
	}

	return nil
}

func (r *ticketRepository) ListNotes(ticketID string) ([]*models.TicketNote, error) {
	var notes []*models.TicketNote
	query := `
		SELECT id, ticket_id, agent_id, body_encrypted, created_at
		FROM ticket_notes
		WHERE ticket_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.Select(&notes, query, ticketID)
	if err != nil {
		r.logger.Error("Failed to list internal notes", zap.String("ticket_id", ticketID), zap.Error(err))
		return nil, err
	}

	return notes, nil
}

// verificationColumns maps a check name to its column triple. Fixed set;
// anything else is rejected before SQL is built.
var verificationColumns = map[string][3]string{
	"phone":              {"phone_verified", "phone_verified_at", "phone_verified_by"},
	"id_document":        {"id_document_verified", "id_document_verified_at", "id_document_verified_by"},
	"account_match":      {"account_match_verified", "account_match_verified_at", "account_match_verified_by"},
	"security_questions": {"security_questions_verified", "security_questions_verified_at", "security_questions_verified_by"},
}

// ErrUnknownCheck is returned for a verification check name outside the
// fixed four.
var ErrUnknownCheck = errors.New("unknown verification check")

func (r *ticketRepository) SetVerificationCheck(ticketID, check string, verified bool, agentID string) error {
	cols, ok := verificationColumns[check]
	if !ok {
		return ErrUnknownCheck
	}

	query := `
		UPDATE tickets
		SET ` + cols[0] + ` = $1, ` + cols[1] + ` = $2, ` + cols[2] + ` = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`

	var verifiedAt *time.Time
	var verifiedBy *string
	if verified {
		now := time.Now()
		verifiedAt = &now
		verifiedBy = &agentID
	}

	result, err := r.db.Exec(query, verified, verifiedAt, verifiedBy, ticketID)
	if err != nil {
		r.logger.Error("Failed to set verification check", zap.String("ticket_id", ticketID), zap.String("check", check), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *ticketRepository) UpdateStatus(id, status string) error {
	query := `
		UPDATE tickets
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`

	result, err := r.db.Exec(query, status, id)
	if err != nil {
		r.logger.Error("Failed to update ticket status", zap.String("id", id), zap.String("status", status), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *ticketRepository) MarkDenied(ticketID, reasonEncrypted string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var status string
	err = tx.Get(&status, `SELECT status FROM tickets WHERE id = $1 FOR UPDATE`, ticketID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, sql.ErrNoRows
		}
		r.logger.Error("Failed to lock ticket for denial", zap.String("ticket_id", ticketID), zap.Error(err))
		return false, err
	}

	if status == models.TicketStatusDenied {
		return false, nil
	}

	_, err = tx.Exec(`
		UPDATE tickets
		SET status = $1, denial_reason_encrypted = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, models.TicketStatusDenied, reasonEncrypted, ticketID)
	if err != nil {
		r.logger.Error("Failed to mark ticket denied", zap.String("ticket_id", ticketID), zap.Error(err))
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}
