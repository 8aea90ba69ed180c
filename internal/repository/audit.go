package repository

import (
	"safetydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// AuditRepository defines the two write trails and the sealed read path.
// The admin trail is write-only from the executors' perspective and never
// family-readable; the family trail is written by exactly one action
// (the legal-parent grant, with a redacted entry).
type AuditRepository interface {
	RecordAdmin(entry *models.AuditLogEntry) error
	RecordFamilyActivity(familyID, action, details string) error
	// ListSealedWithAccessLog returns all sealed entries for a family
	// and, in the same transaction, appends one access-log record to
	// every returned entry. Reads are never silent.
	ListSealedWithAccessLog(familyID, agentID, reason string) ([]*models.SealedAuditEntry, error)
}

type auditRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sqlx.DB, logger *zap.Logger) AuditRepository {
	return &auditRepository{db: db, logger: logger}
}

func (r *auditRepository) RecordAdmin(entry *models.AuditLogEntry) error {
	query := `
		INSERT INTO admin_audit_log (id, action, resource_type, resource_id, agent_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(query, entry.ID, entry.Action, entry.ResourceType, entry.ResourceID, entry.AgentID, []byte(entry.Metadata)).Scan(&entry.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to record admin audit entry", zap.String("action", entry.Action), zap.Error(err))
		return err
	}

	return nil
}

func (r *auditRepository) RecordFamilyActivity(familyID, action, details string) error {
	query := `
		INSERT INTO family_activity (family_id, action, details)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(query, familyID, action, details)
	if err != nil {
		r.logger.Error("Failed to record family activity", zap.String("family_id", familyID), zap.String("action", action), zap.Error(err))
		return err
	}

	return nil
}

func (r *auditRepository) ListSealedWithAccessLog(familyID, agentID, reason string) ([]*models.SealedAuditEntry, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var entries []*models.SealedAuditEntry
	err = tx.Select(&entries, `
		SELECT id, family_id, action, resource_type, resource_id, agent_id, metadata, sealed_at
		FROM sealed_audit_entries
		WHERE family_id = $1
		ORDER BY sealed_at ASC
	`, familyID)
	if err != nil {
		r.logger.Error("Failed to list sealed audit entries", zap.String("family_id", familyID), zap.Error(err))
		return nil, err
	}

	// One access-log record per disclosed entry, committed with the read.
	for _, entry := range entries {
		_, err = tx.Exec(`
			INSERT INTO sealed_audit_access_log (entry_id, agent_id, reason)
			VALUES ($1, $2, $3)
		`, entry.ID, agentID, reason)
		if err != nil {
			r.logger.Error("Failed to append sealed access log", zap.String("entry_id", entry.ID), zap.Error(err))
			return nil, err
		}
	}

	if len(entries) > 0 {
		entryIDs := make([]string, len(entries))
		for i, entry := range entries {
			entryIDs[i] = entry.ID
		}

		var accesses []models.SealedAuditAccess
		err = tx.Select(&accesses, `
			SELECT id, entry_id, agent_id, reason, accessed_at
			FROM sealed_audit_access_log
			WHERE entry_id = ANY($1)
			ORDER BY accessed_at ASC, id ASC
		`, pq.Array(entryIDs))
		if err != nil {
			r.logger.Error("Failed to load sealed access logs", zap.String("family_id", familyID), zap.Error(err))
			return nil, err
		}

		byEntry := make(map[string][]models.SealedAuditAccess, len(entries))
		for _, a := range accesses {
			byEntry[a.EntryID] = append(byEntry[a.EntryID], a)
		}
		for _, entry := range entries {
			entry.AccessLog = byEntry[entry.ID]
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return entries, nil
}
