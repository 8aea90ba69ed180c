package repository

import (
	"database/sql"
	"errors"

	"safetydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	// ErrLastGuardian is returned when a sever would leave the family
	// with no guardians. At least one guardian must always remain.
	ErrLastGuardian = errors.New("cannot sever the last remaining guardian")
	// ErrGuardianExists is returned when the petitioner is already a
	// guardian at commit time.
	ErrGuardianExists = errors.New("guardian already present on family")
)

// FamilyRepository defines persistence operations on families and their
// guardian membership. The destructive mutations run inside a single
// transaction and re-check their preconditions against locked rows, so a
// race between the caller's initial read and the write cannot produce a
// partial sever or a duplicate grant.
type FamilyRepository interface {
	GetByID(id string) (*models.Family, error)
	// SeverGuardian removes uid from guardian_uids and the matching
	// display record atomically. Returns false without writing when the
	// uid is already absent; ErrLastGuardian when only one guardian
	// remains.
	SeverGuardian(familyID, uid string) (bool, error)
	// DisableLocation sets the location-disabled and redaction flags.
	// Returns false without writing when already disabled.
	DisableLocation(familyID string) (bool, error)
	// GrantGuardian adds g to the family and promotes the matching
	// account to guardian, in one transaction. ErrGuardianExists when
	// the uid is already a member at commit time.
	GrantGuardian(familyID string, g models.Guardian) error
}

type familyRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewFamilyRepository creates a new family repository.
func NewFamilyRepository(db *sqlx.DB, logger *zap.Logger) FamilyRepository {
	return &familyRepository{db: db, logger: logger}
}

func (r *familyRepository) GetByID(id string) (*models.Family, error) {
	var family models.Family
	query := `
		SELECT id, guardian_uids, safety_location_disabled, location_redacted, created_at, updated_at
		FROM families
		WHERE id = $1
	`

	err := r.db.Get(&family, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get family by ID", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	err = r.db.Select(&family.Guardians, `
		SELECT family_id, uid, email, display_name, role
		FROM family_guardians
		WHERE family_id = $1
		ORDER BY uid
	`, id)
	if err != nil {
		r.logger.Error("Failed to load family guardians", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	err = r.db.Select(&family.Children, `
		SELECT family_id, uid, name
		FROM family_children
		WHERE family_id = $1
		ORDER BY uid
	`, id)
	if err != nil {
		r.logger.Error("Failed to load family children", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &family, nil
}

func (r *familyRepository) SeverGuardian(familyID, uid string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var uids pq.StringArray
	err = tx.Get(&uids, `SELECT guardian_uids FROM families WHERE id = $1 FOR UPDATE`, familyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, sql.ErrNoRows
		}
		r.logger.Error("Failed to lock family for sever", zap.String("family_id", familyID), zap.Error(err))
		return false, err
	}

	remaining := make(pq.StringArray, 0, len(uids))
	found := false
	for _, u := range uids {
		if u == uid {
			found = true
			continue
		}
		remaining = append(remaining, u)
	}

	if !found {
		// Already severed; nothing to write.
		return false, nil
	}
	if len(remaining) == 0 {
		return false, ErrLastGuardian
	}

	_, err = tx.Exec(`
		UPDATE families
		SET guardian_uids = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, remaining, familyID)
	if err != nil {
		r.logger.Error("Failed to update guardian_uids", zap.String("family_id", familyID), zap.Error(err))
		return false, err
	}

	// Keep the denormalized display records in lock-step.
	_, err = tx.Exec(`DELETE FROM family_guardians WHERE family_id = $1 AND uid = $2`, familyID, uid)
	if err != nil {
		r.logger.Error("Failed to delete guardian record", zap.String("family_id", familyID), zap.String("uid", uid), zap.Error(err))
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (r *familyRepository) DisableLocation(familyID string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var disabled bool
	err = tx.Get(&disabled, `SELECT safety_location_disabled FROM families WHERE id = $1 FOR UPDATE`, familyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, sql.ErrNoRows
		}
		r.logger.Error("Failed to lock family for location disable", zap.String("family_id", familyID), zap.Error(err))
		return false, err
	}

	if disabled {
		return false, nil
	}

	_, err = tx.Exec(`
		UPDATE families
		SET safety_location_disabled = TRUE, location_redacted = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, familyID)
	if err != nil {
		r.logger.Error("Failed to disable location features", zap.String("family_id", familyID), zap.Error(err))
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (r *familyRepository) GrantGuardian(familyID string, g models.Guardian) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var uids pq.StringArray
	err = tx.Get(&uids, `SELECT guardian_uids FROM families WHERE id = $1 FOR UPDATE`, familyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows
		}
		r.logger.Error("Failed to lock family for grant", zap.String("family_id", familyID), zap.Error(err))
		return err
	}

	// Re-check inside the transaction: a concurrent grant for the same
	// petitioner must lose here, not produce a duplicate.
	for _, u := range uids {
		if u == g.UID {
			return ErrGuardianExists
		}
	}

	_, err = tx.Exec(`
		UPDATE families
		SET guardian_uids = array_append(guardian_uids, $1), updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, g.UID, familyID)
	if err != nil {
		r.logger.Error("Failed to append guardian uid", zap.String("family_id", familyID), zap.Error(err))
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO family_guardians (family_id, uid, email, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
	`, familyID, g.UID, g.Email, g.DisplayName, g.Role)
	if err != nil {
		r.logger.Error("Failed to insert guardian record", zap.String("family_id", familyID), zap.String("uid", g.UID), zap.Error(err))
		return err
	}

	_, err = tx.Exec(`
		UPDATE accounts
		SET role = 'guardian', family_id = $1
		WHERE uid = $2
	`, familyID, g.UID)
	if err != nil {
		r.logger.Error("Failed to promote petitioner account", zap.String("uid", g.UID), zap.Error(err))
		return err
	}

	return tx.Commit()
}
