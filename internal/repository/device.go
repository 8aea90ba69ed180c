package repository

import (
	"safetydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// DeviceRepository defines persistence operations on family devices.
type DeviceRepository interface {
	ListByFamily(familyID string) ([]*models.Device, error)
	// UnenrollBatch marks the given devices unenrolled in one
	// transaction. Missing, duplicate and already-unenrolled ids are
	// skipped, never errors; unenrolled + skipped == len(deviceIDs).
	UnenrollBatch(familyID string, deviceIDs []string) (unenrolled int, skipped int, err error)
}

type deviceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(db *sqlx.DB, logger *zap.Logger) DeviceRepository {
	return &deviceRepository{db: db, logger: logger}
}

func (r *deviceRepository) ListByFamily(familyID string) ([]*models.Device, error) {
	var devices []*models.Device
	query := `
		SELECT id, family_id, child_uid, status, created_at, updated_at
		FROM devices
		WHERE family_id = $1
		ORDER BY id
	`

	err := r.db.Select(&devices, query, familyID)
	if err != nil {
		r.logger.Error("Failed to list devices", zap.String("family_id", familyID), zap.Error(err))
		return nil, err
	}

	return devices, nil
}

func (r *deviceRepository) UnenrollBatch(familyID string, deviceIDs []string) (int, int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	// Lock the enrollable targets, then flip them in one statement.
	// Anything not returned here (wrong family, unknown id, already
	// unenrolled, duplicate) counts as skipped.
	var targets []string
	err = tx.Select(&targets, `
		SELECT id FROM devices
		WHERE family_id = $1 AND id = ANY($2) AND status <> $3
		FOR UPDATE
	`, familyID, pq.Array(deviceIDs), models.DeviceStatusUnenrolled)
	if err != nil {
		r.logger.Error("Failed to lock devices for unenroll", zap.String("family_id", familyID), zap.Error(err))
		return 0, 0, err
	}

	if len(targets) > 0 {
		_, err = tx.Exec(`
			UPDATE devices
			SET status = $1, updated_at = CURRENT_TIMESTAMP
			WHERE family_id = $2 AND id = ANY($3)
		`, models.DeviceStatusUnenrolled, familyID, pq.Array(targets))
		if err != nil {
			r.logger.Error("Failed to unenroll devices", zap.String("family_id", familyID), zap.Error(err))
			return 0, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}

	unenrolled := len(targets)
	return unenrolled, len(deviceIDs) - unenrolled, nil
}
