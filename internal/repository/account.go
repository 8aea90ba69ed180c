package repository

import (
	"database/sql"

	"safetydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AccountRepository defines read access to product user accounts.
type AccountRepository interface {
	GetByEmail(email string) (*models.Account, error)
	GetByUID(uid string) (*models.Account, error)
}

type accountRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *sqlx.DB, logger *zap.Logger) AccountRepository {
	return &accountRepository{db: db, logger: logger}
}

func (r *accountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	query := `
		SELECT uid, email, display_name, role, family_id, created_at
		FROM accounts
		WHERE email = $1
	`

	err := r.db.Get(&account, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get account by email", zap.Error(err))
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) GetByUID(uid string) (*models.Account, error) {
	var account models.Account
	query := `
		SELECT uid, email, display_name, role, family_id, created_at
		FROM accounts
		WHERE uid = $1
	`

	err := r.db.Get(&account, query, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get account by uid", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}

	return &account, nil
}
