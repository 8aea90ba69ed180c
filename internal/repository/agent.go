package repository

import (
	"database/sql"

	"safetydesk/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AgentRepository defines persistence operations on staff accounts.
type AgentRepository interface {
	Create(agent *models.Agent) error
	GetByUsername(username string) (*models.Agent, error)
	Count() (int, error)
}

type agentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAgentRepository creates a new agent repository.
func NewAgentRepository(db *sqlx.DB, logger *zap.Logger) AgentRepository {
	return &agentRepository{db: db, logger: logger}
}

func (r *agentRepository) Create(agent *models.Agent) error {
	query := `
		INSERT INTO agents (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(query, agent.ID, agent.Username, agent.Email, agent.PasswordHash, agent.Role).Scan(&agent.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create agent", zap.String("username", agent.Username), zap.Error(err))
		return err
	}

	return nil
}

func (r *agentRepository) GetByUsername(username string) (*models.Agent, error) {
	var agent models.Agent
	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM agents
		WHERE username = $1
	`

	err := r.db.Get(&agent, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get agent by username", zap.Error(err))
		return nil, err
	}

	return &agent, nil
}

func (r *agentRepository) Count() (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM agents`)
	if err != nil {
		return 0, err
	}
	return count, nil
}
