package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Agent roles
const (
	RoleAdmin      = "admin"
	RoleSafetyTeam = "safety_team"
	RoleCompliance = "compliance"
)

// Agent is a support/compliance staff account.
type Agent struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Account is a product user (guardian, child or petitioner).
type Account struct {
	UID         string    `db:"uid" json:"uid"`
	Email       string    `db:"email" json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Role        string    `db:"role" json:"role"` // "guardian" or "child"
	FamilyID    *string   `db:"family_id" json:"family_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Claims defines the structure of the JWT claims for agent sessions.
type Claims struct {
	AgentID  string `json:"agent_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
