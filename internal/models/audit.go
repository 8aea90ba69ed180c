package models

import (
	"encoding/json"
	"time"
)

// AuditLogEntry is one record in the admin-only audit trail. Write-only
// from the executors' perspective; never readable by family members.
type AuditLogEntry struct {
	ID           string          `db:"id" json:"id"`
	Action       string          `db:"action" json:"action"`
	ResourceType string          `db:"resource_type" json:"resource_type"`
	ResourceID   string          `db:"resource_id" json:"resource_id"`
	AgentID      string          `db:"agent_id" json:"agent_id"`
	Metadata     json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// FamilyActivityEntry is one record in the family-visible activity trail.
// Stealth actions must never write here.
type FamilyActivityEntry struct {
	ID        int64     `db:"id" json:"id"`
	FamilyID  string    `db:"family_id" json:"family_id"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SealedAuditEntry is an immutable copy of a pre-escape audit record.
// Every compliance read of an entry appends to its access log.
type SealedAuditEntry struct {
	ID           string          `db:"id" json:"id"`
	FamilyID     string          `db:"family_id" json:"family_id"`
	Action       string          `db:"action" json:"action"`
	ResourceType string          `db:"resource_type" json:"resource_type"`
	ResourceID   string          `db:"resource_id" json:"resource_id"`
	AgentID      string          `db:"agent_id" json:"agent_id"`
	Metadata     json.RawMessage `db:"metadata" json:"metadata"`
	SealedAt     time.Time       `db:"sealed_at" json:"sealed_at"`

	AccessLog []SealedAuditAccess `db:"-" json:"access_log,omitempty"`
}

// SealedAuditAccess records one disclosure of a sealed entry.
type SealedAuditAccess struct {
	ID         int64     `db:"id" json:"id"`
	EntryID    string    `db:"entry_id" json:"entry_id"`
	AgentID    string    `db:"agent_id" json:"agent_id"`
	Reason     string    `db:"reason" json:"reason"`
	AccessedAt time.Time `db:"accessed_at" json:"accessed_at"`
}
