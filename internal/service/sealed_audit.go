package service

import (
	"context"
	"strings"

	"safetydesk/internal/models"
)

// ListSealedAudit discloses a family's sealed audit entries to a
// legal/compliance caller. Reads are never silent: one access-log record
// is appended per returned entry in the same transaction as the read, and
// the attempt itself is recorded on the admin trail even when zero entries
// exist.
func (s *EscapeService) ListSealedAudit(ctx context.Context, actor Actor, familyID, authorizationReason string) ([]*models.SealedAuditEntry, error) {
	if strings.TrimSpace(authorizationReason) == "" {
		return nil, invalidArgument("An authorization reason is required")
	}

	entries, err := s.audit.ListSealedWithAccessLog(familyID, actor.AgentID, authorizationReason)
	if err != nil {
		return nil, internalError(err)
	}

	s.recordAudit(actor, newSealedAccessAudit(familyID, actor, authorizationReason, len(entries)))

	return entries, nil
}
