package service

import (
	"context"
	"encoding/json"
	"testing"

	"safetydesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPetition(env *testEnv) {
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeLegalParentPetition, 2)
	env.families.families["F1"] = twoGuardianFamily("F1")
	env.accounts.accounts["legal@x.com"] = &models.Account{
		UID: "p3", Email: "legal@x.com", DisplayName: "Jordan Reyes", Role: "guardian",
	}
}

func grantInput() GrantLegalParentInput {
	return GrantLegalParentInput{
		TicketID:         "T1",
		FamilyID:         "F1",
		PetitionerEmail:  "legal@x.com",
		ClaimedChildName: "Sam",
		Reason:           "court order 22-CV-1041",
	}
}

func TestGrantLegalParentAccess(t *testing.T) {
	env := newTestEnv()
	seedPetition(env)

	result, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, grantInput())
	require.NoError(t, err)
	assert.Equal(t, "p3", result.PetitionerUID)

	family := env.families.families["F1"]
	assert.True(t, family.HasGuardian("p3"))
	assert.Len(t, family.GuardianUIDs, 3)
	assert.Equal(t, models.TicketStatusResolved, env.tickets.tickets["T1"].Status)

	require.Len(t, env.audit.admin, 1)
	assert.Equal(t, ActionGrantLegalParent, env.audit.admin[0].Action)
	var meta grantAudit
	require.NoError(t, json.Unmarshal(env.audit.admin[0].Metadata, &meta))
	assert.Equal(t, "p3", meta.PetitionerUID)
	assert.True(t, meta.ChildNameMatch)
}

func TestGrantLegalParentAccessFamilyNoticeIsRedacted(t *testing.T) {
	env := newTestEnv()
	seedPetition(env)

	_, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, grantInput())
	require.NoError(t, err)

	require.Len(t, env.audit.family, 1)
	notice := env.audit.family[0]
	assert.Equal(t, "guardian_added", notice.Action)
	assert.NotContains(t, notice.Details, "legal@x.com")
	assert.NotContains(t, notice.Details, "Jordan")
	assert.NotContains(t, notice.Details, "Reyes")
	assert.NotContains(t, notice.Details, "p3")
}

func TestGrantLegalParentAccessAlreadyGuardian(t *testing.T) {
	env := newTestEnv()
	seedPetition(env)

	_, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, grantInput())
	require.NoError(t, err)

	// The grant resolved the ticket, so a second call needs a fresh one.
	env.tickets.tickets["T2"] = verifiedTicket("T2", models.TicketTypeLegalParentPetition, 2)
	input := grantInput()
	input.TicketID = "T2"

	_, err = env.svc.GrantLegalParentAccess(context.Background(), testActor, input)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindAlreadyExists, svcErr.Kind)
	assert.Len(t, env.families.families["F1"].GuardianUIDs, 3)
}

func TestGrantLegalParentAccessPreconditions(t *testing.T) {
	t.Run("wrong ticket type", func(t *testing.T) {
		env := newTestEnv()
		seedPetition(env)
		env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)

		_, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, grantInput())
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindFailedPrecondition, svcErr.Kind)
	})

	t.Run("resolved petition", func(t *testing.T) {
		env := newTestEnv()
		seedPetition(env)
		env.tickets.tickets["T1"].Status = models.TicketStatusResolved

		_, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, grantInput())
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindFailedPrecondition, svcErr.Kind)
	})

	t.Run("family has no children", func(t *testing.T) {
		env := newTestEnv()
		seedPetition(env)
		env.families.families["F1"].Children = nil

		_, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, grantInput())
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindFailedPrecondition, svcErr.Kind)
	})

	t.Run("petitioner has no account", func(t *testing.T) {
		env := newTestEnv()
		seedPetition(env)
		input := grantInput()
		input.PetitionerEmail = "stranger@x.com"

		_, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, input)
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, KindNotFound, svcErr.Kind)
		assert.Empty(t, env.audit.admin)
		assert.Empty(t, env.audit.family)
	})
}

func TestGrantLegalParentAccessChildNameMismatchDoesNotBlock(t *testing.T) {
	env := newTestEnv()
	seedPetition(env)
	input := grantInput()
	input.ClaimedChildName = "Taylor Brown"

	_, err := env.svc.GrantLegalParentAccess(context.Background(), testActor, input)
	require.NoError(t, err)
	assert.True(t, env.families.families["F1"].HasGuardian("p3"))

	var meta grantAudit
	require.NoError(t, json.Unmarshal(env.audit.admin[0].Metadata, &meta))
	assert.False(t, meta.ChildNameMatch)
}

func TestChildNameMatches(t *testing.T) {
	children := []models.Child{{Name: "Sam Smith"}}

	tests := []struct {
		claimed string
		want    bool
	}{
		{"Sam Smith", true},
		{"sam smith", true},
		{"Sam", true},
		{"  Sam Smith Jr  ", true},
		{"Taylor", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, childNameMatches(tt.claimed, children), "claimed=%q", tt.claimed)
	}
}

func TestDenyLegalParentPetition(t *testing.T) {
	env := newTestEnv()
	seedPetition(env)

	result, err := env.svc.DenyLegalParentPetition(context.Background(), testActor, DenyPetitionInput{
		TicketID:     "T1",
		DenialReason: "documents did not establish parentage",
		Reason:       "legal review complete",
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, models.TicketStatusDenied, env.tickets.tickets["T1"].Status)

	// No grant happened and nothing reached the family trail.
	assert.False(t, env.families.families["F1"].HasGuardian("p3"))
	assert.Empty(t, env.audit.family)

	require.Len(t, env.audit.admin, 1)
	assert.Equal(t, ActionDenyPetition, env.audit.admin[0].Action)
}

func TestDenyLegalParentPetitionIdempotent(t *testing.T) {
	env := newTestEnv()
	seedPetition(env)

	input := DenyPetitionInput{TicketID: "T1", DenialReason: "insufficient documents", Reason: "review"}
	first, err := env.svc.DenyLegalParentPetition(context.Background(), testActor, input)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := env.svc.DenyLegalParentPetition(context.Background(), testActor, input)
	require.NoError(t, err)
	assert.False(t, second.Changed)

	// Both attempts audited, but only the first annotated the ticket.
	assert.Len(t, env.audit.admin, 2)
	assert.Len(t, env.tickets.history, 1)
}

func TestDenyLegalParentPetitionWrongType(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)

	_, err := env.svc.DenyLegalParentPetition(context.Background(), testActor, DenyPetitionInput{
		TicketID: "T1", DenialReason: "x", Reason: "x",
	})
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindFailedPrecondition, svcErr.Kind)
}
