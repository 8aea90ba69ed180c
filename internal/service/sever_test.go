package service

import (
	"context"
	"testing"

	"safetydesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func severInput() SeverGuardianInput {
	return SeverGuardianInput{
		TicketID:           "T1",
		FamilyID:           "F1",
		GuardianUID:        "p2",
		ConfirmationPhrase: "SEVER p2@x.com",
		Reason:             "victim escape request",
	}
}

func TestSeverGuardianAccess(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)
	env.families.families["F1"] = twoGuardianFamily("F1")

	result, err := env.svc.SeverGuardianAccess(context.Background(), testActor, severInput())
	require.NoError(t, err)
	assert.True(t, result.Changed)

	family := env.families.families["F1"]
	assert.Equal(t, []string{"p1"}, []string(family.GuardianUIDs))
	require.Len(t, family.Guardians, 1)
	assert.Equal(t, "p1", family.Guardians[0].UID)

	// One admin audit entry, nothing on the family-visible trail.
	require.Len(t, env.audit.admin, 1)
	assert.Equal(t, ActionSeverGuardian, env.audit.admin[0].Action)
	assert.Empty(t, env.audit.family)

	// Ticket annotated.
	require.Len(t, env.tickets.history, 1)
	assert.Equal(t, ActionSeverGuardian, env.tickets.history[0].Action)
	assert.Len(t, env.tickets.notes, 1)

	// Stealth window opened for the severed guardian.
	require.Len(t, env.stealth.calls, 1)
	assert.Equal(t, []string{"p2"}, env.stealth.calls[0].AffectedUserIDs)
}

func TestSeverGuardianAccessIdempotent(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)
	env.families.families["F1"] = twoGuardianFamily("F1")

	first, err := env.svc.SeverGuardianAccess(context.Background(), testActor, severInput())
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := env.svc.SeverGuardianAccess(context.Background(), testActor, severInput())
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, "Access already severed", second.Message)

	// One mutation, two audited outcomes, one stealth activation.
	assert.Equal(t, []string{"p1"}, []string(env.families.families["F1"].GuardianUIDs))
	assert.Len(t, env.audit.admin, 2)
	assert.Len(t, env.tickets.history, 1)
	assert.Len(t, env.stealth.calls, 1)
	assert.Empty(t, env.audit.family)
}

func TestSeverGuardianAccessConfirmationPhrase(t *testing.T) {
	phrases := []string{
		"sever p2@x.com",
		"SEVER P2@x.com",
		" SEVER p2@x.com",
		"SEVER p2@x.com ",
		"SEVER p1@x.com",
		"",
	}

	for _, phrase := range phrases {
		env := newTestEnv()
		env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)
		env.families.families["F1"] = twoGuardianFamily("F1")

		input := severInput()
		input.ConfirmationPhrase = phrase

		_, err := env.svc.SeverGuardianAccess(context.Background(), testActor, input)
		var svcErr *Error
		require.ErrorAs(t, err, &svcErr, "phrase %q", phrase)
		assert.Equal(t, KindInvalidArgument, svcErr.Kind, "phrase %q", phrase)

		// No partial effect of any kind.
		assert.Equal(t, []string{"p1", "p2"}, []string(env.families.families["F1"].GuardianUIDs))
		assert.Empty(t, env.audit.admin)
		assert.Empty(t, env.tickets.history)
		assert.Empty(t, env.stealth.calls)
	}
}

func TestSeverGuardianAccessBelowThreshold(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 1)
	env.families.families["F1"] = twoGuardianFamily("F1")

	_, err := env.svc.SeverGuardianAccess(context.Background(), testActor, severInput())
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindFailedPrecondition, svcErr.Kind)
	assert.Equal(t, []string{"p1", "p2"}, []string(env.families.families["F1"].GuardianUIDs))
}

func TestSeverGuardianAccessLastGuardian(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)
	env.families.families["F1"] = &models.Family{
		ID:           "F1",
		GuardianUIDs: []string{"p1"},
		Guardians: []models.Guardian{
			{FamilyID: "F1", UID: "p1", Email: "p1@x.com", Role: "guardian"},
		},
	}

	input := severInput()
	input.GuardianUID = "p1"
	input.ConfirmationPhrase = "SEVER p1@x.com"

	_, err := env.svc.SeverGuardianAccess(context.Background(), testActor, input)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindFailedPrecondition, svcErr.Kind)
	assert.Equal(t, []string{"p1"}, []string(env.families.families["F1"].GuardianUIDs))
	assert.Empty(t, env.stealth.calls)
}

func TestSeverGuardianAccessNotFound(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)

	_, err := env.svc.SeverGuardianAccess(context.Background(), testActor, severInput())
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)

	env2 := newTestEnv()
	env2.families.families["F1"] = twoGuardianFamily("F1")
	_, err = env2.svc.SeverGuardianAccess(context.Background(), testActor, severInput())
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
}
