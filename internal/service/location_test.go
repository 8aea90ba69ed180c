package service

import (
	"context"
	"testing"

	"safetydesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisableLocationFeatures(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)
	env.families.families["F1"] = twoGuardianFamily("F1")

	result, err := env.svc.DisableLocationFeatures(context.Background(), testActor, DisableLocationInput{
		TicketID: "T1", FamilyID: "F1", Reason: "escape in progress",
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)

	family := env.families.families["F1"]
	assert.True(t, family.SafetyLocationDisabled)
	assert.True(t, family.LocationRedacted)

	// Stealth action: only the admin trail is touched.
	require.Len(t, env.audit.admin, 1)
	assert.Equal(t, ActionDisableLocation, env.audit.admin[0].Action)
	assert.Empty(t, env.audit.family)
	assert.Len(t, env.tickets.history, 1)
}

func TestDisableLocationFeaturesIdempotent(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 2)
	family := twoGuardianFamily("F1")
	family.SafetyLocationDisabled = true
	family.LocationRedacted = true
	env.families.families["F1"] = family

	result, err := env.svc.DisableLocationFeatures(context.Background(), testActor, DisableLocationInput{
		TicketID: "T1", FamilyID: "F1", Reason: "retry",
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, "Location features already disabled", result.Message)

	// No-op outcomes are still audited, but nothing else is written.
	assert.Len(t, env.audit.admin, 1)
	assert.Empty(t, env.audit.family)
	assert.Empty(t, env.tickets.history)
}

func TestDisableLocationFeaturesBelowThreshold(t *testing.T) {
	env := newTestEnv()
	env.tickets.tickets["T1"] = verifiedTicket("T1", models.TicketTypeGeneric, 0)
	env.families.families["F1"] = twoGuardianFamily("F1")

	_, err := env.svc.DisableLocationFeatures(context.Background(), testActor, DisableLocationInput{
		TicketID: "T1", FamilyID: "F1", Reason: "x",
	})
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindFailedPrecondition, svcErr.Kind)
	assert.False(t, env.families.families["F1"].SafetyLocationDisabled)
}
