package service

import "safetydesk/internal/models"

// DefaultVerificationMinimum is the policy minimum of completed identity
// checks required before any escape action. It is shared by all five
// actions; changing it for one action without the others is an explicit
// policy decision, not something an executor may do locally.
const DefaultVerificationMinimum = 2

// VerifiedCount counts the completed checks among the four fixed
// verification fields. Pure, no side effects.
func VerifiedCount(v models.VerificationRecord) int {
	count := 0
	for _, check := range []models.VerificationCheck{v.Phone, v.IDDocument, v.AccountMatch, v.SecurityQuestions} {
		if check.Verified {
			count++
		}
	}
	return count
}

// MeetsThreshold reports whether count satisfies the policy minimum.
func MeetsThreshold(count, minimum int) bool {
	return count >= minimum
}

const severConfirmationPrefix = "SEVER "

// ExpectedConfirmation returns the phrase an agent must type to sever the
// guardian with the given email.
func ExpectedConfirmation(guardianEmail string) string {
	return severConfirmationPrefix + guardianEmail
}

// ConfirmationMatches compares the agent-supplied phrase to the expected
// one. Case-sensitive, exact; no trimming. A human-typed assertion is the
// last gate before the one irreversible stealth action.
func ConfirmationMatches(phrase, guardianEmail string) bool {
	return phrase == ExpectedConfirmation(guardianEmail)
}
