package enums

// VerificationOutcome maps to the verification_outcome enum in Postgres.
type VerificationOutcome string

const (
	VerificationOutcomeVerified VerificationOutcome = "verified"
	VerificationOutcomeNotFound VerificationOutcome = "not_found"
)

// String implements fmt.Stringer.
func (v VerificationOutcome) String() string {
	return string(v)
}

// IsValid reports whether the value matches the canonical verification_outcome enum.
func (v VerificationOutcome) IsValid() bool {
	return v == VerificationOutcomeVerified || v == VerificationOutcomeNotFound
}
