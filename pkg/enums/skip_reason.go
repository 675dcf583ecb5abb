package enums

// SkipReason explains why a batch participant did not receive a certificate
// during a bulk-issuance run. Skips are data, not failures: the batch result
// carries them so an operator can reconcile afterwards.
type SkipReason string

const (
	SkipReasonNotCompleted        SkipReason = "not_completed"
	SkipReasonAlreadyIssued       SkipReason = "already_issued"
	SkipReasonGenerationExhausted SkipReason = "generation_exhausted"
	// SkipReasonFlagUnsynced marks a participant whose certificate was
	// persisted but whose roster flag could not be flipped afterwards. The
	// certificate exists; a retry will be rejected by the active-pair guard.
	SkipReasonFlagUnsynced SkipReason = "issued_but_flag_unsynced"
)

// String implements fmt.Stringer.
func (s SkipReason) String() string {
	return string(s)
}
