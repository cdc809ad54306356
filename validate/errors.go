// Package validate orchestrates the ordered sequence of consensus checks
// on a candidate block header against its parent, short-circuiting on the
// first failure. Validation failures are named, comparable errors rather
// than ad hoc strings, in the style of a dcrd-family rule-chain validator.
package validate

// ErrorKind identifies which consensus check failed.
type ErrorKind int

const (
	ErrProofSizeTooLarge ErrorKind = iota
	ErrChunkHashMismatch
	ErrBlockHashMismatch
	ErrParentMismatch
	ErrLastRetargetMismatch
	ErrDifficultyMismatch
	ErrCumulativeDiffMismatch
	ErrQuickPowBelowTarget
	ErrSeedDataMismatch
	ErrPartitionOutOfRange
	ErrNonceOutOfRange
	ErrRecallByteMismatch
	ErrPoaInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case ErrProofSizeTooLarge:
		return "ProofSizeTooLarge"
	case ErrChunkHashMismatch:
		return "ChunkHashMismatch"
	case ErrBlockHashMismatch:
		return "BlockHashMismatch"
	case ErrParentMismatch:
		return "ParentMismatch"
	case ErrLastRetargetMismatch:
		return "LastRetargetMismatch"
	case ErrDifficultyMismatch:
		return "DifficultyMismatch"
	case ErrCumulativeDiffMismatch:
		return "CumulativeDiffMismatch"
	case ErrQuickPowBelowTarget:
		return "QuickPowBelowTarget"
	case ErrSeedDataMismatch:
		return "SeedDataMismatch"
	case ErrPartitionOutOfRange:
		return "PartitionOutOfRange"
	case ErrNonceOutOfRange:
		return "NonceOutOfRange"
	case ErrRecallByteMismatch:
		return "RecallByteMismatch"
	case ErrPoaInvalid:
		return "PoaInvalid"
	default:
		return "Unknown"
	}
}

// RuleError is a named validation failure. Kind identifies the check
// that failed, Detail carries operator-facing context (which proof, which
// stage), and Err optionally wraps a lower-level cause.
type RuleError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *RuleError) Error() string {
	if e.Detail == "" {
		return "validate: " + e.Kind.String()
	}
	return "validate: " + e.Kind.String() + ": " + e.Detail
}

func (e *RuleError) Unwrap() error { return e.Err }

func ruleError(kind ErrorKind, detail string) error {
	return &RuleError{Kind: kind, Detail: detail}
}

func wrappedRuleError(kind ErrorKind, detail string, cause error) error {
	return &RuleError{Kind: kind, Detail: detail, Err: cause}
}
