package scoring

import "errors"

var (
	// ErrInvalidConfig is returned by the rule factories when values violate
	// the required orderings (winBy < 1, maximumScore < winScore, and so on).
	// Configuration is rejected at construction time, never mid-match.
	ErrInvalidConfig = errors.New("invalid scoring configuration")

	// ErrInvalidTransition is returned when an operation is attempted outside
	// its legal state, e.g. scoring a finished game or starting a game on an
	// ended match. Idempotent operations (End, StartWarmup on an existing
	// warmup) return nil instead.
	ErrInvalidTransition = errors.New("invalid transition")
)
