package tx

import "fmt"

// ValidationError reports a request rejected by an operator's validation
// rule (malformed account, non-positive or below-minimum amount). It is
// surfaced synchronously on the result and never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// LimitError reports a request rejected by an operator's limit rule
// (per-transaction ceiling, self-transfer, disallowed destination).
type LimitError struct {
	Reason string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("limit check failed: %s", e.Reason)
}
