package audit

import "errors"

// Audit domain errors
var (
	ErrReasonRequired = errors.New("a non-empty reason is required")
	ErrEntryNotFound  = errors.New("audit entry not found")
)
