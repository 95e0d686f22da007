package attendance

import (
	"context"
)

// AttendanceService is the ledger: it owns the per-(user, date) record
// lifecycle and the clock/break state machine.
type AttendanceService interface {
	// ClockIn creates the day's record, applying the billing normalizer and
	// the late policy. A second clock-in for the same date fails.
	ClockIn(ctx context.Context, req ClockInRequest) (RecordResponse, error)

	// ClockOut closes the day's record. An open break must be resolved first;
	// the caller confirms with ForceCloseBreak or the call fails.
	ClockOut(ctx context.Context, req ClockOutRequest) (RecordResponse, error)

	// StartBreak opens the single permitted rest break for the day.
	StartBreak(ctx context.Context, req BreakStartRequest) (BreakResponse, error)

	// EndBreak closes the open break, capping its duration at the break cap.
	EndBreak(ctx context.Context, req BreakEndRequest) (BreakResponse, error)

	// Search lists records for a date, optionally filtered by role or user.
	Search(ctx context.Context, filter SearchFilter) ([]RecordResponse, error)
}
