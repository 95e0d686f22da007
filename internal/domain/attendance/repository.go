package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records. Date
// parameters are "2006-01-02" strings in the facility's timezone; the
// UNIQUE(user_id, date) constraint is the final backstop for the
// one-record-per-day invariant.
type AttendanceRepository interface {
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// GetByUserAndDate returns nil, nil when no record exists.
	GetByUserAndDate(ctx context.Context, userID string, date string) (*Record, error)

	// GetByUserAndDateForUpdate takes the row lock that serializes all
	// mutations for one (user, date) key. Lock contention surfaces as
	// ErrConcurrentUpdate.
	GetByUserAndDateForUpdate(ctx context.Context, userID string, date string) (*Record, error)

	// GetByIDForUpdate locks a single record by id for correction paths.
	GetByIDForUpdate(ctx context.Context, id string) (Record, error)

	Update(ctx context.Context, record Record) error

	Delete(ctx context.Context, id string) error

	Search(ctx context.Context, filter SearchFilter) ([]Record, error)

	// CloseExpiredEmbeddedBreaks force-closes staff/admin break windows whose
	// start is at least the break cap before now. Idempotent; returns the
	// number of rows closed.
	CloseExpiredEmbeddedBreaks(ctx context.Context, now time.Time) (int64, error)

	// LinkedReportCounts reports daily-report and comment rows referencing a
	// record, used for deletion warnings. Nothing is cascaded.
	LinkedReportCounts(ctx context.Context, recordID string) (reports int, comments int, err error)
}

// BreakRepository stores worker break rows.
type BreakRepository interface {
	Create(ctx context.Context, br BreakRecord) (BreakRecord, error)

	// GetOpenByAttendance returns nil, nil when no break is open.
	GetOpenByAttendance(ctx context.Context, attendanceID string) (*BreakRecord, error)

	CountByAttendance(ctx context.Context, attendanceID string) (int, error)

	// Close sets the end time on an open break. Guarded by end_time IS NULL so
	// a manual close racing the sweep is a no-op for the loser; returns false
	// when the break was already closed.
	Close(ctx context.Context, id string, end time.Time, durationMinutes int, autoClosed bool) (bool, error)

	GetByID(ctx context.Context, id string) (BreakRecord, error)

	ListByAttendance(ctx context.Context, attendanceID string) ([]BreakRecord, error)

	DeleteByAttendance(ctx context.Context, attendanceID string) error

	// CloseExpired force-closes every open break whose deadline has passed.
	// Idempotent and safe to run redundantly.
	CloseExpired(ctx context.Context, now time.Time) (int64, error)

	// SumDurationByAttendance returns closed break minutes per attendance id.
	SumDurationByAttendance(ctx context.Context, attendanceIDs []string) (map[string]int, error)
}
