package attendance

import (
	"time"
)

// Status is the daily status of an attendance record. It defaults to
// StatusNormal; StatusLate is derived automatically from the schedule policy,
// StatusAbsence and StatusPaidLeave are only ever set through an
// administrator correction, never from a raw clock event.
type Status string

const (
	StatusNormal    Status = "normal"
	StatusLate      Status = "late"
	StatusEarly     Status = "early"
	StatusAbsence   Status = "absence"
	StatusPaidLeave Status = "paid_leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusLate, StatusEarly, StatusAbsence, StatusPaidLeave:
		return true
	}
	return false
}

// State is the position of a record in the daily clock state machine:
//
//	NOT_CLOCKED_IN -> WORKING <-> ON_BREAK -> CLOCKED_OUT
//
// CLOCKED_OUT is terminal for the day; further changes go through the
// correction path only.
type State string

const (
	StateNotClockedIn State = "NOT_CLOCKED_IN"
	StateWorking      State = "WORKING"
	StateOnBreak      State = "ON_BREAK"
	StateClockedOut   State = "CLOCKED_OUT"
)

// Record is the single attendance record for one (user, date) pair.
// BreakStart/BreakEnd hold the embedded break window used for staff and
// admins; worker breaks live in separate BreakRecord rows.
type Record struct {
	ID          string
	UserID      string
	Date        time.Time
	ServiceType *ServiceType
	ClockIn     *time.Time
	ClockOut    *time.Time
	BreakStart  *time.Time
	BreakEnd    *time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined from users for listings
	UserName *string
	UserRole *string
}

// StateWith derives the state-machine position. hasOpenBreak covers worker
// break rows, which the record itself cannot see.
func (r *Record) StateWith(hasOpenBreak bool) State {
	switch {
	case r == nil || r.ClockIn == nil:
		return StateNotClockedIn
	case r.ClockOut != nil:
		return StateClockedOut
	case hasOpenBreak || (r.BreakStart != nil && r.BreakEnd == nil):
		return StateOnBreak
	default:
		return StateWorking
	}
}

// HasEmbeddedOpenBreak reports an open staff/admin break window.
func (r *Record) HasEmbeddedOpenBreak() bool {
	return r.BreakStart != nil && r.BreakEnd == nil
}

// BreakRecord is a worker's rest break, at most one per attendance record
// per day. EndTime is null only while the break is open. DurationMinutes
// never exceeds the 60-minute cap, whether closed manually or by the sweep.
type BreakRecord struct {
	ID              string
	AttendanceID    string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	AutoClosed      bool
	CreatedAt       time.Time
}

// Open reports whether the break has not been closed yet.
func (b *BreakRecord) Open() bool {
	return b != nil && b.EndTime == nil
}

// Deadline is the persisted auto-close moment: start plus the cap. The sweep
// job closes any break whose deadline has passed.
func (b *BreakRecord) Deadline() time.Time {
	return b.StartTime.Add(BreakCap)
}

// BreakCap is the facility-mandated maximum rest break length.
const BreakCap = 60 * time.Minute
