package attendance

import "errors"

// Attendance domain errors
var (
	// Clock event errors
	ErrAlreadyClockedIn  = errors.New("already clocked in for this date")
	ErrNotClockedIn      = errors.New("not clocked in yet")
	ErrAlreadyClockedOut = errors.New("already clocked out for this date")

	// Break lifecycle errors
	ErrBreakAlreadyOpen  = errors.New("a break is already open")
	ErrBreakAlreadyTaken = errors.New("the break for this date has already been taken")
	ErrNoOpenBreak       = errors.New("no break is currently open")
	ErrBreakStillOpen    = errors.New("a break is still open; close it before clocking out")

	// General errors
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrConcurrentUpdate = errors.New("attendance record is being modified by another request")
	ErrInvalidClockTime = errors.New("clock time must be in HH:MM format")
)
