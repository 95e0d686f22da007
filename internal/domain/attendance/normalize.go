package attendance

import (
	"fmt"
	"time"

	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
)

// ServiceType is the worker's service category for the day. It only affects
// clock-out rounding: commute-type workers who leave around midday are
// billed up to the 11:30 boundary.
type ServiceType string

const (
	ServiceCommute ServiceType = "commute"
	ServiceHome    ServiceType = "home"
)

func (s ServiceType) Valid() bool {
	return s == ServiceCommute || s == ServiceHome
}

// Minutes is a wall-clock time as minutes since midnight. All billing
// arithmetic happens at minute resolution.
type Minutes int

const (
	clockInFloor     Minutes = 9 * 60           // 09:00
	middayWindowLo   Minutes = 11*60 + 30       // 11:30
	middayWindowHi   Minutes = 12*60 + 30       // 12:30
	middayCommuteOut Minutes = 11*60 + 30       // 11:30
	afternoonCutoff  Minutes = 15*60 + 30       // 15:30
	afternoonClose   Minutes = 15*60 + 45       // 15:45
	quarter          Minutes = 15
)

// MinutesOf truncates a timestamp to minutes since midnight in its location.
func MinutesOf(t time.Time) Minutes {
	return Minutes(t.Hour()*60 + t.Minute())
}

// At places the minute-of-day on the given calendar date.
func (m Minutes) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(m)/60, int(m)%60, 0, 0, loc)
}

func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ParseMinutes parses a "15:04" clock string.
func ParseMinutes(s string) (Minutes, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return Minutes(t.Hour()*60 + t.Minute()), nil
}

// NormalizeClockIn converts a raw clock-in time into the facility's billing
// boundary. Only worker times are normalized; staff and admins are recorded
// unrounded. The rules, in priority order:
//
//   - raw in [11:30, 12:30], both ends inclusive: fixed 12:30
//   - raw before 09:00: fixed 09:00
//   - otherwise: round up to the next 15-minute boundary
//
// The window applies to the raw time, so re-normalizing an output can move
// it again (a 11:29 arrival rounds to 11:30, which sits inside the window).
// Callers normalize a raw time exactly once.
func NormalizeClockIn(raw Minutes, role user.Role) Minutes {
	if !role.IsWorker() {
		return raw
	}
	switch {
	case raw >= middayWindowLo && raw <= middayWindowHi:
		return middayWindowHi
	case raw < clockInFloor:
		return clockInFloor
	default:
		return ceilQuarter(raw)
	}
}

// NormalizeClockOut converts a raw clock-out time into the billing boundary.
// Unlike clock-in it rounds down, and commute-type service snaps midday
// departures back to 11:30:
//
//   - commute service, raw in [11:30, 12:30]: fixed 11:30
//   - raw at or before 15:29: round down to the previous 15-minute boundary
//   - raw at or after 15:30: fixed 15:45
func NormalizeClockOut(raw Minutes, role user.Role, service ServiceType) Minutes {
	if !role.IsWorker() {
		return raw
	}
	switch {
	case service == ServiceCommute && raw >= middayWindowLo && raw <= middayWindowHi:
		return middayCommuteOut
	case raw < afternoonCutoff:
		return floorQuarter(raw)
	default:
		return afternoonClose
	}
}

func ceilQuarter(m Minutes) Minutes {
	if m%quarter == 0 {
		return m
	}
	return (m/quarter + 1) * quarter
}

func floorQuarter(m Minutes) Minutes {
	return m / quarter * quarter
}
