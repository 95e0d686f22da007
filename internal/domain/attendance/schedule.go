package attendance

import "github.com/hikari-care/attendance-backend-go/internal/domain/user"

// LatePolicy decides whether a normalized clock-in counts as late. The
// scheduled start is facility configuration, not something the core derives,
// so the policy is injected rather than hard-coded.
type LatePolicy interface {
	IsLate(clockIn Minutes, role user.Role) bool
}

// FixedSchedulePolicy marks a clock-in late when it lands after the
// scheduled start plus a grace period. Applies to workers only; staff and
// admin lateness is handled administratively.
type FixedSchedulePolicy struct {
	ScheduledStart Minutes
	GraceMinutes   int
}

func (p FixedSchedulePolicy) IsLate(clockIn Minutes, role user.Role) bool {
	if !role.IsWorker() {
		return false
	}
	return clockIn > p.ScheduledStart+Minutes(p.GraceMinutes)
}
