package audit

import (
	"encoding/json"
	"time"
)

// Action tags what an audit entry records.
const (
	ActionAttendanceCorrection = "attendance_correction"
	ActionAttendanceDeletion   = "attendance_deletion"
)

// TargetAttendance is the only target type the correction path writes today;
// the column exists so other privileged mutations can share the log.
const TargetAttendance = "attendance"

// Entry is one immutable audit row. OldValue/NewValue are structured
// snapshots of the target before and after the action; OldValue is null for
// synthetic record creation, NewValue is null for deletion. Reason is
// mandatory and non-empty.
type Entry struct {
	ID         string
	AdminID    string
	ActionType string
	TargetType string
	TargetID   string
	OldValue   json.RawMessage
	NewValue   json.RawMessage
	Reason     string
	IPAddress  *string
	CreatedAt  time.Time
}
