package audit

import (
	"encoding/json"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
)

// RecordSnapshot is the structured before/after image stored in audit
// entries. Clock fields are minute-resolution strings so the log stays
// readable without joining back to live rows.
type RecordSnapshot struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	ServiceType *string `json:"service_type"`
	ClockIn     *string `json:"clock_in"`
	ClockOut    *string `json:"clock_out"`
	BreakStart  *string `json:"break_start"`
	BreakEnd    *string `json:"break_end"`
	Status      string  `json:"status"`
}

func SnapshotOf(rec attendance.Record) RecordSnapshot {
	var serviceType *string
	if rec.ServiceType != nil {
		s := string(*rec.ServiceType)
		serviceType = &s
	}

	return RecordSnapshot{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Date:        rec.Date.Format("2006-01-02"),
		ServiceType: serviceType,
		ClockIn:     attendance.ClockToString(rec.ClockIn),
		ClockOut:    attendance.ClockToString(rec.ClockOut),
		BreakStart:  attendance.ClockToString(rec.BreakStart),
		BreakEnd:    attendance.ClockToString(rec.BreakEnd),
		Status:      string(rec.Status),
	}
}

// JSON serializes the snapshot for the audit row. Marshalling a flat struct
// of strings cannot fail, so errors are ignored.
func (s RecordSnapshot) JSON() json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
