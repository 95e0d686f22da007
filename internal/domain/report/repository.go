package report

import (
	"context"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
)

// ReportRepository is the read-side projection over attendance rows. It has
// no write access; per-record atomicity is all the aggregation relies on.
type ReportRepository interface {
	// ListMonthRecords returns the user's records for one calendar month,
	// ordered by date, with user name and role joined in.
	ListMonthRecords(ctx context.Context, userID string, year int, month int) ([]attendance.Record, error)
}
