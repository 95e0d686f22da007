package postgresql

import (
	"context"
	"fmt"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/domain/report"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

// ListMonthRecords implements report.ReportRepository.
func (r *reportRepository) ListMonthRecords(ctx context.Context, userID string, year int, month int) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.id, a.user_id, a.date, a.service_type,
		       a.clock_in, a.clock_out, a.break_start, a.break_end,
		       a.status, a.created_at, a.updated_at,
		       u.name AS user_name,
		       u.role AS user_role
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
		  AND date_part('year', a.date) = $2
		  AND date_part('month', a.date) = $3
		ORDER BY a.date ASC
	`

	rows, err := q.Query(ctx, query, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query month records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Date, &rec.ServiceType,
			&rec.ClockIn, &rec.ClockOut, &rec.BreakStart, &rec.BreakEnd,
			&rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.UserName, &rec.UserRole,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan month record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}
