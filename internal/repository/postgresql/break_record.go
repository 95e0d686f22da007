package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type breakRepository struct {
	db *database.DB
}

func NewBreakRepository(db *database.DB) attendance.BreakRepository {
	return &breakRepository{db: db}
}

const breakColumns = `id, attendance_id, start_time, end_time, duration_minutes, auto_closed, created_at`

func scanBreak(row pgx.Row) (attendance.BreakRecord, error) {
	var br attendance.BreakRecord
	err := row.Scan(
		&br.ID, &br.AttendanceID, &br.StartTime, &br.EndTime,
		&br.DurationMinutes, &br.AutoClosed, &br.CreatedAt,
	)
	return br, err
}

// Create implements attendance.BreakRepository.
func (b *breakRepository) Create(ctx context.Context, br attendance.BreakRecord) (attendance.BreakRecord, error) {
	q := GetQuerier(ctx, b.db)

	if br.ID == "" {
		br.ID = uuid.NewString()
	}

	query := `
		INSERT INTO break_records (
			id, attendance_id, start_time, end_time, duration_minutes, auto_closed
		) VALUES (
			$1, $2, $3, $4, $5, $6
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		br.ID,
		br.AttendanceID,
		br.StartTime,
		br.EndTime,
		br.DurationMinutes,
		br.AutoClosed,
	).Scan(&br.CreatedAt)

	if err != nil {
		return attendance.BreakRecord{}, fmt.Errorf("failed to create break record: %w", err)
	}

	return br, nil
}

// GetByID implements attendance.BreakRepository.
func (b *breakRepository) GetByID(ctx context.Context, id string) (attendance.BreakRecord, error) {
	q := GetQuerier(ctx, b.db)

	query := `SELECT ` + breakColumns + ` FROM break_records WHERE id = $1`

	br, err := scanBreak(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.BreakRecord{}, attendance.ErrNoOpenBreak
		}
		return attendance.BreakRecord{}, fmt.Errorf("failed to get break record: %w", err)
	}

	return br, nil
}

// GetOpenByAttendance implements attendance.BreakRepository.
func (b *breakRepository) GetOpenByAttendance(ctx context.Context, attendanceID string) (*attendance.BreakRecord, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		SELECT ` + breakColumns + `
		FROM break_records
		WHERE attendance_id = $1
		  AND end_time IS NULL
		LIMIT 1
	`

	br, err := scanBreak(q.QueryRow(ctx, query, attendanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open break: %w", err)
	}

	return &br, nil
}

// CountByAttendance implements attendance.BreakRepository.
func (b *breakRepository) CountByAttendance(ctx context.Context, attendanceID string) (int, error) {
	q := GetQuerier(ctx, b.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM break_records WHERE attendance_id = $1`,
		attendanceID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count break records: %w", err)
	}

	return count, nil
}

// Close implements attendance.BreakRepository. The end_time IS NULL guard
// makes manual close and the sweep race-safe: only one writer wins, the
// other sees zero rows and no-ops.
func (b *breakRepository) Close(ctx context.Context, id string, end time.Time, durationMinutes int, autoClosed bool) (bool, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		UPDATE break_records
		SET end_time = $1,
		    duration_minutes = $2,
		    auto_closed = $3
		WHERE id = $4
		  AND end_time IS NULL
	`

	commandTag, err := q.Exec(ctx, query, end, durationMinutes, autoClosed, id)
	if err != nil {
		return false, fmt.Errorf("failed to close break record: %w", err)
	}

	return commandTag.RowsAffected() > 0, nil
}

// ListByAttendance implements attendance.BreakRepository.
func (b *breakRepository) ListByAttendance(ctx context.Context, attendanceID string) ([]attendance.BreakRecord, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		SELECT ` + breakColumns + `
		FROM break_records
		WHERE attendance_id = $1
		ORDER BY start_time ASC
	`

	rows, err := q.Query(ctx, query, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query break records: %w", err)
	}
	defer rows.Close()

	var breaks []attendance.BreakRecord
	for rows.Next() {
		var br attendance.BreakRecord
		err := rows.Scan(
			&br.ID, &br.AttendanceID, &br.StartTime, &br.EndTime,
			&br.DurationMinutes, &br.AutoClosed, &br.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan break record: %w", err)
		}
		breaks = append(breaks, br)
	}

	return breaks, nil
}

// DeleteByAttendance implements attendance.BreakRepository.
func (b *breakRepository) DeleteByAttendance(ctx context.Context, attendanceID string) error {
	q := GetQuerier(ctx, b.db)

	if _, err := q.Exec(ctx, `DELETE FROM break_records WHERE attendance_id = $1`, attendanceID); err != nil {
		return fmt.Errorf("failed to delete break records: %w", err)
	}

	return nil
}

// CloseExpired implements attendance.BreakRepository. One guarded UPDATE:
// every open break past its deadline is closed at exactly start + cap with
// the auto_closed flag set. Safe to run redundantly.
func (b *breakRepository) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		UPDATE break_records
		SET end_time = start_time + interval '60 minutes',
		    duration_minutes = 60,
		    auto_closed = TRUE
		WHERE end_time IS NULL
		  AND start_time <= $1 - interval '60 minutes'
	`

	commandTag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to close expired breaks: %w", err)
	}

	return commandTag.RowsAffected(), nil
}

// SumDurationByAttendance implements attendance.BreakRepository.
func (b *breakRepository) SumDurationByAttendance(ctx context.Context, attendanceIDs []string) (map[string]int, error) {
	if len(attendanceIDs) == 0 {
		return map[string]int{}, nil
	}

	q := GetQuerier(ctx, b.db)

	query := `
		SELECT attendance_id, COALESCE(SUM(duration_minutes), 0)
		FROM break_records
		WHERE attendance_id = ANY($1)
		  AND end_time IS NOT NULL
		GROUP BY attendance_id
	`

	rows, err := q.Query(ctx, query, attendanceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum break durations: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]int, len(attendanceIDs))
	for rows.Next() {
		var id string
		var minutes int
		if err := rows.Scan(&id, &minutes); err != nil {
			return nil, fmt.Errorf("failed to scan break duration: %w", err)
		}
		sums[id] = minutes
	}

	return sums, nil
}
