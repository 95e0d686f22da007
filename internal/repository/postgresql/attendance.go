package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.user_id, a.date, a.service_type,
	a.clock_in, a.clock_out, a.break_start, a.break_end,
	a.status, a.created_at, a.updated_at
`

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.ServiceType,
		&rec.ClockIn, &rec.ClockOut, &rec.BreakStart, &rec.BreakEnd,
		&rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.AttendanceRepository. A duplicate (user, date)
// insert maps to ErrAlreadyClockedIn: the unique constraint is the backstop
// for the one-record-per-day invariant under concurrent clock-ins.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO attendances (
			id, user_id, date, service_type,
			clock_in, clock_out, break_start, break_end, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Date,
		rec.ServiceType,
		rec.ClockIn,
		rec.ClockOut,
		rec.BreakStart,
		rec.BreakEnd,
		rec.Status,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.id = $1
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return rec, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		  AND a.date = $2
		LIMIT 1
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &rec, nil
}

// GetByUserAndDateForUpdate implements attendance.AttendanceRepository. The
// NOWAIT lock turns contention on the same (user, date) key into
// ErrConcurrentUpdate instead of queueing mutations invisibly.
func (a *attendanceRepository) GetByUserAndDateForUpdate(ctx context.Context, userID string, date string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		  AND a.date = $2
		LIMIT 1
		FOR UPDATE OF a NOWAIT
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return nil, attendance.ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("failed to lock attendance row: %w", err)
	}

	return &rec, nil
}

// GetByIDForUpdate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.id = $1
		FOR UPDATE OF a NOWAIT
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return attendance.Record{}, attendance.ErrConcurrentUpdate
		}
		return attendance.Record{}, fmt.Errorf("failed to lock attendance row: %w", err)
	}

	return rec, nil
}

// Update implements attendance.AttendanceRepository. All columns are written
// as-is: the correction path must be able to clear clock fields back to null,
// so there is no field-presence logic here.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET service_type = $1,
		    clock_in = $2,
		    clock_out = $3,
		    break_start = $4,
		    break_end = $5,
		    status = $6,
		    updated_at = $7
		WHERE id = $8
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		rec.ServiceType,
		rec.ClockIn,
		rec.ClockOut,
		rec.BreakStart,
		rec.BreakEnd,
		rec.Status,
		time.Now(),
		rec.ID,
	).Scan(&updatedID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// Search implements attendance.AttendanceRepository.
func (a *attendanceRepository) Search(ctx context.Context, filter attendance.SearchFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.date = $1"
	args := []interface{}{filter.Date}
	argIdx := 2

	if filter.Role != nil && *filter.Role != "" {
		baseWhere += fmt.Sprintf(" AND u.role = $%d", argIdx)
		args = append(args, *filter.Role)
		argIdx++
	}

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       u.name AS user_name,
		       u.role AS user_role
		FROM attendances a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY u.name ASC
	`, strings.TrimSpace(attendanceColumns), baseWhere)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
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
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// CloseExpiredEmbeddedBreaks implements attendance.AttendanceRepository. One
// guarded UPDATE so the sweep is idempotent and races with manual closes
// resolve to whoever commits first.
func (a *attendanceRepository) CloseExpiredEmbeddedBreaks(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET break_end = break_start + interval '60 minutes',
		    updated_at = $1
		WHERE break_start IS NOT NULL
		  AND break_end IS NULL
		  AND break_start <= $1 - interval '60 minutes'
	`

	commandTag, err := q.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to close expired embedded breaks: %w", err)
	}

	return commandTag.RowsAffected(), nil
}

// LinkedReportCounts implements attendance.AttendanceRepository.
func (a *attendanceRepository) LinkedReportCounts(ctx context.Context, recordID string) (int, int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM daily_reports WHERE attendance_id = $1),
			(SELECT COUNT(*) FROM staff_comments WHERE attendance_id = $1)
	`

	var reports, comments int
	if err := q.QueryRow(ctx, query, recordID).Scan(&reports, &comments); err != nil {
		return 0, 0, fmt.Errorf("failed to count linked reports: %w", err)
	}

	return reports, comments, nil
}
