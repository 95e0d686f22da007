package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/database"
)

// AttendanceServiceImpl is the ledger. Every mutation for one (user, date)
// key runs inside a transaction that locks the day's row, so the
// one-record-per-day and one-open-break invariants hold under concurrent
// requests.
type AttendanceServiceImpl struct {
	txm database.TxManager
	attendance.AttendanceRepository
	attendance.BreakRepository
	latePolicy attendance.LatePolicy
	loc        *time.Location
	nowFn      func() time.Time
}

func NewAttendanceService(
	txm database.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	breakRepo attendance.BreakRepository,
	latePolicy attendance.LatePolicy,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		txm:                  txm,
		AttendanceRepository: attendanceRepo,
		BreakRepository:      breakRepo,
		latePolicy:           latePolicy,
		loc:                  loc,
		nowFn:                time.Now,
	}
}

// now returns the current facility-local time at minute resolution.
func (a *AttendanceServiceImpl) now() time.Time {
	return a.nowFn().In(a.loc).Truncate(time.Minute)
}

// rawMinutes resolves the effective clock time: the client override when
// present, the server clock otherwise.
func rawMinutes(override *string, now time.Time) attendance.Minutes {
	if override != nil {
		if m, err := attendance.ParseMinutes(*override); err == nil {
			return m
		}
	}
	return attendance.MinutesOf(now)
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := a.now()
	date := now.Format("2006-01-02")
	normalized := attendance.NormalizeClockIn(rawMinutes(req.RawTime, now), req.Role)
	clockIn := normalized.At(now, a.loc)

	status := attendance.StatusNormal
	if a.latePolicy.IsLate(normalized, req.Role) {
		status = attendance.StatusLate
	}

	var result attendance.Record
	err := a.txm.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := a.AttendanceRepository.GetByUserAndDateForUpdate(ctx, req.UserID, date)
		if err != nil {
			return err
		}

		if existing != nil {
			// A record without a clock-in can exist when an administrator
			// created it ahead of time; filling it in is not a duplicate.
			if existing.ClockIn != nil {
				return attendance.ErrAlreadyClockedIn
			}
			existing.ClockIn = &clockIn
			existing.Status = status
			if req.Role.IsWorker() {
				svc := req.ServiceType
				existing.ServiceType = &svc
			}
			if err := a.AttendanceRepository.Update(ctx, *existing); err != nil {
				return err
			}
			result = *existing
			return nil
		}

		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
		rec := attendance.Record{
			UserID:  req.UserID,
			Date:    day,
			ClockIn: &clockIn,
			Status:  status,
		}
		if req.Role.IsWorker() {
			svc := req.ServiceType
			rec.ServiceType = &svc
		}

		created, err := a.AttendanceRepository.Create(ctx, rec)
		if err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return attendance.NewRecordResponse(result, attendance.StateWorking), nil
}

// ClockOut implements attendance.AttendanceService. An open break blocks the
// clock-out unless the caller explicitly confirmed force-closing it; the
// core never makes that decision on its own.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	now := a.now()
	date := now.Format("2006-01-02")

	var result attendance.Record
	err := a.txm.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := a.AttendanceRepository.GetByUserAndDateForUpdate(ctx, req.UserID, date)
		if err != nil {
			return err
		}
		if rec == nil || rec.ClockIn == nil {
			return attendance.ErrNotClockedIn
		}
		if rec.ClockOut != nil {
			return attendance.ErrAlreadyClockedOut
		}

		if err := a.resolveOpenBreak(ctx, rec, req.Role, req.ForceCloseBreak, now); err != nil {
			return err
		}

		serviceType := attendance.ServiceHome
		if rec.ServiceType != nil {
			serviceType = *rec.ServiceType
		}

		normalized := attendance.NormalizeClockOut(rawMinutes(req.RawTime, now), req.Role, serviceType)
		clockOut := normalized.At(now, a.loc)
		rec.ClockOut = &clockOut

		if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
			return err
		}
		result = *rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return attendance.NewRecordResponse(result, attendance.StateClockedOut), nil
}

// resolveOpenBreak closes a still-open break before clock-out, but only with
// the caller's explicit confirmation.
func (a *AttendanceServiceImpl) resolveOpenBreak(ctx context.Context, rec *attendance.Record, role user.Role, forceClose bool, now time.Time) error {
	if role.IsWorker() {
		open, err := a.BreakRepository.GetOpenByAttendance(ctx, rec.ID)
		if err != nil {
			return err
		}
		if open == nil {
			return nil
		}
		if !forceClose {
			return attendance.ErrBreakStillOpen
		}
		end, minutes := cappedBreakEnd(open.StartTime, now)
		if _, err := a.BreakRepository.Close(ctx, open.ID, end, minutes, false); err != nil {
			return err
		}
		return nil
	}

	if rec.HasEmbeddedOpenBreak() {
		if !forceClose {
			return attendance.ErrBreakStillOpen
		}
		end, _ := cappedBreakEnd(*rec.BreakStart, now)
		rec.BreakEnd = &end
	}
	return nil
}

// cappedBreakEnd clamps a manual break close to the 60-minute cap.
func cappedBreakEnd(start time.Time, now time.Time) (time.Time, int) {
	deadline := start.Add(attendance.BreakCap)
	if now.After(deadline) {
		return deadline, int(attendance.BreakCap.Minutes())
	}
	return now, int(now.Sub(start).Minutes())
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.BreakStartRequest) (attendance.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakResponse{}, err
	}

	now := a.now()
	date := now.Format("2006-01-02")

	var result attendance.BreakResponse
	err := a.txm.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := a.AttendanceRepository.GetByUserAndDateForUpdate(ctx, req.UserID, date)
		if err != nil {
			return err
		}
		if rec == nil || rec.ClockIn == nil {
			return attendance.ErrNotClockedIn
		}
		if rec.ClockOut != nil {
			return attendance.ErrAlreadyClockedOut
		}

		if req.Role.IsWorker() {
			open, err := a.BreakRepository.GetOpenByAttendance(ctx, rec.ID)
			if err != nil {
				return err
			}
			if open != nil {
				return attendance.ErrBreakAlreadyOpen
			}
			taken, err := a.BreakRepository.CountByAttendance(ctx, rec.ID)
			if err != nil {
				return err
			}
			if taken > 0 {
				return attendance.ErrBreakAlreadyTaken
			}

			created, err := a.BreakRepository.Create(ctx, attendance.BreakRecord{
				AttendanceID: rec.ID,
				StartTime:    now,
			})
			if err != nil {
				return err
			}
			result = attendance.NewBreakResponse(created)
			return nil
		}

		if rec.BreakStart != nil {
			if rec.BreakEnd == nil {
				return attendance.ErrBreakAlreadyOpen
			}
			return attendance.ErrBreakAlreadyTaken
		}
		rec.BreakStart = &now
		if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
			return err
		}
		result = attendance.BreakResponse{
			AttendanceID: rec.ID,
			StartTime:    now.Format("15:04"),
		}
		return nil
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	return result, nil
}

// EndBreak implements attendance.AttendanceService. A manual close racing
// the auto-close sweep is resolved by whoever commits first; the loser
// observes the closed break and returns it instead of erroring.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.BreakEndRequest) (attendance.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakResponse{}, err
	}

	now := a.now()
	date := now.Format("2006-01-02")

	var result attendance.BreakResponse
	err := a.txm.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := a.AttendanceRepository.GetByUserAndDateForUpdate(ctx, req.UserID, date)
		if err != nil {
			return err
		}
		if rec == nil || rec.ClockIn == nil {
			return attendance.ErrNotClockedIn
		}

		if req.Role.IsWorker() {
			open, err := a.BreakRepository.GetOpenByAttendance(ctx, rec.ID)
			if err != nil {
				return err
			}
			if open == nil {
				return attendance.ErrNoOpenBreak
			}

			end, minutes := cappedBreakEnd(open.StartTime, now)
			if req.AutoEnd {
				end = open.Deadline()
				minutes = int(attendance.BreakCap.Minutes())
			}

			closed, err := a.BreakRepository.Close(ctx, open.ID, end, minutes, req.AutoEnd)
			if err != nil {
				return err
			}
			if !closed {
				// Lost the race against the sweep: the break is already
				// closed, return it as-is.
				final, err := a.BreakRepository.GetByID(ctx, open.ID)
				if err != nil {
					return err
				}
				result = attendance.NewBreakResponse(final)
				return nil
			}

			open.EndTime = &end
			open.DurationMinutes = &minutes
			open.AutoClosed = req.AutoEnd
			result = attendance.NewBreakResponse(*open)
			return nil
		}

		if !rec.HasEmbeddedOpenBreak() {
			return attendance.ErrNoOpenBreak
		}
		end, _ := cappedBreakEnd(*rec.BreakStart, now)
		if req.AutoEnd {
			end = rec.BreakStart.Add(attendance.BreakCap)
		}
		rec.BreakEnd = &end
		if err := a.AttendanceRepository.Update(ctx, *rec); err != nil {
			return err
		}
		endStr := end.Format("15:04")
		result = attendance.BreakResponse{
			AttendanceID: rec.ID,
			StartTime:    rec.BreakStart.Format("15:04"),
			EndTime:      &endStr,
			AutoClosed:   req.AutoEnd,
		}
		return nil
	})
	if err != nil {
		return attendance.BreakResponse{}, err
	}

	return result, nil
}

// Search implements attendance.AttendanceService. Break state for worker
// records is resolved per record through the break repository, the single
// source for open-break status.
func (a *AttendanceServiceImpl) Search(ctx context.Context, filter attendance.SearchFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := a.AttendanceRepository.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search attendances: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		hasOpenBreak := false
		if rec.UserRole != nil && user.Role(*rec.UserRole).IsWorker() {
			open, err := a.BreakRepository.GetOpenByAttendance(ctx, rec.ID)
			if err != nil {
				return nil, err
			}
			hasOpenBreak = open != nil
		}
		responses = append(responses, attendance.NewRecordResponse(rec, rec.StateWith(hasOpenBreak)))
	}

	return responses, nil
}
