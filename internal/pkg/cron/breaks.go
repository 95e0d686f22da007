package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
)

// BreakJobs sweeps open rest breaks past their persisted deadline
// (break start + 60 minutes). The sweep replaces any notion of a client-side
// timer: it is idempotent, safe to run redundantly, and a manual close that
// lands first simply leaves nothing for it to do. Failures are logged and
// never surface to a user request.
type BreakJobs struct {
	attendanceRepo attendance.AttendanceRepository
	breakRepo      attendance.BreakRepository
}

func NewBreakJobs(
	attendanceRepo attendance.AttendanceRepository,
	breakRepo attendance.BreakRepository,
) *BreakJobs {
	return &BreakJobs{
		attendanceRepo: attendanceRepo,
		breakRepo:      breakRepo,
	}
}

func (j *BreakJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("auto_close_expired_breaks", interval, j.AutoCloseExpiredBreaks)
}

// AutoCloseExpiredBreaks force-closes every break whose deadline has passed:
// worker break rows get end = start + 60min, duration 60 and the auto_closed
// flag; staff/admin embedded windows get break_end = break_start + 60min.
func (j *BreakJobs) AutoCloseExpiredBreaks(ctx context.Context) error {
	now := time.Now()

	workerClosed, err := j.breakRepo.CloseExpired(ctx, now)
	if err != nil {
		slog.Error("Cron: failed to close expired worker breaks", "error", err)
		return err
	}

	staffClosed, err := j.attendanceRepo.CloseExpiredEmbeddedBreaks(ctx, now)
	if err != nil {
		slog.Error("Cron: failed to close expired staff breaks", "error", err)
		return err
	}

	if workerClosed > 0 || staffClosed > 0 {
		slog.Info("Cron: auto-closed expired breaks",
			"worker_breaks", workerClosed,
			"staff_breaks", staffClosed)
	}

	return nil
}
