package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
)

type sweepAttendanceRepo struct {
	attendance.AttendanceRepository
	closed int64
	calls  int
	err    error
}

func (f *sweepAttendanceRepo) CloseExpiredEmbeddedBreaks(_ context.Context, _ time.Time) (int64, error) {
	f.calls++
	return f.closed, f.err
}

type sweepBreakRepo struct {
	attendance.BreakRepository
	closed int64
	calls  int
	err    error
}

func (f *sweepBreakRepo) CloseExpired(_ context.Context, _ time.Time) (int64, error) {
	f.calls++
	return f.closed, f.err
}

func TestAutoCloseExpiredBreaks(t *testing.T) {
	attRepo := &sweepAttendanceRepo{closed: 1}
	brkRepo := &sweepBreakRepo{closed: 3}

	jobs := NewBreakJobs(attRepo, brkRepo)
	require.NoError(t, jobs.AutoCloseExpiredBreaks(context.Background()))
	assert.Equal(t, 1, attRepo.calls)
	assert.Equal(t, 1, brkRepo.calls)

	// The sweep is idempotent: a second pass finds nothing and still
	// succeeds.
	attRepo.closed, brkRepo.closed = 0, 0
	require.NoError(t, jobs.AutoCloseExpiredBreaks(context.Background()))
}

func TestAutoCloseExpiredBreaksPropagatesErrors(t *testing.T) {
	wantErr := errors.New("connection refused")
	jobs := NewBreakJobs(&sweepAttendanceRepo{}, &sweepBreakRepo{err: wantErr})

	err := jobs.AutoCloseExpiredBreaks(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestSchedulerRunOnce(t *testing.T) {
	s := NewScheduler()
	ran := 0
	s.AddJob("probe", time.Hour, func(ctx context.Context) error {
		ran++
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, 1, ran)
}
