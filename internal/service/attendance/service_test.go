package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
)

// passthroughTx runs the function without a real transaction. The fakes
// below are not transactional; these tests exercise the service rules, not
// isolation.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	records  map[string]*attendance.Record
	nextID   int
	reports  int
	comments int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Record)}
}

func (f *fakeAttendanceRepo) Create(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	date := rec.Date.Format("2006-01-02")
	for _, r := range f.records {
		if r.UserID == rec.UserID && r.Date.Format("2006-01-02") == date {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
	}
	f.nextID++
	rec.ID = fmt.Sprintf("att-%d", f.nextID)
	stored := rec
	f.records[rec.ID] = &stored
	return rec, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return *rec, nil
}

func (f *fakeAttendanceRepo) GetByUserAndDate(_ context.Context, userID string, date string) (*attendance.Record, error) {
	for _, r := range f.records {
		if r.UserID == userID && r.Date.Format("2006-01-02") == date {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) GetByUserAndDateForUpdate(ctx context.Context, userID string, date string) (*attendance.Record, error) {
	return f.GetByUserAndDate(ctx, userID, date)
}

func (f *fakeAttendanceRepo) GetByIDForUpdate(ctx context.Context, id string) (attendance.Record, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAttendanceRepo) Update(_ context.Context, rec attendance.Record) error {
	if _, ok := f.records[rec.ID]; !ok {
		return attendance.ErrRecordNotFound
	}
	stored := rec
	f.records[rec.ID] = &stored
	return nil
}

func (f *fakeAttendanceRepo) Delete(_ context.Context, id string) error {
	delete(f.records, id)
	return nil
}

func (f *fakeAttendanceRepo) Search(_ context.Context, filter attendance.SearchFilter) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.Date.Format("2006-01-02") == filter.Date {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) CloseExpiredEmbeddedBreaks(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, r := range f.records {
		if r.BreakStart != nil && r.BreakEnd == nil && !r.BreakStart.Add(attendance.BreakCap).After(now) {
			end := r.BreakStart.Add(attendance.BreakCap)
			r.BreakEnd = &end
			n++
		}
	}
	return n, nil
}

func (f *fakeAttendanceRepo) LinkedReportCounts(_ context.Context, _ string) (int, int, error) {
	return f.reports, f.comments, nil
}

type fakeBreakRepo struct {
	breaks map[string]*attendance.BreakRecord
	nextID int
}

func newFakeBreakRepo() *fakeBreakRepo {
	return &fakeBreakRepo{breaks: make(map[string]*attendance.BreakRecord)}
}

func (f *fakeBreakRepo) Create(_ context.Context, br attendance.BreakRecord) (attendance.BreakRecord, error) {
	f.nextID++
	br.ID = fmt.Sprintf("brk-%d", f.nextID)
	stored := br
	f.breaks[br.ID] = &stored
	return br, nil
}

func (f *fakeBreakRepo) GetOpenByAttendance(_ context.Context, attendanceID string) (*attendance.BreakRecord, error) {
	for _, b := range f.breaks {
		if b.AttendanceID == attendanceID && b.EndTime == nil {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeBreakRepo) CountByAttendance(_ context.Context, attendanceID string) (int, error) {
	n := 0
	for _, b := range f.breaks {
		if b.AttendanceID == attendanceID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBreakRepo) Close(_ context.Context, id string, end time.Time, durationMinutes int, autoClosed bool) (bool, error) {
	b, ok := f.breaks[id]
	if !ok || b.EndTime != nil {
		return false, nil
	}
	b.EndTime = &end
	b.DurationMinutes = &durationMinutes
	b.AutoClosed = autoClosed
	return true, nil
}

func (f *fakeBreakRepo) GetByID(_ context.Context, id string) (attendance.BreakRecord, error) {
	b, ok := f.breaks[id]
	if !ok {
		return attendance.BreakRecord{}, attendance.ErrRecordNotFound
	}
	return *b, nil
}

func (f *fakeBreakRepo) ListByAttendance(_ context.Context, attendanceID string) ([]attendance.BreakRecord, error) {
	var out []attendance.BreakRecord
	for _, b := range f.breaks {
		if b.AttendanceID == attendanceID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBreakRepo) DeleteByAttendance(_ context.Context, attendanceID string) error {
	for id, b := range f.breaks {
		if b.AttendanceID == attendanceID {
			delete(f.breaks, id)
		}
	}
	return nil
}

func (f *fakeBreakRepo) CloseExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range f.breaks {
		if b.EndTime == nil && !b.Deadline().After(now) {
			end := b.Deadline()
			minutes := int(attendance.BreakCap.Minutes())
			b.EndTime = &end
			b.DurationMinutes = &minutes
			b.AutoClosed = true
			n++
		}
	}
	return n, nil
}

func (f *fakeBreakRepo) SumDurationByAttendance(_ context.Context, attendanceIDs []string) (map[string]int, error) {
	out := make(map[string]int)
	for _, b := range f.breaks {
		if b.EndTime == nil || b.DurationMinutes == nil {
			continue
		}
		for _, id := range attendanceIDs {
			if b.AttendanceID == id {
				out[id] += *b.DurationMinutes
			}
		}
	}
	return out, nil
}

type testHarness struct {
	svc        *AttendanceServiceImpl
	attendance *fakeAttendanceRepo
	breaks     *fakeBreakRepo
	clock      time.Time
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		attendance: newFakeAttendanceRepo(),
		breaks:     newFakeBreakRepo(),
		clock:      time.Date(2024, 6, 3, 8, 50, 0, 0, time.UTC),
	}
	h.svc = &AttendanceServiceImpl{
		txm:                  passthroughTx{},
		AttendanceRepository: h.attendance,
		BreakRepository:      h.breaks,
		latePolicy: attendance.FixedSchedulePolicy{
			ScheduledStart: 9 * 60,
		},
		loc:   time.UTC,
		nowFn: func() time.Time { return h.clock },
	}
	return h
}

func (h *testHarness) setClock(hour, min int) {
	h.clock = time.Date(2024, 6, 3, hour, min, 0, 0, time.UTC)
}

func TestClockInWorkerNormalized(t *testing.T) {
	h := newHarness(t)
	h.setClock(8, 50)

	resp, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceCommute,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ClockIn)
	assert.Equal(t, "09:00", *resp.ClockIn)
	assert.Equal(t, "normal", resp.Status)
	assert.Equal(t, "WORKING", resp.State)
	require.NotNil(t, resp.ServiceType)
	assert.Equal(t, "commute", *resp.ServiceType)
	assert.Equal(t, "2024-06-03", resp.Date)
}

func TestClockInWorkerLate(t *testing.T) {
	h := newHarness(t)
	h.setClock(9, 20)

	resp, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ClockIn)
	assert.Equal(t, "09:30", *resp.ClockIn)
	assert.Equal(t, "late", resp.Status)
}

func TestClockInMiddayWindow(t *testing.T) {
	h := newHarness(t)
	h.setClock(12, 0)

	resp, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)
	assert.Equal(t, "12:30", *resp.ClockIn)
}

func TestClockInStaffUnrounded(t *testing.T) {
	h := newHarness(t)
	h.setClock(8, 47)

	resp, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID: "staff-1",
		Role:   user.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, "08:47", *resp.ClockIn)
	assert.Equal(t, "normal", resp.Status)
	assert.Nil(t, resp.ServiceType)
}

func TestClockInTwiceFails(t *testing.T) {
	h := newHarness(t)

	req := attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	}
	_, err := h.svc.ClockIn(context.Background(), req)
	require.NoError(t, err)

	_, err = h.svc.ClockIn(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockInRawTimeOverride(t *testing.T) {
	h := newHarness(t)
	h.setClock(10, 0)
	raw := "09:05"

	resp, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
		RawTime:     &raw,
	})
	require.NoError(t, err)
	assert.Equal(t, "09:15", *resp.ClockIn)
}

func TestClockOutWithoutClockIn(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestClockOutAfternoonClose(t *testing.T) {
	h := newHarness(t)
	h.setClock(8, 50)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	h.setClock(15, 35)
	resp, err := h.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)
	assert.Equal(t, "15:45", *resp.ClockOut)
	assert.Equal(t, "CLOCKED_OUT", resp.State)
}

func TestClockOutCommuteMidday(t *testing.T) {
	h := newHarness(t)
	h.setClock(8, 50)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceCommute,
	})
	require.NoError(t, err)

	// The service type captured at clock-in drives the midday snap-back.
	h.setClock(12, 0)
	resp, err := h.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)
	assert.Equal(t, "11:30", *resp.ClockOut)
}

func TestClockOutTwiceFails(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	h.setClock(16, 0)
	req := attendance.ClockOutRequest{UserID: "worker-1", Role: user.RoleWorker}
	_, err = h.svc.ClockOut(context.Background(), req)
	require.NoError(t, err)

	_, err = h.svc.ClockOut(context.Background(), req)
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)
}

func TestWorkerBreakLifecycle(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	h.setClock(12, 40)
	started, err := h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, started.ID)

	// A second start while one is open is rejected.
	_, err = h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)

	h.setClock(13, 10)
	ended, err := h.svc.EndBreak(context.Background(), attendance.BreakEndRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 30, *ended.DurationMinutes)
	assert.False(t, ended.AutoClosed)

	// Only one break per day.
	_, err = h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyTaken)
}

func TestEndBreakCappedAtSixtyMinutes(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	h.setClock(12, 0)
	_, err = h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)

	// 90 minutes later the manual close still records only the cap.
	h.setClock(13, 30)
	ended, err := h.svc.EndBreak(context.Background(), attendance.BreakEndRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 60, *ended.DurationMinutes)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, "13:00", *ended.EndTime)
}

func TestEndBreakWithoutOpenBreak(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	_, err = h.svc.EndBreak(context.Background(), attendance.BreakEndRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	assert.ErrorIs(t, err, attendance.ErrNoOpenBreak)
}

func TestClockOutBlockedByOpenBreak(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	h.setClock(12, 0)
	_, err = h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)

	h.setClock(12, 30)
	_, err = h.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	assert.ErrorIs(t, err, attendance.ErrBreakStillOpen)

	// With explicit confirmation the break is closed and clock-out proceeds.
	resp, err := h.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		UserID:          "worker-1",
		Role:            user.RoleWorker,
		ForceCloseBreak: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "12:30", *resp.ClockOut)

	open, err := h.breaks.GetOpenByAttendance(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestStaffEmbeddedBreak(t *testing.T) {
	h := newHarness(t)
	h.setClock(8, 47)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID: "staff-1",
		Role:   user.RoleStaff,
	})
	require.NoError(t, err)

	h.setClock(12, 0)
	started, err := h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "staff-1",
		Role:   user.RoleStaff,
	})
	require.NoError(t, err)
	assert.Empty(t, started.ID)
	assert.Equal(t, "12:00", started.StartTime)

	h.setClock(12, 45)
	ended, err := h.svc.EndBreak(context.Background(), attendance.BreakEndRequest{
		UserID: "staff-1",
		Role:   user.RoleStaff,
	})
	require.NoError(t, err)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, "12:45", *ended.EndTime)

	// The break is stored on the record itself, not as a break row.
	rec, err := h.attendance.GetByUserAndDate(context.Background(), "staff-1", "2024-06-03")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.BreakStart)
	require.NotNil(t, rec.BreakEnd)

	_, err = h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "staff-1",
		Role:   user.RoleStaff,
	})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyTaken)
}

// racingBreakRepo lets the sweep commit between the service's read of the
// open break and its close, the interleaving the end_time IS NULL guard
// exists for.
type racingBreakRepo struct {
	*fakeBreakRepo
	sweepAt time.Time
}

func (r *racingBreakRepo) Close(ctx context.Context, id string, end time.Time, durationMinutes int, autoClosed bool) (bool, error) {
	if _, err := r.fakeBreakRepo.CloseExpired(ctx, r.sweepAt); err != nil {
		return false, err
	}
	return r.fakeBreakRepo.Close(ctx, id, end, durationMinutes, autoClosed)
}

func TestEndBreakLosesRaceAgainstSweep(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		UserID:      "worker-1",
		Role:        user.RoleWorker,
		ServiceType: attendance.ServiceHome,
	})
	require.NoError(t, err)

	h.setClock(12, 0)
	started, err := h.svc.StartBreak(context.Background(), attendance.BreakStartRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)

	// Past the deadline, with the sweep winning the close.
	h.setClock(13, 5)
	h.svc.BreakRepository = &racingBreakRepo{fakeBreakRepo: h.breaks, sweepAt: h.clock}

	// The manual close loses, observes the auto-closed break, and returns it.
	ended, err := h.svc.EndBreak(context.Background(), attendance.BreakEndRequest{
		UserID: "worker-1",
		Role:   user.RoleWorker,
	})
	require.NoError(t, err)
	assert.Equal(t, started.ID, ended.ID)
	assert.True(t, ended.AutoClosed)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 60, *ended.DurationMinutes)
}
