package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/domain/report"
)

type fakeReportRepo struct {
	records []attendance.Record
}

func (f *fakeReportRepo) ListMonthRecords(_ context.Context, userID string, year int, month int) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.UserID == userID && r.Date.Year() == year && int(r.Date.Month()) == month {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeBreakSums struct {
	attendance.BreakRepository
	sums map[string]int
}

func (f *fakeBreakSums) SumDurationByAttendance(_ context.Context, attendanceIDs []string) (map[string]int, error) {
	out := make(map[string]int)
	for _, id := range attendanceIDs {
		if v, ok := f.sums[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func workerRecord(id string, day int, clockIn, clockOut string) attendance.Record {
	loc := time.UTC
	date := time.Date(2024, 6, day, 0, 0, 0, 0, loc)
	role := "worker"
	rec := attendance.Record{
		ID:       id,
		UserID:   "worker-1",
		Date:     date,
		Status:   attendance.StatusNormal,
		UserRole: &role,
	}
	if clockIn != "" {
		m, _ := attendance.ParseMinutes(clockIn)
		t := m.At(date, loc)
		rec.ClockIn = &t
	}
	if clockOut != "" {
		m, _ := attendance.ParseMinutes(clockOut)
		t := m.At(date, loc)
		rec.ClockOut = &t
	}
	return rec
}

func newService(records []attendance.Record, sums map[string]int) report.ReportService {
	return NewReportService(
		&fakeReportRepo{records: records},
		&fakeBreakSums{sums: sums},
	)
}

func TestComputeMonthSingleDay(t *testing.T) {
	// 09:00 to 15:45 with a 60-minute break: 6.75h gross, 5.75h net.
	svc := newService(
		[]attendance.Record{workerRecord("att-1", 3, "09:00", "15:45")},
		map[string]int{"att-1": 60},
	)

	resp, err := svc.ComputeMonth(context.Background(), report.MonthlyRequest{
		UserID: "worker-1",
		Year:   2024,
		Month:  6,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Summary.WorkingDays)
	assert.Equal(t, 5.75, resp.Summary.TotalNetHours)
	assert.Len(t, resp.Days, 30)
	require.Len(t, resp.Records, 1)

	day := resp.Days[2]
	assert.Equal(t, "2024-06-03", day.Date)
	assert.True(t, day.Worked)
	assert.Equal(t, 5.75, day.NetHours)

	assert.False(t, resp.Days[0].Worked)
	assert.Zero(t, resp.Days[0].NetHours)
}

func TestComputeMonthMultipleDays(t *testing.T) {
	svc := newService(
		[]attendance.Record{
			workerRecord("att-1", 3, "09:00", "15:45"),
			workerRecord("att-2", 4, "09:00", "12:00"),
			workerRecord("att-3", 5, "09:00", ""), // no clock-out yet
		},
		map[string]int{"att-1": 60},
	)

	resp, err := svc.ComputeMonth(context.Background(), report.MonthlyRequest{
		UserID: "worker-1",
		Year:   2024,
		Month:  6,
	})
	require.NoError(t, err)

	// The open day counts toward working days but contributes no hours.
	assert.Equal(t, 3, resp.Summary.WorkingDays)
	assert.Equal(t, 5.75+3.0, resp.Summary.TotalNetHours)
	assert.True(t, resp.Days[4].Worked)
	assert.Zero(t, resp.Days[4].NetHours)
}

func TestComputeMonthQuarterRounding(t *testing.T) {
	// 09:00 to 15:40 minus a 30-minute break: 6h10m net, rounds to 6.25.
	svc := newService(
		[]attendance.Record{workerRecord("att-1", 3, "09:00", "15:40")},
		map[string]int{"att-1": 30},
	)

	resp, err := svc.ComputeMonth(context.Background(), report.MonthlyRequest{
		UserID: "worker-1",
		Year:   2024,
		Month:  6,
	})
	require.NoError(t, err)
	assert.Equal(t, 6.25, resp.Summary.TotalNetHours)
}

func TestComputeMonthStaffFixedBreak(t *testing.T) {
	loc := time.UTC
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, loc)
	role := "staff"
	clockIn := time.Date(2024, 6, 3, 9, 0, 0, 0, loc)
	clockOut := time.Date(2024, 6, 3, 17, 0, 0, 0, loc)
	breakStart := time.Date(2024, 6, 3, 12, 0, 0, 0, loc)
	breakEnd := time.Date(2024, 6, 3, 12, 40, 0, 0, loc)

	rec := attendance.Record{
		ID:         "att-1",
		UserID:     "staff-1",
		Date:       date,
		ClockIn:    &clockIn,
		ClockOut:   &clockOut,
		BreakStart: &breakStart,
		BreakEnd:   &breakEnd,
		Status:     attendance.StatusNormal,
		UserRole:   &role,
	}

	svc := newService([]attendance.Record{rec}, nil)
	resp, err := svc.ComputeMonth(context.Background(), report.MonthlyRequest{
		UserID: "staff-1",
		Year:   2024,
		Month:  6,
	})
	require.NoError(t, err)

	// Staff breaks bill as the fixed 60-minute window regardless of the
	// recorded span: 8h gross minus 1h.
	assert.Equal(t, 7.0, resp.Summary.TotalNetHours)
}

func TestComputeMonthEmptyMonth(t *testing.T) {
	svc := newService(nil, nil)

	resp, err := svc.ComputeMonth(context.Background(), report.MonthlyRequest{
		UserID: "worker-1",
		Year:   2024,
		Month:  2,
	})
	require.NoError(t, err)
	assert.Zero(t, resp.Summary.WorkingDays)
	assert.Zero(t, resp.Summary.TotalNetHours)
	assert.Len(t, resp.Days, 29) // 2024 is a leap year
	assert.Empty(t, resp.Records)
}

func TestComputeMonthValidation(t *testing.T) {
	svc := newService(nil, nil)

	_, err := svc.ComputeMonth(context.Background(), report.MonthlyRequest{
		UserID: "worker-1",
		Year:   2024,
		Month:  13,
	})
	require.Error(t, err)

	_, err = svc.ComputeMonth(context.Background(), report.MonthlyRequest{
		Year:  2024,
		Month: 6,
	})
	require.Error(t, err)
}
