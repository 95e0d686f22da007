package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/domain/report"
	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
)

// ReportServiceImpl is a pure read-side projection: it recomputes the month
// from attendance rows on every request and caches nothing.
type ReportServiceImpl struct {
	report.ReportRepository
	breakRepo attendance.BreakRepository
}

func NewReportService(reportRepo report.ReportRepository, breakRepo attendance.BreakRepository) report.ReportService {
	return &ReportServiceImpl{
		ReportRepository: reportRepo,
		breakRepo:        breakRepo,
	}
}

// ComputeMonth implements report.ReportService. Per day: gross clock span
// minus break minutes, rounded to the nearest quarter hour, summed into the
// monthly total. A record with a clock-in but no clock-out contributes zero
// hours but still counts as a working day.
func (r *ReportServiceImpl) ComputeMonth(ctx context.Context, req report.MonthlyRequest) (report.MonthlyResponse, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyResponse{}, err
	}

	records, err := r.ReportRepository.ListMonthRecords(ctx, req.UserID, req.Year, req.Month)
	if err != nil {
		return report.MonthlyResponse{}, fmt.Errorf("failed to list month records: %w", err)
	}

	workerIDs := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.UserRole != nil && user.Role(*rec.UserRole).IsWorker() {
			workerIDs = append(workerIDs, rec.ID)
		}
	}
	breakMinutes, err := r.breakRepo.SumDurationByAttendance(ctx, workerIDs)
	if err != nil {
		return report.MonthlyResponse{}, fmt.Errorf("failed to sum break minutes: %w", err)
	}

	byDate := make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		byDate[rec.Date.Format("2006-01-02")] = rec
	}

	summary := report.MonthlySummary{
		UserID: req.UserID,
		Year:   req.Year,
		Month:  req.Month,
	}

	daysInMonth := time.Date(req.Year, time.Month(req.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	days := make([]report.DaySummary, 0, daysInMonth)
	responses := make([]attendance.RecordResponse, 0, len(records))

	for dayNum := 1; dayNum <= daysInMonth; dayNum++ {
		dateStr := fmt.Sprintf("%04d-%02d-%02d", req.Year, req.Month, dayNum)
		day := report.DaySummary{Date: dateStr}

		rec, ok := byDate[dateStr]
		if ok && rec.ClockIn != nil {
			day.Worked = true
			summary.WorkingDays++
			day.NetHours = netHours(rec, breakMinutes[rec.ID])
			summary.TotalNetHours += day.NetHours
		}
		if ok {
			responses = append(responses, attendance.NewRecordResponse(rec, rec.StateWith(false)))
		}

		days = append(days, day)
	}

	return report.MonthlyResponse{
		Summary: summary,
		Days:    days,
		Records: responses,
	}, nil
}

// netHours computes one day's billed hours: gross clock span minus break
// minutes, rounded to the nearest 0.25. Staff and admin breaks are the fixed
// 60-minute window when closed; worker breaks use the recorded durations.
func netHours(rec attendance.Record, workerBreakMinutes int) float64 {
	if rec.ClockIn == nil || rec.ClockOut == nil {
		return 0
	}

	gross := rec.ClockOut.Sub(*rec.ClockIn).Minutes()
	if gross <= 0 {
		return 0
	}

	breakMins := workerBreakMinutes
	if rec.UserRole == nil || !user.Role(*rec.UserRole).IsWorker() {
		breakMins = 0
		if rec.BreakStart != nil && rec.BreakEnd != nil {
			breakMins = int(attendance.BreakCap.Minutes())
		}
	}

	net := gross - float64(breakMins)
	if net <= 0 {
		return 0
	}

	return math.Round(net/60*4) / 4
}
