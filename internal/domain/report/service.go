package report

import "context"

// ReportService computes monthly attendance projections.
type ReportService interface {
	ComputeMonth(ctx context.Context, req MonthlyRequest) (MonthlyResponse, error)
}
