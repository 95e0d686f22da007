package report

import (
	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/validator"
)

// MonthlyRequest selects one user's calendar month.
type MonthlyRequest struct {
	UserID string
	Year   int
	Month  int
}

func (r *MonthlyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if !validator.IsValidMonth(r.Year, r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "year/month is out of range",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DaySummary is one calendar day's contribution to the month. NetHours is
// already rounded to the nearest quarter hour.
type DaySummary struct {
	Date     string  `json:"date"`
	NetHours float64 `json:"net_hours"`
	Worked   bool    `json:"worked"`
}

// MonthlySummary is derived on demand from attendance rows and never
// persisted or cached beyond the request.
type MonthlySummary struct {
	UserID        string  `json:"user_id"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	WorkingDays   int     `json:"working_days"`
	TotalNetHours float64 `json:"total_net_hours"`
}

type MonthlyResponse struct {
	Summary MonthlySummary              `json:"summary"`
	Days    []DaySummary                `json:"days"`
	Records []attendance.RecordResponse `json:"records"`
}
