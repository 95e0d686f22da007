package audit

import (
	"context"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/validator"
)

// CorrectionService is the privileged write path: administrators mutate or
// delete historical attendance records, and every mutation lands together
// with its audit entry or not at all.
type CorrectionService interface {
	// Correct applies changes to an existing record, or creates one when the
	// selector is a (user, date) pair with no record yet.
	Correct(ctx context.Context, req CorrectRequest) (attendance.RecordResponse, error)

	// Delete removes a record and its break rows. Linked daily-report or
	// comment data is left in place and reported as warnings.
	Delete(ctx context.Context, req DeleteRequest) (DeleteResult, error)

	// ListEntries reads the append-only audit log.
	ListEntries(ctx context.Context, filter ListFilter) (ListResponse, error)
}

// Changes is the subset of record fields a correction may touch. A nil field
// is untouched; an empty string clears a clock field to null. Clock fields
// are "15:04" strings placed on the record's date.
type Changes struct {
	ClockIn    *string `json:"clock_in,omitempty"`
	ClockOut   *string `json:"clock_out,omitempty"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
	Status     *string `json:"status,omitempty"`
}

func (c Changes) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	checkClock := func(field string, v *string) {
		if v == nil || *v == "" {
			return
		}
		if _, ok := validator.IsValidClockTime(*v); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be in HH:MM format",
			})
		}
	}
	checkClock("clock_in", c.ClockIn)
	checkClock("clock_out", c.ClockOut)
	checkClock("break_start", c.BreakStart)
	checkClock("break_end", c.BreakEnd)

	if c.Status != nil && !attendance.Status(*c.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "unknown status",
		})
	}

	return errs
}

// CorrectRequest selects a record either by id, or by (user_id, date) for a
// date that has no record yet.
type CorrectRequest struct {
	AdminID   string  `json:"-"`
	IPAddress *string `json:"-"`
	RecordID  *string `json:"record_id,omitempty"`
	UserID    *string `json:"user_id,omitempty"`
	Date      *string `json:"date,omitempty"`
	Changes   Changes `json:"changes"`
	Reason    string  `json:"reason"`
}

func (r *CorrectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AdminID) {
		errs = append(errs, validator.ValidationError{
			Field:   "admin_id",
			Message: "admin_id is required",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	hasID := r.RecordID != nil && !validator.IsEmpty(*r.RecordID)
	hasKey := r.UserID != nil && !validator.IsEmpty(*r.UserID) && r.Date != nil && !validator.IsEmpty(*r.Date)
	if !hasID && !hasKey {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "either record_id or user_id plus date is required",
		})
	}

	if r.Date != nil && !validator.IsEmpty(*r.Date) {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	errs = r.Changes.validate(errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DeleteRequest struct {
	AdminID   string  `json:"-"`
	IPAddress *string `json:"-"`
	RecordID  string  `json:"-"`
	Reason    string  `json:"reason"`
}

func (r *DeleteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AdminID) {
		errs = append(errs, validator.ValidationError{
			Field:   "admin_id",
			Message: "admin_id is required",
		})
	}

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "record_id is required",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DeleteResult carries non-fatal warnings about linked data the deletion
// deliberately did not cascade into.
type DeleteResult struct {
	Warnings []string `json:"warnings"`
}
