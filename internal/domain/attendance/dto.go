package attendance

import (
	"time"

	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// ClockInRequest records the start of a work day. RawTime is an optional
// "15:04" override used by kiosk clients whose clock is authoritative; when
// nil the server time is used. UserID and Role come from the verified token,
// never from the request body.
type ClockInRequest struct {
	UserID      string      `json:"-"`
	Role        user.Role   `json:"-"`
	ServiceType ServiceType `json:"service_type"`
	RawTime     *string     `json:"raw_time,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of worker, staff, admin",
		})
	}

	if r.Role.IsWorker() && !r.ServiceType.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "service_type",
			Message: "service_type must be commute or home",
		})
	}

	if r.RawTime != nil {
		if _, ok := validator.IsValidClockTime(*r.RawTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "raw_time",
				Message: "raw_time must be in HH:MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ClockOutRequest ends the work day. ForceCloseBreak is the explicit
// confirmation required when a break is still open: without it the clock-out
// fails instead of silently closing the break.
type ClockOutRequest struct {
	UserID          string    `json:"-"`
	Role            user.Role `json:"-"`
	RawTime         *string   `json:"raw_time,omitempty"`
	ForceCloseBreak bool      `json:"force_close_break"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of worker, staff, admin",
		})
	}

	if r.RawTime != nil {
		if _, ok := validator.IsValidClockTime(*r.RawTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "raw_time",
				Message: "raw_time must be in HH:MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BreakStartRequest struct {
	UserID string    `json:"-"`
	Role   user.Role `json:"-"`
}

func (r *BreakStartRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of worker, staff, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// BreakEndRequest closes the open break. AutoEnd marks a close issued by the
// sweep path: the break ends at its deadline instead of the current time.
type BreakEndRequest struct {
	UserID  string    `json:"-"`
	Role    user.Role `json:"-"`
	AutoEnd bool      `json:"auto_end"`
}

func (r *BreakEndRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of worker, staff, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// SearchFilter selects records for the daily attendance listing.
type SearchFilter struct {
	Date   string
	Role   *string
	UserID *string
}

func (f *SearchFilter) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(f.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if f.Role != nil && !user.Role(*f.Role).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of worker, staff, admin",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type RecordResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	UserName    *string `json:"user_name,omitempty"`
	Date        string  `json:"date"`
	ServiceType *string `json:"service_type,omitempty"`
	ClockIn     *string `json:"clock_in"`
	ClockOut    *string `json:"clock_out"`
	BreakStart  *string `json:"break_start"`
	BreakEnd    *string `json:"break_end"`
	Status      string  `json:"status"`
	State       string  `json:"state"`
}

type BreakResponse struct {
	ID              string  `json:"id,omitempty"`
	AttendanceID    string  `json:"attendance_id"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	AutoClosed      bool    `json:"auto_closed"`
}

// ClockToString formats a timestamp as a minute-resolution clock string.
func ClockToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("15:04")
	return &s
}

// NewRecordResponse maps a Record and its derived state to the wire shape.
func NewRecordResponse(rec Record, state State) RecordResponse {
	var serviceType *string
	if rec.ServiceType != nil {
		s := string(*rec.ServiceType)
		serviceType = &s
	}

	return RecordResponse{
		ID:          rec.ID,
		UserID:      rec.UserID,
		UserName:    rec.UserName,
		Date:        rec.Date.Format("2006-01-02"),
		ServiceType: serviceType,
		ClockIn:     ClockToString(rec.ClockIn),
		ClockOut:    ClockToString(rec.ClockOut),
		BreakStart:  ClockToString(rec.BreakStart),
		BreakEnd:    ClockToString(rec.BreakEnd),
		Status:      string(rec.Status),
		State:       string(state),
	}
}

// NewBreakResponse maps a worker break row to the wire shape.
func NewBreakResponse(br BreakRecord) BreakResponse {
	var end *string
	if br.EndTime != nil {
		s := br.EndTime.Format("15:04")
		end = &s
	}

	return BreakResponse{
		ID:              br.ID,
		AttendanceID:    br.AttendanceID,
		StartTime:       br.StartTime.Format("15:04"),
		EndTime:         end,
		DurationMinutes: br.DurationMinutes,
		AutoClosed:      br.AutoClosed,
	}
}
