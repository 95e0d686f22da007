package audit

import (
	"encoding/json"

	"github.com/hikari-care/attendance-backend-go/internal/pkg/validator"
)

// ListFilter selects audit entries for the admin log view.
type ListFilter struct {
	AdminID    *string
	ActionType *string
	TargetID   *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.ActionType != nil && *f.ActionType != "" {
		if !validator.IsInSlice(*f.ActionType, []string{ActionAttendanceCorrection, ActionAttendanceDeletion}) {
			errs = append(errs, validator.ValidationError{
				Field:   "action_type",
				Message: "unknown action_type",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EntryResponse struct {
	ID         string          `json:"id"`
	AdminID    string          `json:"admin_id"`
	ActionType string          `json:"action_type"`
	TargetType string          `json:"target_type"`
	TargetID   string          `json:"target_id"`
	OldValue   json.RawMessage `json:"old_value"`
	NewValue   json.RawMessage `json:"new_value"`
	Reason     string          `json:"reason"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type ListResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Entries    []EntryResponse `json:"entries"`
}

func NewEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:         e.ID,
		AdminID:    e.AdminID,
		ActionType: e.ActionType,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		Reason:     e.Reason,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
