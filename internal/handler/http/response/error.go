package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/domain/audit"
	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
	"github.com/hikari-care/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in for this date")
	case errors.Is(err, attendance.ErrNotClockedIn):
		Conflict(w, "Not clocked in yet")
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "Already clocked out")
	case errors.Is(err, attendance.ErrBreakAlreadyOpen):
		Conflict(w, "A break is already in progress")
	case errors.Is(err, attendance.ErrBreakAlreadyTaken):
		Conflict(w, "Break has already been taken today")
	case errors.Is(err, attendance.ErrNoOpenBreak):
		Conflict(w, "No break in progress")
	case errors.Is(err, attendance.ErrBreakStillOpen):
		Conflict(w, "A break is still open")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrConcurrentUpdate):
		TooManyRequests(w, "Record is being updated, please retry")
	case errors.Is(err, attendance.ErrInvalidClockTime):
		BadRequest(w, "Invalid clock time", nil)
	case errors.Is(err, audit.ErrReasonRequired):
		BadRequest(w, "Correction reason is required", nil)
	case errors.Is(err, audit.ErrEntryNotFound):
		NotFound(w, "Audit entry not found")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrStaffAccessRequired):
		Forbidden(w, "Staff access required")
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
