package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hikari-care/attendance-backend-go/internal/domain/attendance"
	"github.com/hikari-care/attendance-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	BreakStart(w http.ResponseWriter, r *http.Request)
	BreakEnd(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode clock-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = userID
	req.Role = role

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in successfully", record)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode clock-out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = userID
	req.Role = role

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// BreakStart implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakStart(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	req := attendance.BreakStartRequest{
		UserID: userID,
		Role:   role,
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	brk, err := h.attendanceService.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Break started", brk)
}

// BreakEnd implements AttendanceHandler.
func (h *attendanceHandlerImpl) BreakEnd(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.BreakEndRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Failed to decode break-end request", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.UserID = userID
	req.Role = role

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	brk, err := h.attendanceService.EndBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, brk)
}

// Search implements AttendanceHandler.
func (h *attendanceHandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	filter := attendance.SearchFilter{
		Date: r.URL.Query().Get("date"),
	}
	if role := r.URL.Query().Get("role"); role != "" {
		filter.Role = &role
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		filter.UserID = &userID
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.Search(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}
