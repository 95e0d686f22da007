package http

import (
	"net/http"
	"strconv"

	"github.com/hikari-care/attendance-backend-go/internal/domain/report"
	"github.com/hikari-care/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	Monthly(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// Monthly implements ReportHandler.
func (h *reportHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, role, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	// Workers can only view their own month. Staff and admins may pass a
	// user_id to view someone else's.
	target := userID
	if v := q.Get("user_id"); v != "" && v != userID {
		if role.IsWorker() {
			response.Forbidden(w, "Staff access required")
			return
		}
		target = v
	}

	year, _ := strconv.Atoi(q.Get("year"))
	month, _ := strconv.Atoi(q.Get("month"))

	req := report.MonthlyRequest{
		UserID: target,
		Year:   year,
		Month:  month,
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.ComputeMonth(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
