package http

import (
	"net/http"
	"strconv"

	"github.com/hikari-care/attendance-backend-go/internal/domain/audit"
	"github.com/hikari-care/attendance-backend-go/internal/handler/http/response"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	correctionService audit.CorrectionService
}

func NewAuditHandler(correctionService audit.CorrectionService) AuditHandler {
	return &auditHandlerImpl{
		correctionService: correctionService,
	}
}

// List implements AuditHandler.
func (h *auditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := audit.ListFilter{
		Page:  1,
		Limit: 20,
	}
	if v := q.Get("admin_id"); v != "" {
		filter.AdminID = &v
	}
	if v := q.Get("action_type"); v != "" {
		filter.ActionType = &v
	}
	if v := q.Get("target_id"); v != "" {
		filter.TargetID = &v
	}
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 100 {
			filter.Limit = limit
		}
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.ListEntries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Entries, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
	})
}
