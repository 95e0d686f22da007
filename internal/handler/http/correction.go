package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hikari-care/attendance-backend-go/internal/domain/audit"
	"github.com/hikari-care/attendance-backend-go/internal/handler/http/response"
)

type CorrectionHandler interface {
	Correct(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService audit.CorrectionService
}

func NewCorrectionHandler(correctionService audit.CorrectionService) CorrectionHandler {
	return &correctionHandlerImpl{
		correctionService: correctionService,
	}
}

func clientIP(r *http.Request) *string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return nil
	}
	return &host
}

// Correct implements CorrectionHandler.
func (h *correctionHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	adminID, _, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req audit.CorrectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode correction request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AdminID = adminID
	req.IPAddress = clientIP(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.correctionService.Correct(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// Delete implements CorrectionHandler.
func (h *correctionHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	adminID, _, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req audit.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode deletion request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AdminID = adminID
	req.RecordID = chi.URLParam(r, "id")
	req.IPAddress = clientIP(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Delete(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
