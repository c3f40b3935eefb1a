package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/FACorreiaa/sales-dashboard/internal/domain/dashboard"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/sheet"
	"github.com/FACorreiaa/sales-dashboard/internal/domain/workbook"
)

// Error codes
const (
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeSourceTimeout     = "SOURCE_TIMEOUT"
	CodeSheetNotFound     = "SHEET_NOT_FOUND"
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeInternalError     = "INTERNAL_SERVER_ERROR"
)

// Meta accompanies every successful response. IsSample is copied from the
// payload's source so clients can check one place.
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
	IsSample  bool      `json:"is_sample"`
	Notice    string    `json:"notice,omitempty"`
}

// SuccessResponse is the envelope of every successful response
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes data with its source marker. count is omitted when negative.
func respond(w http.ResponseWriter, r *http.Request, data any, src dashboard.Source, count int) {
	meta := Meta{
		RequestID: requestID(r),
		Timestamp: time.Now().UTC(),
		IsSample:  src.IsSample,
		Notice:    src.Notice,
	}
	if count >= 0 {
		meta.Count = &count
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Data: data, Meta: meta})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: requestID(r),
		Timestamp: time.Now().UTC(),
	}})
}

// fail maps a service error to its status and code
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workbook.ErrTimeout):
		respondError(w, r, http.StatusGatewayTimeout, CodeSourceTimeout, err.Error())
	case errors.Is(err, workbook.ErrSourceUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, CodeSourceUnavailable, err.Error())
	case errors.Is(err, sheet.ErrSheetNotFound):
		respondError(w, r, http.StatusNotFound, CodeSheetNotFound, err.Error())
	case errors.Is(err, dashboard.ErrInvalidQuery):
		respondError(w, r, http.StatusBadRequest, CodeInvalidParameter, err.Error())
	default:
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		respondError(w, r, http.StatusInternalServerError, CodeInternalError, "internal server error")
	}
}
