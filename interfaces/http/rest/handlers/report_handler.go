package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"fintrack-backend/application/services"
	"fintrack-backend/domain/finance"
	"fintrack-backend/infrastructure/persistence/store"
	"fintrack-backend/pkg/auth"
	"fintrack-backend/pkg/common"
	"fintrack-backend/pkg/query"
)

// ReportHandler handles aggregated report requests.
type ReportHandler struct {
	reports *services.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// Summary handles GET /reports/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	dateRange, err := parseRange(r.URL.Query())
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	rows, err := h.reports.Summary(r.Context(), user.UserID, dateRange)
	if err != nil {
		h.logger.Error("failed to build summary report",
			zap.String("userId", user.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, rows)
}

// ByCategory handles GET /reports/categories
func (h *ReportHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	q := r.URL.Query()
	txType := q.Get("type")
	if txType != "" && !finance.ValidTransactionType(txType) {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "type must be expense or income")
		return
	}
	dateRange, err := parseRange(q)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	rows, err := h.reports.ByCategory(r.Context(), user.UserID, txType, dateRange)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, rows)
}

// TimeSeries handles GET /reports/timeseries
func (h *ReportHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	q := r.URL.Query()
	txType := q.Get("type")
	if txType != "" && !finance.ValidTransactionType(txType) {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "type must be expense or income")
		return
	}
	granularity, err := parseGranularity(q.Get("granularity"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}
	dateRange, err := parseRange(q)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	rows, err := h.reports.TimeSeries(r.Context(), user.UserID, txType, dateRange, granularity)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, rows)
}

// parseRange reads startDate/endDate (RFC 3339 or YYYY-MM-DD) or a named
// preset from the query string. The preset wins when both are supplied.
func parseRange(q url.Values) (query.DateRange, error) {
	if preset := q.Get("preset"); preset != "" {
		return query.Preset(preset), nil
	}
	var r query.DateRange
	if s := q.Get("startDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return r, fmt.Errorf("startDate must be RFC 3339 or YYYY-MM-DD")
		}
		r.Start = &t
	}
	if s := q.Get("endDate"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return r, fmt.Errorf("endDate must be RFC 3339 or YYYY-MM-DD")
		}
		r.End = &t
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, fmt.Errorf("endDate must not be before startDate")
	}
	return r, nil
}

func parseGranularity(s string) (store.Granularity, error) {
	switch s {
	case "", string(store.Daily):
		return store.Daily, nil
	case string(store.Weekly):
		return store.Weekly, nil
	case string(store.Monthly):
		return store.Monthly, nil
	default:
		return "", fmt.Errorf("granularity must be day, week, or month")
	}
}
