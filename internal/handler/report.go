package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/logging"
	"github.com/finledger/backend/internal/service/report"
)

type reportService interface {
	BalanceAsOf(ctx context.Context, companyID uuid.UUID, asOf time.Time) ([]report.AccountBalance, error)
	FlowByClassification(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]report.ClassificationFlow, error)
	MonthlySummary(ctx context.Context, companyID uuid.UUID, year int) ([]report.MonthFlow, error)
	OpenItemAging(ctx context.Context, companyID uuid.UUID, today time.Time) (*report.Aging, error)
}

type ReportHandler struct {
	reports reportService
}

func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Balance(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	asOf := time.Now().UTC()
	if s := r.URL.Query().Get("as_of"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "as_of", Message: "must be YYYY-MM-DD"}})
			return
		}
		asOf = t
	}

	balances, err := h.reports.BalanceAsOf(r.Context(), companyID, asOf)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute balance report", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, balances)
}

func (h *ReportHandler) CashFlow(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "from", Message: "must be YYYY-MM-DD"}})
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "to", Message: "must be YYYY-MM-DD"}})
		return
	}

	flows, err := h.reports.FlowByClassification(r.Context(), companyID, from, to)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute cash flow report", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, flows)
}

func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "year", Message: "required"}})
		return
	}

	months, err := h.reports.MonthlySummary(r.Context(), companyID, year)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute monthly report", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, months)
}

func (h *ReportHandler) Aging(w http.ResponseWriter, r *http.Request) {
	companyID, appErr := tenantFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	aging, err := h.reports.OpenItemAging(r.Context(), companyID, time.Now().UTC())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to compute aging report", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, aging)
}
