package controllers

import (
	"net/http"

	"github.com/robml/dbaccounting/api/responses"
	"github.com/robml/dbaccounting/internal/reports"
	"github.com/robml/dbaccounting/pkg/logger"
)

// ReportSummary returns record counts for the landing view.
func ReportSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ReportBalanceSheet returns the dated snapshot with per-root roll-ups.
func ReportBalanceSheet(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sheet, err := svc.BalanceSheet(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sheet)
	}
}
