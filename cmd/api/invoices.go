package main

import (
	"net/http"
	"strings"

	"github.com/farxc/cash-insights/internal/analytics"
	"github.com/farxc/cash-insights/internal/response"
)

const (
	defaultInvoiceLimit = 100
	maxInvoiceLimit     = 1000
)

type InvoicePage struct {
	Items []analytics.InvoiceRecord `json:"items"`
	Total int                       `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

type InvoicesResponse = response.APIResponse[InvoicePage]
type InvoiceStatsResponse = response.APIResponse[analytics.InvoiceStats]

// paginateInvoices filters by a case-insensitive status fragment and slices
// the result. page is 1-based and derived from skip and limit.
func paginateInvoices(invoices []analytics.InvoiceRecord, status string, skip, limit int) InvoicePage {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxInvoiceLimit {
		limit = defaultInvoiceLimit
	}

	filtered := invoices
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		filtered = make([]analytics.InvoiceRecord, 0, len(invoices))
		for _, inv := range invoices {
			if strings.Contains(strings.ToLower(inv.Status), status) {
				filtered = append(filtered, inv)
			}
		}
	}

	items := []analytics.InvoiceRecord{}
	if skip < len(filtered) {
		end := skip + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		items = filtered[skip:end]
	}
	return InvoicePage{
		Items: items,
		Total: len(filtered),
		Page:  skip/limit + 1,
		Limit: limit,
	}
}

// @Summary		List invoices
// @Description	Risk-scored invoices from the accounts receivable upload.
// @Tags			Invoices
// @Produce		json
// @Param			status		query		string					false	"Case-insensitive status filter"
// @Param			skip		query		int						false	"Rows to skip"	default(0)
// @Param			limit		query		int						false	"Page size"		default(100)
// @Param			documents	query		string					false	"Comma separated document ids"
// @Success		200			{object}	InvoicesResponse		"Invoices"
// @Failure		500			{object}	response.ErrorResponse	"Failed to extract invoices"
// @Router			/invoices [get]
func (app *application) handleGetInvoices(w http.ResponseWriter, r *http.Request) {
	const component = "InvoiceHandler"

	ids, err := parseIDList(r.URL.Query().Get("documents"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	invoices, err := cachedAnalytics(r.Context(), app, "invoices", ids, app.engine.Invoices)
	if err != nil {
		app.appLogger.Error(component, "Failed to extract invoices: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to extract invoices")
		return
	}

	page := paginateInvoices(invoices,
		r.URL.Query().Get("status"),
		parseIntParam(r, "skip", 0),
		parseIntParam(r, "limit", defaultInvoiceLimit))
	if err := writeJSON(w, http.StatusOK, &InvoicesResponse{Success: true, Data: page}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get invoice stats
// @Description	Receivables, at-risk amount and collection rate.
// @Tags			Invoices
// @Produce		json
// @Param			documents	query		string					false	"Comma separated document ids"
// @Success		200			{object}	InvoiceStatsResponse	"Invoice stats"
// @Router			/invoices/stats [get]
func (app *application) handleGetInvoiceStats(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(app, w, r, "invoice_stats", app.engine.InvoiceStats)
}
