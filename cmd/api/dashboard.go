package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/cash-insights/internal/analytics"
	"github.com/farxc/cash-insights/internal/cache"
	"github.com/farxc/cash-insights/internal/metrics"
	"github.com/farxc/cash-insights/internal/response"
	"github.com/farxc/cash-insights/internal/store"
)

type StatsResponse = response.APIResponse[analytics.Stats]
type ForecastResponse = response.APIResponse[analytics.ForecastSeries]
type CashFlowResponse = response.APIResponse[analytics.CashFlow]
type ScenarioResponse = response.APIResponse[analytics.ScenarioAnalysis]
type ShortfallsResponse = response.APIResponse[analytics.Shortfalls]

// loadDocuments fetches the documents the engine works on, most recent first,
// optionally restricted to ids.
func (app *application) loadDocuments(ctx context.Context, ids []int64) ([]analytics.Document, error) {
	const component = "DocumentLoader"

	var (
		rows []store.Document
		err  error
	)
	if len(ids) > 0 {
		rows, err = app.store.Documents.ListWithFullDataByIDs(ctx, ids)
	} else {
		rows, err = app.store.Documents.ListWithFullData(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	docs, skipped := store.ToAnalyticsAll(rows)
	if skipped > 0 {
		app.appLogger.Warn(component, "Skipped undecodable documents: count=%d", skipped)
	}
	return docs, nil
}

func cacheKey(operation string, ids []int64) string {
	if len(ids) == 0 {
		return operation
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return operation + ":" + strings.Join(parts, ",")
}

// cachedAnalytics returns the result of compute over the selected documents,
// from the cache when possible. The key only covers operation and ids, so
// request-specific shaping belongs after this call.
func cachedAnalytics[T any](ctx context.Context, app *application, operation string, ids []int64, compute func([]analytics.Document) T) (T, error) {
	start := time.Now()
	defer metrics.ObserveComputation(operation, start)

	return cache.GetOrCompute(ctx, app.cache, cacheKey(operation, ids), metrics.ObserveCacheLookup, func() (T, error) {
		docs, err := app.loadDocuments(ctx, ids)
		if err != nil {
			var zero T
			return zero, err
		}
		return compute(docs), nil
	})
}

// serveAnalytics answers a dashboard request from the cache, computing and
// caching the result on a miss.
func serveAnalytics[T any](app *application, w http.ResponseWriter, r *http.Request, operation string, compute func([]analytics.Document) T) {
	const component = "Dashboard"

	ids, err := parseIDList(r.URL.Query().Get("documents"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := cachedAnalytics(r.Context(), app, operation, ids, compute)
	if err != nil {
		app.appLogger.Error(component, "Failed to compute %s: %v", operation, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to compute "+operation)
		return
	}

	if err := writeJSON(w, http.StatusOK, &response.APIResponse[T]{Success: true, Data: data}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get dashboard stats
// @Description	Current cash position, 30 day forecast, at-risk invoices and cash runway.
// @Tags			Dashboard
// @Produce		json
// @Param			documents	query		string					false	"Comma separated document ids to restrict the computation to"
// @Success		200			{object}	StatsResponse			"Stats"
// @Failure		500			{object}	response.ErrorResponse	"Failed to compute stats"
// @Router			/dashboard/stats [get]
func (app *application) handleGetDashboardStats(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(app, w, r, "stats", app.engine.CalculateStats)
}

// @Summary		Get cash forecast
// @Description	Eight weekly points of actual and forecast cash position.
// @Tags			Dashboard
// @Produce		json
// @Param			documents	query		string					false	"Comma separated document ids"
// @Success		200			{object}	ForecastResponse		"Forecast series"
// @Failure		500			{object}	response.ErrorResponse	"Failed to compute forecast"
// @Router			/dashboard/forecast [get]
func (app *application) handleGetCashForecast(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(app, w, r, "forecast", app.engine.CashForecastSeries)
}

// @Summary		Get cash flow
// @Description	Monthly inflows against outflows.
// @Tags			Dashboard
// @Produce		json
// @Param			documents	query		string					false	"Comma separated document ids"
// @Success		200			{object}	CashFlowResponse		"Cash flow"
// @Router			/dashboard/flow [get]
func (app *application) handleGetCashFlow(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(app, w, r, "flow", app.engine.CashFlow)
}

// @Summary		Get scenario analysis
// @Description	Cumulative balance per month under optimistic, expected and pessimistic assumptions.
// @Tags			Dashboard
// @Produce		json
// @Param			documents	query		string					false	"Comma separated document ids"
// @Success		200			{object}	ScenarioResponse		"Scenarios"
// @Router			/dashboard/scenarios [get]
func (app *application) handleGetScenarioAnalysis(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(app, w, r, "scenarios", app.engine.ScenarioAnalysis)
}

// @Summary		Get cash shortfalls
// @Description	Months in which the pessimistic balance goes negative.
// @Tags			Dashboard
// @Produce		json
// @Param			documents	query		string					false	"Comma separated document ids"
// @Success		200			{object}	ShortfallsResponse		"Shortfalls"
// @Router			/dashboard/shortfalls [get]
func (app *application) handleGetCashShortfalls(w http.ResponseWriter, r *http.Request) {
	serveAnalytics(app, w, r, "shortfalls", app.engine.CashShortfalls)
}
