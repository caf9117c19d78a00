package analytics

import (
	"strings"

	"gonum.org/v1/gonum/stat"
)

const (
	// RunwaySafe is reported when the business is not burning cash.
	RunwaySafe = 999
	// RunwayUnbounded caps runways of ten years or more.
	RunwayUnbounded = 9999

	runwayCapDays = 3650
)

type Stats struct {
	Current              float64 `json:"current"`
	Forecast30Day        float64 `json:"forecast30Day"`
	AtRiskInvoices       float64 `json:"atRiskInvoices"`
	CashRunwayDays       int     `json:"cashRunwayDays"`
	OverdueInvoicesCount int     `json:"overdueInvoicesCount"`
}

// CalculateStats computes the headline cash metrics. Each metric falls back to
// zero on its own when its source document or columns are missing.
func (e *Engine) CalculateStats(documents []Document) Stats {
	const component = "StatsEngine"

	var stats Stats
	stats.Current = e.currentPosition(documents)
	stats.Forecast30Day = e.forecast30Day(documents)
	stats.AtRiskInvoices, stats.OverdueInvoicesCount = e.atRiskInvoices(documents)
	stats.CashRunwayDays = e.cashRunway(documents, stats.Current)

	e.appLogger.Info(component, "stats computed: current=%.2f forecast30Day=%.2f atRisk=%.2f overdue=%d runwayDays=%d",
		stats.Current, stats.Forecast30Day, stats.AtRiskInvoices, stats.OverdueInvoicesCount, stats.CashRunwayDays)
	return stats
}

func (e *Engine) forecast30Day(documents []Document) float64 {
	doc, ok := Find(documents, e.cfg.CashFlowAnalysis)
	if !ok {
		return 0
	}
	t := TableFor(doc)
	if !t.Has(ColMonth, ColNetCashFlow) {
		return 0
	}

	period := strings.ToLower(e.cfg.ForecastPeriod)
	values := t.Numeric(ColNetCashFlow)
	for i := 0; i < t.Len(); i++ {
		if strings.Contains(strings.ToLower(t.Str(ColMonth, i)), period) {
			return values[i]
		}
	}
	return 0
}

// atRiskInvoices sums balance due over active invoices that are past due.
func (e *Engine) atRiskInvoices(documents []Document) (float64, int) {
	doc, ok := Find(documents, e.cfg.Receivables)
	if !ok {
		return 0, 0
	}
	t := TableFor(doc)
	if !t.Has(ColStatus, ColDaysPastDue, ColBalanceDue) {
		return 0, 0
	}
	return sumPastDue(t.FilterIn(ColStatus, activeStatuses))
}

func sumPastDue(active *Table) (float64, int) {
	var total float64
	var count int
	dpd := active.Numeric(ColDaysPastDue)
	balance := active.Numeric(ColBalanceDue)
	for i := range dpd {
		if dpd[i] > 0 {
			total += balance[i]
			count++
		}
	}
	return total, count
}

// cashRunway converts the average monthly burn into days of runway. It returns
// 0 when the expense forecast is unavailable.
func (e *Engine) cashRunway(documents []Document, current float64) int {
	const component = "StatsEngine"

	doc, ok := Find(documents, e.cfg.ExpenseForecast)
	if !ok {
		return 0
	}
	t := TableFor(doc)
	if !t.Has(ColTotalExpenses, ColEstimatedRevenue) {
		return 0
	}

	var burn float64
	if t.Len() > 0 {
		burn = stat.Mean(t.Numeric(ColTotalExpenses), nil) - stat.Mean(t.Numeric(ColEstimatedRevenue), nil)
	}
	e.appLogger.Debug(component, "average monthly burn=%.2f", burn)

	if burn <= 0 || current <= 0 {
		return RunwaySafe
	}
	days := current / burn * 30
	if days >= runwayCapDays {
		return RunwayUnbounded
	}
	return int(days)
}
