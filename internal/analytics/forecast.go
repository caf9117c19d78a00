package analytics

import "fmt"

const (
	forecastPoints = 8
	actualPoints   = 4
)

type ForecastLines struct {
	Actual   []*float64 `json:"actual"`
	Forecast []*float64 `json:"forecast"`
}

// ForecastSeries holds eight weekly points. Actual covers indices 0..3 and
// Forecast 3..7; both carry the same value at index 3.
type ForecastSeries struct {
	Labels []string      `json:"labels"`
	Series ForecastLines `json:"series"`
}

// CashForecastSeries walks the current position forward by a weekly delta
// derived from the first month of the cash flow analysis.
func (e *Engine) CashForecastSeries(documents []Document) ForecastSeries {
	const component = "ForecastSeries"

	current := e.currentPosition(documents)
	weekly := e.monthlyNetChange(documents) / 4
	if weekly == 0 {
		weekly = e.cfg.DefaultWeeklyChange
	}

	out := ForecastSeries{
		Labels: make([]string, forecastPoints),
		Series: ForecastLines{
			Actual:   make([]*float64, forecastPoints),
			Forecast: make([]*float64, forecastPoints),
		},
	}
	for i := range out.Labels {
		out.Labels[i] = fmt.Sprintf("Week %d", i+1)
	}

	running := current
	for i := 0; i < actualPoints; i++ {
		if i > 0 {
			running += weekly
		}
		out.Series.Actual[i] = ptr(running)
	}
	out.Series.Forecast[actualPoints-1] = ptr(running)
	for i := actualPoints; i < forecastPoints; i++ {
		running += weekly
		out.Series.Forecast[i] = ptr(running)
	}

	e.appLogger.Info(component, "forecast built: start=%.2f weeklyChange=%.2f", current, weekly)
	return out
}

func (e *Engine) monthlyNetChange(documents []Document) float64 {
	doc, ok := Find(documents, e.cfg.CashFlowAnalysis)
	if !ok {
		return 0
	}
	t := TableFor(doc)
	if !t.Has(ColNetCashFlow) || t.Len() == 0 {
		return 0
	}
	return t.Numeric(ColNetCashFlow)[0]
}

func ptr(f float64) *float64 {
	return &f
}
