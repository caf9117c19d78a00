package analytics

type ScenarioLines struct {
	Optimistic  []float64 `json:"optimistic"`
	Expected    []float64 `json:"expected"`
	Pessimistic []float64 `json:"pessimistic"`
}

// ScenarioAnalysis holds one cumulative balance per month for each scenario.
type ScenarioAnalysis struct {
	Labels []string      `json:"labels"`
	Series ScenarioLines `json:"series"`
}

type CashFlowLines struct {
	Inflows  []float64 `json:"inflows"`
	Outflows []float64 `json:"outflows"`
}

// CashFlow is monthly collections against expenses.
type CashFlow struct {
	Labels []string      `json:"labels"`
	Series CashFlowLines `json:"series"`
}

// ScenarioAnalysis projects the current position through the merged monthly
// series under each scenario. The result is empty unless both monthly sources
// are available.
func (e *Engine) ScenarioAnalysis(documents []Document) ScenarioAnalysis {
	const component = "ScenarioEngine"

	out := ScenarioAnalysis{
		Labels: []string{},
		Series: ScenarioLines{Optimistic: []float64{}, Expected: []float64{}, Pessimistic: []float64{}},
	}
	collections, expenses, ok := e.monthlySeries(documents)
	if !ok {
		return out
	}

	current := e.currentPosition(documents)
	runOpt, runExp, runPess := current, current, current
	for _, p := range MergeMonthly(collections, expenses) {
		runOpt += e.cfg.Optimistic.Net(p.Collections, p.Expenses)
		runExp += e.cfg.Expected.Net(p.Collections, p.Expenses)
		runPess += e.cfg.Pessimistic.Net(p.Collections, p.Expenses)

		out.Labels = append(out.Labels, p.Label)
		out.Series.Optimistic = append(out.Series.Optimistic, runOpt)
		out.Series.Expected = append(out.Series.Expected, runExp)
		out.Series.Pessimistic = append(out.Series.Pessimistic, runPess)
	}

	e.appLogger.Info(component, "scenarios built: periods=%d start=%.2f", len(out.Labels), current)
	return out
}

// CashFlow returns merged monthly inflows and outflows without projection.
func (e *Engine) CashFlow(documents []Document) CashFlow {
	out := CashFlow{
		Labels: []string{},
		Series: CashFlowLines{Inflows: []float64{}, Outflows: []float64{}},
	}
	collections, expenses, ok := e.monthlySeries(documents)
	if !ok {
		return out
	}
	for _, p := range MergeMonthly(collections, expenses) {
		out.Labels = append(out.Labels, p.Label)
		out.Series.Inflows = append(out.Series.Inflows, p.Collections)
		out.Series.Outflows = append(out.Series.Outflows, p.Expenses)
	}
	return out
}
