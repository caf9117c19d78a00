package analytics

import (
	"github.com/farxc/cash-insights/internal/logger"
	"gonum.org/v1/gonum/floats"
)

// Scenario scales monthly collections and expenses before they are netted.
type Scenario struct {
	Name             string
	CollectionFactor float64
	ExpenseFactor    float64
}

var (
	OptimisticScenario  = Scenario{Name: "Optimistic", CollectionFactor: 1.15, ExpenseFactor: 0.95}
	ExpectedScenario    = Scenario{Name: "Expected", CollectionFactor: 1, ExpenseFactor: 1}
	PessimisticScenario = Scenario{Name: "Pessimistic", CollectionFactor: 0.85, ExpenseFactor: 1.10}
)

// Net is the scenario's cash movement for one month.
func (s Scenario) Net(collections, expenses float64) float64 {
	return s.Inflow(collections) - s.Outflow(expenses)
}

func (s Scenario) Inflow(collections float64) float64 { return collections * s.CollectionFactor }
func (s Scenario) Outflow(expenses float64) float64   { return expenses * s.ExpenseFactor }

type Config struct {
	BankSummary      Matcher
	CashFlowAnalysis Matcher
	Receivables      Matcher
	ExpenseForecast  Matcher
	MonthlyForecast  Matcher

	// ForecastPeriod selects the cash-flow-analysis row used as the 30 day forecast.
	ForecastPeriod string
	// DefaultWeeklyChange is used when the monthly net cash flow is exactly zero.
	DefaultWeeklyChange float64

	Optimistic  Scenario
	Expected    Scenario
	Pessimistic Scenario

	HighShortfall   float64
	MediumShortfall float64
}

func DefaultConfig() Config {
	return Config{
		BankSummary:         SubstringMatcher{Target: DatasetBankSummary},
		CashFlowAnalysis:    SubstringMatcher{Target: DatasetCashFlowAnalysis},
		Receivables:         SubstringMatcher{Target: DatasetReceivables},
		ExpenseForecast:     SubstringMatcher{Target: DatasetExpenseForecast},
		MonthlyForecast:     SubstringMatcher{Target: DatasetMonthlyForecast},
		ForecastPeriod:      "Jan 2025",
		DefaultWeeklyChange: 400000,
		Optimistic:          OptimisticScenario,
		Expected:            ExpectedScenario,
		Pessimistic:         PessimisticScenario,
		HighShortfall:       200000,
		MediumShortfall:     100000,
	}
}

// Engine computes dashboard figures from uploaded documents. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	cfg       Config
	appLogger *logger.Logger
}

func NewEngine(cfg Config, appLogger *logger.Logger) *Engine {
	if appLogger == nil {
		appLogger = logger.NewNop()
	}
	return &Engine{cfg: cfg, appLogger: appLogger}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// currentPosition is the sum of the bank summary's net amounts, 0 when absent.
func (e *Engine) currentPosition(documents []Document) float64 {
	const component = "CurrentPosition"

	doc, ok := Find(documents, e.cfg.BankSummary)
	if !ok {
		e.appLogger.Debug(component, "bank summary not found: documents=%d", len(documents))
		return 0
	}
	t := TableFor(doc)
	if !t.Has(ColNetAmount) {
		e.appLogger.Warn(component, "bank summary lacks column: file=%s column=%s", doc.Filename, ColNetAmount)
		return 0
	}
	return floats.Sum(t.Numeric(ColNetAmount))
}

// monthlySeries returns collections and expenses by month. ok is false unless
// both sources are present with their month and value columns and at least one row.
func (e *Engine) monthlySeries(documents []Document) (collections, expenses []LabeledValue, ok bool) {
	const component = "MonthlySeries"

	collectionsDoc, foundIn := Find(documents, e.cfg.MonthlyForecast)
	expensesDoc, foundOut := Find(documents, e.cfg.ExpenseForecast)
	if !foundIn || !foundOut {
		e.appLogger.Debug(component, "monthly sources missing: collections=%t expenses=%t", foundIn, foundOut)
		return nil, nil, false
	}

	in := TableFor(collectionsDoc)
	out := TableFor(expensesDoc)
	if !in.Has(ColMonth, ColTotalCollections) || !out.Has(ColMonth, ColTotalExpenses) {
		e.appLogger.Warn(component, "monthly sources lack columns: collections=%s expenses=%s", collectionsDoc.Filename, expensesDoc.Filename)
		return nil, nil, false
	}
	if in.Len() == 0 || out.Len() == 0 {
		return nil, nil, false
	}
	return in.LabeledValues(ColMonth, ColTotalCollections), out.LabeledValues(ColMonth, ColTotalExpenses), true
}
