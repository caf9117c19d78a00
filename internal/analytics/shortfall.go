package analytics

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ShortfallPeriod is a month in which the pessimistic balance is negative.
type ShortfallPeriod struct {
	Period            string   `json:"period"`
	ShortfallAmount   float64  `json:"shortfallAmount"`
	Priority          Priority `json:"priority"`
	ClosingBalance    float64  `json:"closingBalance"`
	ProjectedInflows  float64  `json:"projectedInflows"`
	ProjectedOutflows float64  `json:"projectedOutflows"`
	NetCashFlow       float64  `json:"netCashFlow"`
	KeyDrivers        []string `json:"keyDrivers"`
}

type Shortfalls struct {
	Periods        []ShortfallPeriod `json:"periods"`
	TotalShortfall float64           `json:"totalShortfall"`
	HasShortfalls  bool              `json:"hasShortfalls"`
}

var moneyPrinter = message.NewPrinter(language.English)

// CashShortfalls replays the pessimistic walk and records every month whose
// closing balance is below zero. The walk does not stop at the first breach.
func (e *Engine) CashShortfalls(documents []Document) Shortfalls {
	const component = "ShortfallDetector"

	out := Shortfalls{Periods: []ShortfallPeriod{}}
	collections, expenses, ok := e.monthlySeries(documents)
	if !ok {
		return out
	}

	scenario := e.cfg.Pessimistic
	balance := e.currentPosition(documents)
	for _, p := range MergeMonthly(collections, expenses) {
		inflow := scenario.Inflow(p.Collections)
		outflow := scenario.Outflow(p.Expenses)
		net := inflow - outflow
		balance += net
		if balance >= 0 {
			continue
		}

		amount := math.Abs(balance)
		out.Periods = append(out.Periods, ShortfallPeriod{
			Period:            p.Label,
			ShortfallAmount:   amount,
			Priority:          e.priorityFor(amount),
			ClosingBalance:    balance,
			ProjectedInflows:  inflow,
			ProjectedOutflows: outflow,
			NetCashFlow:       net,
			KeyDrivers:        keyDrivers(scenario, amount),
		})
		out.TotalShortfall += amount
	}
	out.HasShortfalls = len(out.Periods) > 0

	if out.HasShortfalls {
		e.appLogger.Warn(component, "shortfalls detected: periods=%d total=%.2f", len(out.Periods), out.TotalShortfall)
	}
	return out
}

func (e *Engine) priorityFor(amount float64) Priority {
	switch {
	case amount > e.cfg.HighShortfall:
		return PriorityHigh
	case amount > e.cfg.MediumShortfall:
		return PriorityMedium
	}
	return PriorityLow
}

func keyDrivers(s Scenario, amount float64) []string {
	return []string{
		fmt.Sprintf("%s Scenario: Reduced collections (%s) and increased expenses (%s)",
			s.Name, percentChange(s.CollectionFactor), percentChange(s.ExpenseFactor)),
		"Projected outflows exceed inflows and cash reserves",
		FormatDeficit(amount),
	}
}

// FormatDeficit renders amount as "Deficit of $1,234.56".
func FormatDeficit(amount float64) string {
	return moneyPrinter.Sprintf("Deficit of $%.2f", amount)
}

func percentChange(factor float64) string {
	return fmt.Sprintf("%+.0f%%", math.Round((factor-1)*100))
}
