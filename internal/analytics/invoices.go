package analytics

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// minInvoiceColumns is how many of invoiceColumns must exist before rows are read.
const minInvoiceColumns = 3

var invoiceColumns = []string{ColInvoiceNumber, ColCustomerName, ColBalanceDue, ColDueDate, ColStatus}

type InvoiceRecord struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"dueDate"`
	Status      string  `json:"status"`
	DaysPastDue float64 `json:"daysPastDue"`
	RiskScore   int     `json:"riskScore"`
	RiskLabel   string  `json:"riskLabel"`
}

type InvoiceStats struct {
	TotalReceivables   float64 `json:"totalReceivables"`
	TotalAtRiskAmount  float64 `json:"totalAtRiskAmount"`
	CollectionRate     float64 `json:"collectionRate"`
	ActiveInvoiceCount int     `json:"activeInvoiceCount"`
	AtRiskInvoiceCount int     `json:"atRiskInvoiceCount"`
}

// Risk scores an invoice from its status and days past due. Only outstanding
// or partially paid invoices carry risk.
func Risk(status string, daysPastDue float64) (int, string) {
	if !strings.Contains(status, "Outstanding") && !strings.Contains(status, "Partial") {
		return 0, "Low Risk"
	}
	switch {
	case daysPastDue > 90:
		return 90, "Critical Risk"
	case daysPastDue > 30:
		return 60, "High Risk"
	case daysPastDue > 0:
		return 30, "Medium Risk"
	}
	return 0, "Low Risk"
}

// Invoices extracts every receivable row with its risk score. A receivables
// table with fewer than three recognizable invoice columns yields nothing.
func (e *Engine) Invoices(documents []Document) []InvoiceRecord {
	const component = "InvoiceExtractor"

	invoices := []InvoiceRecord{}
	doc, ok := Find(documents, e.cfg.Receivables)
	if !ok {
		return invoices
	}
	t := TableFor(doc)
	if present := t.CountPresent(invoiceColumns...); present < minInvoiceColumns {
		e.appLogger.Warn(component, "not enough invoice columns: file=%s present=%d", doc.Filename, present)
		return invoices
	}

	amounts := t.Numeric(ColBalanceDue)
	dpd := t.Numeric(ColDaysPastDue)
	for i := 0; i < t.Len(); i++ {
		status := orDefault(t.Str(ColStatus, i), "Unknown")
		score, label := Risk(status, dpd[i])
		invoices = append(invoices, InvoiceRecord{
			ID:          orDefault(t.Str(ColInvoiceNumber, i), "UNKNOWN"),
			Customer:    orDefault(t.Str(ColCustomerName, i), "Unknown"),
			Amount:      amounts[i],
			DueDate:     t.Str(ColDueDate, i),
			Status:      status,
			DaysPastDue: dpd[i],
			RiskScore:   score,
			RiskLabel:   label,
		})
	}
	e.appLogger.Debug(component, "invoices extracted: file=%s count=%d", doc.Filename, len(invoices))
	return invoices
}

// InvoiceStats aggregates active receivables. Active means a status of exactly
// Outstanding or Partial Payment.
func (e *Engine) InvoiceStats(documents []Document) InvoiceStats {
	var stats InvoiceStats

	if doc, ok := Find(documents, e.cfg.Receivables); ok {
		t := TableFor(doc)
		if t.Has(ColStatus, ColDaysPastDue, ColBalanceDue) {
			active := t.FilterIn(ColStatus, activeStatuses)
			stats.ActiveInvoiceCount = active.Len()
			stats.TotalReceivables = floats.Sum(active.Numeric(ColBalanceDue))
			stats.TotalAtRiskAmount, stats.AtRiskInvoiceCount = sumPastDue(active)
		}
	}

	if doc, ok := Find(documents, e.cfg.MonthlyForecast); ok {
		t := TableFor(doc)
		if t.Has(ColCollectionRate) && t.Len() > 0 {
			stats.CollectionRate = t.Percent(ColCollectionRate)[0]
		}
	}
	return stats
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
