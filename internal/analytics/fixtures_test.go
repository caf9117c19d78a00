package analytics

import (
	"testing"

	"github.com/farxc/cash-insights/internal/logger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultConfig(), logger.NewNop())
}

func doc(id int64, filename string, rows ...Row) Document {
	return Document{ID: id, Filename: filename, Rows: rows, RowCount: len(rows)}
}

func bankSummaryDoc() Document {
	return doc(1, "Electricity Provider Bank Statements(Summary by Type).csv",
		Row{"Type": "Deposits", "Net Amount": "$1,000.00"},
		Row{"Type": "Transfers", "Net Amount": 500.0},
		Row{"Type": "Interest", "Net Amount": "2,100"},
	)
}

func cashFlowAnalysisDoc() Document {
	return doc(2, "Electricity Provider Customer Payments Forecast(Cash Flow Analysis).csv",
		Row{"Month": "Dec 2024", "Net Cash Flow": 5000.0},
		Row{"Month": "Jan 2025", "Net Cash Flow": "$5,350.50"},
		Row{"Month": "Feb 2025", "Net Cash Flow": 6000.0},
	)
}

func monthlyForecastDoc() Document {
	return doc(3, "Electricity Provider Customer Payments Forecast(Monthly Forecast).csv",
		Row{"Month": "Jan 2025", "Total Collections": 20000.0, "Collection Rate %": "75.5%"},
		Row{"Month": "Feb 2025", "Total Collections": "$25,000", "Collection Rate %": "78.0%"},
		Row{"Month": "Mar 2025", "Total Collections": 22000.0, "Collection Rate %": "76.2%"},
	)
}

func expenseForecastDoc() Document {
	return doc(4, "Electricity Provider Expense Forecast(Monthly Summary).csv",
		Row{"Month": "Jan 2025", "Total Expenses": 18000.0, "Estimated Revenue": 20000.0},
		Row{"Month": "Feb 2025", "Total Expenses": "20,000", "Estimated Revenue": 25000.0},
		Row{"Month": "Mar 2025", "Total Expenses": 19000.0, "Estimated Revenue": "$22,000.00"},
	)
}

func receivablesDoc() Document {
	return doc(5, "Electricity_Provider_AR Records-02142026.csv",
		Row{"Invoice Number": "INV001", "Customer Name": "Acme", "Balance Due": "$1,000.00", "Due Date": "2025-01-15", "Status": "Outstanding", "Days Past Due": 30.0},
		Row{"Invoice Number": "INV002", "Customer Name": "Globex", "Balance Due": 0.0, "Due Date": "2025-01-10", "Status": "Paid", "Days Past Due": 10.0},
		Row{"Invoice Number": "INV003", "Customer Name": "Initech", "Balance Due": "500", "Due Date": "2025-02-01", "Status": "Partial Payment", "Days Past Due": "5"},
		Row{"Invoice Number": "INV004", "Customer Name": "Umbrella", "Balance Due": 2000.0, "Due Date": "2025-03-01", "Status": "Outstanding", "Days Past Due": 0.0},
	)
}

func allDocs() []Document {
	return []Document{
		bankSummaryDoc(),
		cashFlowAnalysisDoc(),
		monthlyForecastDoc(),
		expenseForecastDoc(),
		receivablesDoc(),
	}
}
