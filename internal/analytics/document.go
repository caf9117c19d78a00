package analytics

import "time"

// Row is one record of an uploaded table keyed by the column names exactly as
// they appeared in the source file. Values are string, float64, int or nil.
type Row map[string]any

// Document is the read-only view of an uploaded spreadsheet the engine works on.
type Document struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	Rows        []Row     `json:"rows"`
	RowCount    int       `json:"rowCount"`
	ColumnCount int       `json:"columnCount"`
	UploadDate  time.Time `json:"uploadDate"`
	IsDescribed bool      `json:"isDescribed"`
}

// Filename fragments of the datasets the dashboard is built from.
const (
	DatasetBankSummary      = "BankStatements(SummarybyType)"
	DatasetCashFlowAnalysis = "CustomerPaymentsForecast(CashFlowAnalysis)"
	DatasetReceivables      = "ARRecords"
	DatasetExpenseForecast  = "ExpenseForecast(MonthlySummary)"
	DatasetMonthlyForecast  = "CustomerPaymentsForecast(MonthlyForecast)"
)

// Column names read from the datasets above.
const (
	ColNetAmount        = "Net Amount"
	ColMonth            = "Month"
	ColNetCashFlow      = "Net Cash Flow"
	ColStatus           = "Status"
	ColDaysPastDue      = "Days Past Due"
	ColBalanceDue       = "Balance Due"
	ColInvoiceNumber    = "Invoice Number"
	ColCustomerName     = "Customer Name"
	ColDueDate          = "Due Date"
	ColTotalExpenses    = "Total Expenses"
	ColEstimatedRevenue = "Estimated Revenue"
	ColTotalCollections = "Total Collections"
	ColCollectionRate   = "Collection Rate %"
)

const (
	StatusOutstanding    = "Outstanding"
	StatusPartialPayment = "Partial Payment"
)

var activeStatuses = []string{StatusOutstanding, StatusPartialPayment}
