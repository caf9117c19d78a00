package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is a string-typed dataframe over a document's rows. Numeric views of
// columns are coerced on first use and kept for the lifetime of the Table, so a
// Table must not be shared between goroutines.
type Table struct {
	df      dataframe.DataFrame
	columns []string
	nrow    int
	numeric map[string][]float64
}

// NewTable builds a Table from raw rows. Columns are the union of all row keys
// in order of first appearance; cells missing from a row are empty.
func NewTable(rows []Row) *Table {
	columns := collectColumns(rows)
	t := &Table{columns: columns, numeric: map[string][]float64{}}
	if len(rows) == 0 || len(columns) == 0 {
		t.df = dataframe.New()
		return t
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, columns)
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cellString(row[col])
		}
		records = append(records, record)
	}

	df := dataframe.LoadRecords(
		records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		t.df = dataframe.New()
		t.columns = nil
		return t
	}
	t.df = df
	t.columns = df.Names()
	t.nrow = df.Nrow()
	return t
}

// TableFor is NewTable over a document's rows.
func TableFor(doc Document) *Table {
	return NewTable(doc.Rows)
}

func collectColumns(rows []Row) []string {
	seen := map[string]bool{}
	var columns []string
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if k != "" && !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			columns = append(columns, k)
		}
	}
	return columns
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(finite(val), 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(finite(float64(val)), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

func (t *Table) Len() int {
	return t.nrow
}

func (t *Table) Columns() []string {
	return t.columns
}

// Has reports whether every named column exists.
func (t *Table) Has(cols ...string) bool {
	for _, col := range cols {
		if !containsString(t.columns, col) {
			return false
		}
	}
	return true
}

// CountPresent returns how many of cols exist.
func (t *Table) CountPresent(cols ...string) int {
	n := 0
	for _, col := range cols {
		if containsString(t.columns, col) {
			n++
		}
	}
	return n
}

// Str returns the cell as text, or "" when the column or row does not exist.
func (t *Table) Str(col string, rowIdx int) string {
	if rowIdx < 0 || rowIdx >= t.nrow || !t.Has(col) {
		return ""
	}
	elem := t.df.Col(col).Elem(rowIdx)
	if elem.IsNA() {
		return ""
	}
	return elem.String()
}

// Numeric returns the column coerced with ToNumeric. A missing column yields zeros.
func (t *Table) Numeric(col string) []float64 {
	if vals, ok := t.numeric[col]; ok {
		return vals
	}
	vals := make([]float64, t.nrow)
	if t.Has(col) {
		for i := range vals {
			vals[i] = ToNumeric(t.Str(col, i))
		}
	}
	t.numeric[col] = vals
	return vals
}

// Percent returns the column coerced with ToPercent.
func (t *Table) Percent(col string) []float64 {
	vals := make([]float64, t.nrow)
	if t.Has(col) {
		for i := range vals {
			vals[i] = ToPercent(t.Str(col, i))
		}
	}
	return vals
}

// FilterIn keeps the rows whose col value is one of values.
func (t *Table) FilterIn(col string, values []string) *Table {
	out := &Table{columns: t.columns, numeric: map[string][]float64{}, df: dataframe.New()}
	if t.nrow == 0 || !t.Has(col) {
		return out
	}
	filtered := t.df.Filter(dataframe.F{
		Colname:    col,
		Comparator: series.In,
		Comparando: values,
	})
	if filtered.Err != nil {
		return out
	}
	out.df = filtered
	out.nrow = filtered.Nrow()
	return out
}

// LabeledValues pairs each row's label column with its numeric value column.
func (t *Table) LabeledValues(labelCol, valueCol string) []LabeledValue {
	values := t.Numeric(valueCol)
	out := make([]LabeledValue, 0, t.nrow)
	for i := 0; i < t.nrow; i++ {
		out = append(out, LabeledValue{Label: t.Str(labelCol, i), Value: values[i]})
	}
	return out
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
