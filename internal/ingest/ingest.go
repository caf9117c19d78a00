package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/farxc/cash-insights/internal/analytics"
	"github.com/farxc/cash-insights/internal/logger"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no data rows")
	ErrTooLarge          = errors.New("file exceeds the maximum upload size")
)

const (
	PreviewRows     = 5
	DefaultMaxBytes = 200 << 20
)

var AllowedExtensions = []string{".csv", ".xlsx", ".xls"}

// Parsed is an uploaded file turned into rows keyed by header.
type Parsed struct {
	Columns     []string
	Rows        []analytics.Row
	Preview     []analytics.Row
	RowCount    int
	ColumnCount int
}

type Parser struct {
	MaxBytes  int64
	appLogger *logger.Logger
}

func NewParser(maxBytes int64, appLogger *logger.Logger) *Parser {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if appLogger == nil {
		appLogger = logger.NewNop()
	}
	return &Parser{MaxBytes: maxBytes, appLogger: appLogger}
}

// Validate checks the extension and size before any bytes are read.
func (p *Parser) Validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !isAllowed(ext) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFormat, ext, strings.Join(AllowedExtensions, ", "))
	}
	if size > p.MaxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, size, p.MaxBytes)
	}
	return nil
}

// Parse reads a CSV, XLSX or XLS file. The first row is the header.
func (p *Parser) Parse(filename string, content []byte) (*Parsed, error) {
	const component = "Ingest"

	if err := p.Validate(filename, int64(len(content))); err != nil {
		return nil, err
	}

	var (
		df  dataframe.DataFrame
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		df, err = readCSV(content)
	case ".xlsx":
		df, err = readXLSX(content)
	case ".xls":
		df, err = readXLS(content)
	}
	if err != nil {
		p.appLogger.Error(component, "Failed to parse file: file=%s error=%v", filename, err)
		return nil, err
	}

	parsed := frameToParsed(df)
	if parsed.RowCount == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyFile)
	}
	p.appLogger.Info(component, "File parsed: file=%s rows=%d columns=%d", filename, parsed.RowCount, parsed.ColumnCount)
	return parsed, nil
}

func isAllowed(ext string) bool {
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// loadRecords builds an all-string frame from a header row plus data rows,
// padding short rows and naming blank headers by position.
func loadRecords(records [][]string) (dataframe.DataFrame, error) {
	records = dropBlankRows(records)
	if len(records) < 2 {
		return dataframe.DataFrame{}, ErrEmptyFile
	}

	width := 0
	for _, r := range records {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	for i := range header {
		if i < len(records[0]) {
			header[i] = strings.TrimSpace(records[0][i])
		}
		if header[i] == "" {
			header[i] = "Column " + strconv.Itoa(i+1)
		}
	}

	rect := make([][]string, 0, len(records))
	rect = append(rect, header)
	for _, r := range records[1:] {
		row := make([]string, width)
		copy(row, r)
		rect = append(rect, row)
	}

	df := dataframe.LoadRecords(rect,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	return df, df.Error()
}

func dropBlankRows(records [][]string) [][]string {
	out := records[:0:0]
	for _, r := range records {
		for _, cell := range r {
			if strings.TrimSpace(cell) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func frameToParsed(df dataframe.DataFrame) *Parsed {
	columns := df.Names()
	rows := make([]analytics.Row, df.Nrow())
	for i := range rows {
		row := make(analytics.Row, len(columns))
		for _, col := range columns {
			elem := df.Col(col).Elem(i)
			if elem.IsNA() {
				row[col] = nil
				continue
			}
			row[col] = cellValue(elem.String())
		}
		rows[i] = row
	}

	preview := rows
	if len(preview) > PreviewRows {
		preview = rows[:PreviewRows]
	}
	return &Parsed{
		Columns:     columns,
		Rows:        rows,
		Preview:     preview,
		RowCount:    len(rows),
		ColumnCount: len(columns),
	}
}

// cellValue keeps plain numbers as float64 and everything else, including
// currency-formatted amounts, as text.
func cellValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !strings.ContainsAny(trimmed, "xXpP") {
		lower := strings.ToLower(trimmed)
		if lower != "nan" && !strings.Contains(lower, "inf") {
			return f
		}
	}
	return trimmed
}
