package ingest

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first worksheet.
func readXLSX(content []byte) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return loadRecords(rows)
}

// readXLS reads the first worksheet of a legacy BIFF workbook. The decoder
// panics on some malformed input, which is reported as an error.
func readXLS(content []byte) (df dataframe.DataFrame, err error) {
	defer func() {
		if r := recover(); r != nil {
			df, err = dataframe.DataFrame{}, fmt.Errorf("open xls: malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return dataframe.DataFrame{}, ErrEmptyFile
	}

	records := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		records = append(records, cells)
	}
	return loadRecords(records)
}
