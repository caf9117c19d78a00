package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/farxc/cash-insights/internal/analytics"
	"github.com/jmoiron/sqlx/types"
)

// Document represents the 'csv_documents' table.
type Document struct {
	ID          int64          `db:"id" json:"id"`
	Filename    string         `db:"filename" json:"filename"`
	Preview     types.JSONText `db:"preview" json:"preview"`
	FullData    types.JSONText `db:"full_data" json:"-"`
	RowCount    int            `db:"row_count" json:"row_count"`
	ColumnCount int            `db:"column_count" json:"column_count"`
	IsDescribed bool           `db:"is_described" json:"is_described"`
	UploadDate  time.Time      `db:"upload_date" json:"upload_date"`
}

// ColumnMetadata represents the 'csv_metadata' table.
type ColumnMetadata struct {
	ID            int64     `db:"id" json:"id"`
	DocumentID    int64     `db:"document_id" json:"document_id"`
	ColumnName    string    `db:"column_name" json:"column_name"`
	DataType      string    `db:"data_type" json:"data_type"`
	ConnectionKey string    `db:"connection_key" json:"connection_key"`
	Alias         string    `db:"alias" json:"alias"`
	Description   string    `db:"description" json:"description"`
	IsTarget      bool      `db:"is_target" json:"is_target"`
	IsHelper      bool      `db:"is_helper" json:"is_helper"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// NewDocument encodes parsed rows for storage.
func NewDocument(filename string, rows, preview []analytics.Row, columnCount int) (*Document, error) {
	full, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	prev, err := json.Marshal(preview)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return &Document{
		Filename:    filename,
		Preview:     types.JSONText(prev),
		FullData:    types.JSONText(full),
		RowCount:    len(rows),
		ColumnCount: columnCount,
	}, nil
}

// ToAnalytics decodes the stored rows into the engine's document view.
func (d Document) ToAnalytics() (analytics.Document, error) {
	out := analytics.Document{
		ID:          d.ID,
		Filename:    d.Filename,
		RowCount:    d.RowCount,
		ColumnCount: d.ColumnCount,
		UploadDate:  d.UploadDate,
		IsDescribed: d.IsDescribed,
	}
	if len(d.FullData) == 0 {
		return out, nil
	}
	if err := d.FullData.Unmarshal(&out.Rows); err != nil {
		return out, fmt.Errorf("decode rows of document %d: %w", d.ID, err)
	}
	return out, nil
}

// ToAnalyticsAll converts documents, skipping any whose rows cannot be decoded.
// The returned count is the number skipped.
func ToAnalyticsAll(docs []Document) ([]analytics.Document, int) {
	out := make([]analytics.Document, 0, len(docs))
	skipped := 0
	for _, d := range docs {
		ad, err := d.ToAnalytics()
		if err != nil {
			skipped++
			continue
		}
		out = append(out, ad)
	}
	return out, skipped
}
