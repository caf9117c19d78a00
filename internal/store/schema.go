package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS csv_documents (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT NOT NULL UNIQUE,
		preview JSONB NOT NULL DEFAULT '[]',
		full_data JSONB NOT NULL DEFAULT '[]',
		row_count INTEGER NOT NULL DEFAULT 0,
		column_count INTEGER NOT NULL DEFAULT 0,
		is_described BOOLEAN NOT NULL DEFAULT FALSE,
		upload_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS csv_metadata (
		id BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES csv_documents(id) ON DELETE CASCADE,
		column_name TEXT NOT NULL,
		data_type TEXT NOT NULL DEFAULT '',
		connection_key TEXT NOT NULL DEFAULT '',
		alias TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		is_target BOOLEAN NOT NULL DEFAULT FALSE,
		is_helper BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_csv_documents_upload_date ON csv_documents (upload_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_csv_metadata_document_id ON csv_metadata (document_id)`,
}

// Migrate creates the document tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}
