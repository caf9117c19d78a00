package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type MetadataStore struct {
	db *sqlx.DB
}

// Save replaces the column descriptions of a document and marks it described.
func (ms *MetadataStore) Save(ctx context.Context, documentID int64, columns []ColumnMetadata) error {
	tx, err := ms.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE csv_documents SET is_described = TRUE WHERE id = $1`, documentID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM csv_metadata WHERE document_id = $1`, documentID); err != nil {
		return err
	}

	if len(columns) > 0 {
		for i := range columns {
			columns[i].DocumentID = documentID
		}
		query := `INSERT INTO csv_metadata (
			document_id,
			column_name,
			data_type,
			connection_key,
			alias,
			description,
			is_target,
			is_helper
		) VALUES (
			:document_id,
			:column_name,
			:data_type,
			:connection_key,
			:alias,
			:description,
			:is_target,
			:is_helper
		)`
		if _, err := tx.NamedExecContext(ctx, query, columns); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (ms *MetadataStore) GetByDocument(ctx context.Context, documentID int64) ([]ColumnMetadata, error) {
	query := `SELECT id, document_id, column_name, data_type, connection_key, alias, description, is_target, is_helper, created_at
		FROM csv_metadata
		WHERE document_id = $1
		ORDER BY id`

	columns := []ColumnMetadata{}
	if err := ms.db.SelectContext(ctx, &columns, query, documentID); err != nil {
		return nil, err
	}
	return columns, nil
}
