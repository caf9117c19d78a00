package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type DocumentStore struct {
	db *sqlx.DB
}

const documentColumns = `id, filename, preview, full_data, row_count, column_count, is_described, upload_date`
const documentSummaryColumns = `id, filename, preview, row_count, column_count, is_described, upload_date`

const uniqueViolation = "23505"

func (ds *DocumentStore) Insert(ctx context.Context, doc *Document) error {
	query := `INSERT INTO csv_documents (
		filename,
		preview,
		full_data,
		row_count,
		column_count,
		is_described
	) VALUES (
		:filename,
		:preview,
		:full_data,
		:row_count,
		:column_count,
		:is_described
	) RETURNING id, upload_date`

	rows, err := ds.db.NamedQueryContext(ctx, query, doc)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateFilename, doc.Filename)
		}
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&doc.ID, &doc.UploadDate); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListWithFullData returns every document, most recently uploaded first.
func (ds *DocumentStore) ListWithFullData(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM csv_documents ORDER BY upload_date DESC, id DESC`

	var docs []Document
	if err := ds.db.SelectContext(ctx, &docs, query); err != nil {
		return nil, err
	}
	return docs, nil
}

// ListWithFullDataByIDs is ListWithFullData restricted to ids.
func (ds *DocumentStore) ListWithFullDataByIDs(ctx context.Context, ids []int64) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM csv_documents
		WHERE id = ANY($1)
		ORDER BY upload_date DESC, id DESC`

	var docs []Document
	if err := ds.db.SelectContext(ctx, &docs, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return docs, nil
}

// List returns documents without their rows, most recently uploaded first.
func (ds *DocumentStore) List(ctx context.Context, limit, offset int) ([]Document, error) {
	query := `SELECT ` + documentSummaryColumns + ` FROM csv_documents
		ORDER BY upload_date DESC, id DESC
		LIMIT $1 OFFSET $2`

	docs := []Document{}
	if err := ds.db.SelectContext(ctx, &docs, query, limit, offset); err != nil {
		return nil, err
	}
	return docs, nil
}

func (ds *DocumentStore) Count(ctx context.Context) (int, error) {
	var n int
	err := ds.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM csv_documents`)
	return n, err
}

func (ds *DocumentStore) GetByID(ctx context.Context, id int64) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM csv_documents WHERE id = $1`

	var doc Document
	if err := ds.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (ds *DocumentStore) ExistsByFilename(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := ds.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM csv_documents WHERE filename = $1)`, filename)
	return exists, err
}

func (ds *DocumentStore) SetDescribed(ctx context.Context, id int64, described bool) error {
	res, err := ds.db.ExecContext(ctx, `UPDATE csv_documents SET is_described = $1 WHERE id = $2`, described, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a document and its column metadata in one transaction.
func (ds *DocumentStore) Delete(ctx context.Context, id int64) error {
	tx, err := ds.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM csv_metadata WHERE document_id = $1`, id); err != nil {
		return fmt.Errorf("delete metadata: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM csv_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
