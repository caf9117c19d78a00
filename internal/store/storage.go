package store

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateFilename = errors.New("a document with this filename already exists")
)

type Storage struct {
	Documents interface {
		Insert(ctx context.Context, doc *Document) error
		ListWithFullData(ctx context.Context) ([]Document, error)
		ListWithFullDataByIDs(ctx context.Context, ids []int64) ([]Document, error)
		List(ctx context.Context, limit, offset int) ([]Document, error)
		Count(ctx context.Context) (int, error)
		GetByID(ctx context.Context, id int64) (*Document, error)
		ExistsByFilename(ctx context.Context, filename string) (bool, error)
		SetDescribed(ctx context.Context, id int64, described bool) error
		Delete(ctx context.Context, id int64) error
	}

	Metadata interface {
		Save(ctx context.Context, documentID int64, columns []ColumnMetadata) error
		GetByDocument(ctx context.Context, documentID int64) ([]ColumnMetadata, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Documents: &DocumentStore{db: db},
		Metadata:  &MetadataStore{db: db},
	}
}
