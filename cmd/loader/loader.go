package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/farxc/cash-insights/internal/analytics"
	"github.com/farxc/cash-insights/internal/ingest"
	"github.com/farxc/cash-insights/internal/logger"
	"github.com/farxc/cash-insights/internal/store"
)

type documentWriter interface {
	ExistsByFilename(ctx context.Context, filename string) (bool, error)
	Insert(ctx context.Context, doc *store.Document) error
}

type parsedFile struct {
	Path     string
	Filename string
	Parsed   *ingest.Parsed
	Err      error
}

type loadSummary struct {
	Stored     int
	Duplicates int
	Failed     int
}

// collectFiles lists the uploadable files directly under dir, sorted by name.
func collectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, allowed := range ingest.AllowedExtensions {
			if ext == allowed {
				paths = append(paths, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// parseFiles parses paths with at most workers files in flight. Results keep
// the order of paths.
func parseFiles(ctx context.Context, paths []string, parser *ingest.Parser, workers int, appLogger *logger.Logger) []parsedFile {
	const component = "FileParser"

	if workers < 1 {
		workers = 1
	}
	results := make([]parsedFile, len(paths))
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	appLogger.Info(component, "Starting parse phase: files=%d maxConcurrent=%d", len(paths), workers)
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res := parsedFile{Path: path, Filename: filepath.Base(path)}
			if err := ctx.Err(); err != nil {
				res.Err = err
				results[i] = res
				return
			}
			content, err := os.ReadFile(path)
			if err != nil {
				res.Err = err
				results[i] = res
				return
			}
			res.Parsed, res.Err = parser.Parse(res.Filename, content)
			if res.Err != nil {
				appLogger.Warn(component, "File skipped: file=%s reason=%v", res.Filename, res.Err)
			}
			results[i] = res
		}(i, path)
	}
	wg.Wait()
	return results
}

// storeFiles inserts every successfully parsed file. Existing filenames are
// counted as duplicates and left untouched.
func storeFiles(ctx context.Context, files []parsedFile, docs documentWriter, appLogger *logger.Logger) loadSummary {
	const component = "Loader"

	var summary loadSummary
	for _, f := range files {
		if f.Err != nil {
			summary.Failed++
			continue
		}
		exists, err := docs.ExistsByFilename(ctx, f.Filename)
		if err != nil {
			appLogger.Error(component, "Lookup failed: file=%s error=%v", f.Filename, err)
			summary.Failed++
			continue
		}
		if exists {
			appLogger.Info(component, "Already loaded: file=%s", f.Filename)
			summary.Duplicates++
			continue
		}

		doc, err := store.NewDocument(f.Filename, f.Parsed.Rows, f.Parsed.Preview, f.Parsed.ColumnCount)
		if err == nil {
			err = docs.Insert(ctx, doc)
		}
		switch {
		case errors.Is(err, store.ErrDuplicateFilename):
			summary.Duplicates++
		case err != nil:
			appLogger.Error(component, "Insert failed: file=%s error=%v", f.Filename, err)
			summary.Failed++
		default:
			appLogger.Info(component, "Document stored: file=%s id=%d rows=%d", f.Filename, doc.ID, doc.RowCount)
			summary.Stored++
		}
	}
	return summary
}

type report struct {
	Stats        analytics.Stats        `json:"stats"`
	InvoiceStats analytics.InvoiceStats `json:"invoiceStats"`
	Shortfalls   analytics.Shortfalls   `json:"shortfalls"`
}

// buildReport runs the engine over parsed files without touching the database.
// Later files in the slice count as more recent uploads.
func buildReport(engine *analytics.Engine, files []parsedFile) report {
	var docs []analytics.Document
	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		if f.Err != nil {
			continue
		}
		docs = append(docs, analytics.Document{
			ID:          int64(i + 1),
			Filename:    f.Filename,
			Rows:        f.Parsed.Rows,
			RowCount:    f.Parsed.RowCount,
			ColumnCount: f.Parsed.ColumnCount,
		})
	}
	return report{
		Stats:        engine.CalculateStats(docs),
		InvoiceStats: engine.InvoiceStats(docs),
		Shortfalls:   engine.CashShortfalls(docs),
	}
}
