package main

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/farxc/cash-insights/internal/ingest"
	"github.com/farxc/cash-insights/internal/metrics"
	"github.com/farxc/cash-insights/internal/response"
	"github.com/farxc/cash-insights/internal/store"
)

const multipartMemory = 32 << 20

type UploadResult struct {
	Filename string `json:"filename"`
	ID       int64  `json:"id,omitempty"`
	RowCount int    `json:"row_count,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type DocumentPage struct {
	Items []store.Document `json:"items"`
	Total int              `json:"total"`
}

type SaveMetadataRequest struct {
	Columns []ColumnMetadataInput `json:"columns"`
}

type ColumnMetadataInput struct {
	ColumnName    string `json:"column_name"`
	DataType      string `json:"data_type"`
	ConnectionKey string `json:"connection_key"`
	Alias         string `json:"alias"`
	Description   string `json:"description"`
	IsTarget      bool   `json:"is_target"`
	IsHelper      bool   `json:"is_helper"`
}

type UploadDocumentsResponse = response.APIResponse[[]UploadResult]
type ListDocumentsResponse = response.APIResponse[DocumentPage]
type GetDocumentResponse = response.APIResponse[*store.Document]
type GetMetadataResponse = response.APIResponse[[]store.ColumnMetadata]

// @Summary		Upload documents
// @Description	Uploads one or more CSV, XLSX or XLS files. Each file is parsed and stored; the analytics cache is cleared when anything was stored.
// @Tags			Documents
// @Accept			multipart/form-data
// @Produce		json
// @Param			files	formData	file					true	"Files to upload"
// @Success		201		{object}	UploadDocumentsResponse	"At least one file stored"
// @Failure		400		{object}	UploadDocumentsResponse	"No file could be stored"
// @Router			/documents [post]
func (app *application) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	const component = "UploadHandler"

	r.Body = http.MaxBytesReader(w, r.Body, app.parser.MaxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no files provided (form field \"files\")")
		return
	}

	ctx := r.Context()
	results := make([]UploadResult, 0, len(files))
	stored := 0
	for _, fh := range files {
		result := app.storeUpload(ctx, fh)
		metrics.DocumentsUploaded.WithLabelValues(result.Status).Inc()
		if result.Status == "stored" {
			stored++
		} else {
			app.appLogger.Warn(component, "Upload rejected: file=%s reason=%s", result.Filename, result.Error)
		}
		results = append(results, result)
	}

	if stored > 0 {
		if err := app.cache.Invalidate(ctx); err != nil {
			app.appLogger.Error(component, "Failed to invalidate cache: %v", err)
		}
	}

	status := http.StatusCreated
	if stored == 0 {
		status = http.StatusBadRequest
	}
	response := &UploadDocumentsResponse{
		Success: stored > 0,
		Data:    results,
		Message: uploadMessage(stored, len(files)),
	}
	if err := writeJSON(w, status, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) storeUpload(ctx context.Context, fh *multipart.FileHeader) UploadResult {
	result := UploadResult{Filename: fh.Filename}
	reject := func(status string, err error) UploadResult {
		result.Status = status
		result.Error = err.Error()
		return result
	}

	if err := app.parser.Validate(fh.Filename, fh.Size); err != nil {
		return reject("rejected", err)
	}
	exists, err := app.store.Documents.ExistsByFilename(ctx, fh.Filename)
	if err != nil {
		return reject("failed", err)
	}
	if exists {
		return reject("duplicate", store.ErrDuplicateFilename)
	}

	f, err := fh.Open()
	if err != nil {
		return reject("failed", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return reject("failed", err)
	}

	parsed, err := app.parser.Parse(fh.Filename, content)
	if err != nil {
		return reject("rejected", err)
	}
	doc, err := store.NewDocument(fh.Filename, parsed.Rows, parsed.Preview, parsed.ColumnCount)
	if err != nil {
		return reject("failed", err)
	}
	if err := app.store.Documents.Insert(ctx, doc); err != nil {
		if errors.Is(err, store.ErrDuplicateFilename) {
			return reject("duplicate", err)
		}
		return reject("failed", err)
	}

	result.ID = doc.ID
	result.RowCount = doc.RowCount
	result.Status = "stored"
	return result
}

func uploadMessage(stored, total int) string {
	switch {
	case stored == total:
		return "All files uploaded"
	case stored == 0:
		return "No files were uploaded"
	}
	return "Some files were uploaded"
}

// @Summary		List documents
// @Description	Lists uploaded documents without their rows, most recent first.
// @Tags			Documents
// @Produce		json
// @Param			limit	query		int						false	"Page size"	default(50)
// @Param			offset	query		int						false	"Offset"	default(0)
// @Success		200		{object}	ListDocumentsResponse	"Documents"
// @Failure		500		{object}	response.ErrorResponse	"Failed to list documents"
// @Router			/documents [get]
func (app *application) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)
	offset := parseIntParam(r, "offset", 0)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	ctx := r.Context()
	docs, err := app.store.Documents.List(ctx, limit, offset)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list documents: "+err.Error())
		return
	}
	total, err := app.store.Documents.Count(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to count documents: "+err.Error())
		return
	}

	response := &ListDocumentsResponse{
		Success: true,
		Data:    DocumentPage{Items: docs, Total: total},
	}
	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get document
// @Tags			Documents
// @Produce		json
// @Param			id	path		int						true	"Document ID"
// @Success		200	{object}	GetDocumentResponse		"Document with preview"
// @Failure		404	{object}	response.ErrorResponse	"Document not found"
// @Router			/documents/{id} [get]
func (app *application) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := app.store.Documents.GetByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "failed to get document")
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetDocumentResponse{Success: true, Data: doc}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Delete document
// @Description	Deletes a document and its column metadata.
// @Tags			Documents
// @Produce		json
// @Param			id	path		int						true	"Document ID"
// @Success		200	{object}	response.APIResponse[any]	"Document deleted"
// @Failure		404	{object}	response.ErrorResponse	"Document not found"
// @Router			/documents/{id} [delete]
func (app *application) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	const component = "DocumentHandler"

	id, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if err := app.store.Documents.Delete(ctx, id); err != nil {
		writeStoreError(w, err, "failed to delete document")
		return
	}
	if err := app.cache.Invalidate(ctx); err != nil {
		app.appLogger.Error(component, "Failed to invalidate cache: %v", err)
	}
	app.appLogger.Info(component, "Document deleted: id=%d", id)

	if err := writeJSON(w, http.StatusOK, &response.APIResponse[any]{Success: true, Message: "Document deleted"}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Get column metadata
// @Tags			Documents
// @Produce		json
// @Param			id	path		int						true	"Document ID"
// @Success		200	{object}	GetMetadataResponse		"Column metadata"
// @Failure		404	{object}	response.ErrorResponse	"Document not found"
// @Router			/documents/{id}/metadata [get]
func (app *application) handleGetDocumentMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if _, err := app.store.Documents.GetByID(ctx, id); err != nil {
		writeStoreError(w, err, "failed to get document")
		return
	}
	columns, err := app.store.Metadata.GetByDocument(ctx, id)
	if err != nil {
		writeStoreError(w, err, "failed to get metadata")
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetMetadataResponse{Success: true, Data: columns}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Save column metadata
// @Description	Replaces the column descriptions of a document and marks it as described.
// @Tags			Documents
// @Accept			json
// @Produce		json
// @Param			id			path		int						true	"Document ID"
// @Param			metadata	body		SaveMetadataRequest		true	"Column descriptions"
// @Success		200			{object}	GetMetadataResponse		"Saved metadata"
// @Failure		400			{object}	response.ErrorResponse	"Invalid payload"
// @Failure		404			{object}	response.ErrorResponse	"Document not found"
// @Router			/documents/{id}/metadata [put]
func (app *application) handleSaveDocumentMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var input SaveMetadataRequest
	if err := readJSON(w, r, &input); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	columns := make([]store.ColumnMetadata, 0, len(input.Columns))
	for _, c := range input.Columns {
		if strings.TrimSpace(c.ColumnName) == "" {
			writeJSONError(w, http.StatusBadRequest, "column_name is required")
			return
		}
		columns = append(columns, store.ColumnMetadata{
			DocumentID:    id,
			ColumnName:    c.ColumnName,
			DataType:      c.DataType,
			ConnectionKey: c.ConnectionKey,
			Alias:         c.Alias,
			Description:   c.Description,
			IsTarget:      c.IsTarget,
			IsHelper:      c.IsHelper,
		})
	}

	if err := app.store.Metadata.Save(r.Context(), id, columns); err != nil {
		writeStoreError(w, err, "failed to save metadata")
		return
	}

	response := &GetMetadataResponse{Success: true, Data: columns, Message: "Metadata saved"}
	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func writeStoreError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, store.ErrDuplicateFilename):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ingest.ErrUnsupportedFormat), errors.Is(err, ingest.ErrEmptyFile), errors.Is(err, ingest.ErrTooLarge):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, message+": "+err.Error())
	}
}
