package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/farxc/cash-insights/internal/analytics"
	"github.com/farxc/cash-insights/internal/cache"
	"github.com/farxc/cash-insights/internal/ingest"
	"github.com/farxc/cash-insights/internal/logger"
	"github.com/farxc/cash-insights/internal/response"
	"github.com/farxc/cash-insights/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankSummaryName = "Electricity Provider Bank Statements(Summary by Type).csv"

type fakeDocuments struct {
	mu     sync.Mutex
	nextID int64
	docs   []store.Document
	meta   *fakeMetadata
}

func (f *fakeDocuments) Insert(_ context.Context, doc *store.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.Filename == doc.Filename {
			return store.ErrDuplicateFilename
		}
	}
	f.nextID++
	doc.ID = f.nextID
	doc.UploadDate = time.Date(2025, 1, 1, 0, 0, int(f.nextID), 0, time.UTC)
	f.docs = append(f.docs, *doc)
	return nil
}

// newestFirst mirrors the ORDER BY upload_date DESC of the real store.
func (f *fakeDocuments) newestFirst() []store.Document {
	out := make([]store.Document, len(f.docs))
	copy(out, f.docs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeDocuments) ListWithFullData(context.Context) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newestFirst(), nil
}

func (f *fakeDocuments) ListWithFullDataByIDs(_ context.Context, ids []int64) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Document
	for _, d := range f.newestFirst() {
		for _, id := range ids {
			if d.ID == id {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (f *fakeDocuments) List(_ context.Context, limit, offset int) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.newestFirst()
	if offset >= len(all) {
		return []store.Document{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeDocuments) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs), nil
}

func (f *fakeDocuments) GetByID(_ context.Context, id int64) (*store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeDocuments) ExistsByFilename(_ context.Context, filename string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.Filename == filename {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDocuments) SetDescribed(_ context.Context, id int64, described bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.docs {
		if f.docs[i].ID == id {
			f.docs[i].IsDescribed = described
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeDocuments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.docs {
		if d.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			f.meta.drop(id)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeMetadata struct {
	mu      sync.Mutex
	columns map[int64][]store.ColumnMetadata
	docs    *fakeDocuments
}

func (f *fakeMetadata) drop(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.columns, id)
}

func (f *fakeMetadata) Save(ctx context.Context, documentID int64, columns []store.ColumnMetadata) error {
	if err := f.docs.SetDescribed(ctx, documentID, true); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.columns[documentID] = columns
	return nil
}

func (f *fakeMetadata) GetByDocument(_ context.Context, documentID int64) ([]store.ColumnMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.ColumnMetadata{}, f.columns[documentID]...), nil
}

type testApp struct {
	*application
	docs  *fakeDocuments
	cache *cache.MemoryCache
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	docs := &fakeDocuments{}
	meta := &fakeMetadata{columns: map[int64][]store.ColumnMetadata{}, docs: docs}
	docs.meta = meta
	memCache := cache.NewMemoryCache(time.Minute)
	appLogger := logger.NewNop()

	app := &application{
		config:    config{addr: ":0", requestTimeout: 5 * time.Second},
		store:     store.Storage{Documents: docs, Metadata: meta},
		engine:    analytics.NewEngine(analytics.DefaultConfig(), appLogger),
		cache:     memCache,
		parser:    ingest.NewParser(0, appLogger),
		appLogger: appLogger,
	}
	return &testApp{application: app, docs: docs, cache: memCache}
}

func (ta *testApp) seed(t *testing.T, filename string, rows ...analytics.Row) int64 {
	t.Helper()
	doc, err := store.NewDocument(filename, rows, rows, len(rows[0]))
	require.NoError(t, err)
	require.NoError(t, ta.docs.Insert(context.Background(), doc))
	return doc.ID
}

func (ta *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	ta.mount().ServeHTTP(rr, req)
	return rr
}

func multipartUpload(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) response.APIResponse[T] {
	t.Helper()
	var out response.APIResponse[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func receivableRows() []analytics.Row {
	return []analytics.Row{
		{"Invoice Number": "INV001", "Customer Name": "Acme", "Balance Due": "$1,000.00", "Due Date": "2025-01-15", "Status": "Outstanding", "Days Past Due": 45.0},
		{"Invoice Number": "INV002", "Customer Name": "Globex", "Balance Due": 0.0, "Due Date": "2025-01-10", "Status": "Paid", "Days Past Due": 10.0},
		{"Invoice Number": "INV003", "Customer Name": "Initech", "Balance Due": "500", "Due Date": "2025-02-01", "Status": "Partial Payment", "Days Past Due": 5.0},
		{"Invoice Number": "INV004", "Customer Name": "Umbrella", "Balance Due": 2000.0, "Due Date": "2025-03-01", "Status": "Outstanding", "Days Past Due": 0.0},
	}
}

func TestHealthCheck(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, version, body["version"])
}

func TestUploadThenDashboardStats(t *testing.T) {
	ta := newTestApplication(t)
	csv := "Type,Net Amount\nDeposits,\"$1,000.00\"\nTransfers,500\nInterest,\"2,100\"\n"

	rr := ta.do(t, multipartUpload(t, map[string]string{bankSummaryName: csv}))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	uploaded := decode[[]UploadResult](t, rr)
	assert.True(t, uploaded.Success)
	require.Len(t, uploaded.Data, 1)
	assert.Equal(t, "stored", uploaded.Data[0].Status)
	assert.Equal(t, 3, uploaded.Data[0].RowCount)

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	stats := decode[analytics.Stats](t, rr)
	assert.Equal(t, 3600.0, stats.Data.Current)
	assert.Zero(t, stats.Data.CashRunwayDays)
}

func TestUpload_RejectsDuplicatesAndUnsupportedFiles(t *testing.T) {
	ta := newTestApplication(t)
	ta.seed(t, "existing.csv", analytics.Row{"a": 1.0})

	rr := ta.do(t, multipartUpload(t, map[string]string{
		"existing.csv": "a\n1\n",
		"notes.txt":    "hello",
	}))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	uploaded := decode[[]UploadResult](t, rr)
	assert.False(t, uploaded.Success)
	require.Len(t, uploaded.Data, 2)
	assert.Equal(t, "duplicate", uploaded.Data[0].Status)
	assert.Equal(t, "rejected", uploaded.Data[1].Status)
	assert.NotEmpty(t, uploaded.Data[1].Error)
}

func TestUpload_WithoutFiles(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, multipartUpload(t, map[string]string{}))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboard_ResultsAreCachedUntilDocumentsChange(t *testing.T) {
	ta := newTestApplication(t)
	id := ta.seed(t, bankSummaryName, analytics.Row{"Net Amount": 100.0})

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, ta.cache.Len())

	rr = ta.do(t, httptest.NewRequest(http.MethodDelete, "/v1/documents/"+itoa(id), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, ta.cache.Len())

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, decode[analytics.Stats](t, rr).Data.Current)
}

func TestDashboard_RestrictsToRequestedDocuments(t *testing.T) {
	ta := newTestApplication(t)
	older := ta.seed(t, bankSummaryName, analytics.Row{"Net Amount": 100.0})
	ta.seed(t, "Bank Statements (Summary by Type) v2.csv", analytics.Row{"Net Amount": 900.0})

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 900.0, decode[analytics.Stats](t, rr).Data.Current)

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats?documents="+itoa(older), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 100.0, decode[analytics.Stats](t, rr).Data.Current)
}

func TestDashboard_InvalidDocumentList(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/forecast?documents=1,abc", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDashboard_EmptyStoreStillAnswers(t *testing.T) {
	ta := newTestApplication(t)

	for _, path := range []string{"forecast", "flow", "scenarios", "shortfalls"} {
		rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/"+path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/forecast", nil))
	forecast := decode[analytics.ForecastSeries](t, rr)
	assert.Len(t, forecast.Data.Labels, 8)

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/shortfalls", nil))
	shortfalls := decode[analytics.Shortfalls](t, rr)
	assert.False(t, shortfalls.Data.HasShortfalls)
}

func TestInvoices_FilterAndPaginate(t *testing.T) {
	ta := newTestApplication(t)
	ta.seed(t, "Electricity_Provider_AR Records.csv", receivableRows()...)

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/invoices/?skip=1&limit=1", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	page := decode[InvoicePage](t, rr).Data
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 1, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "INV002", page.Items[0].ID)

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/invoices/?status=OUTSTANDING", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[InvoicePage](t, rr).Data
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "High Risk", page.Items[0].RiskLabel)
	assert.Equal(t, "Low Risk", page.Items[1].RiskLabel)
}

func TestInvoices_EachRequestAppliesItsOwnFilter(t *testing.T) {
	ta := newTestApplication(t)
	ta.seed(t, "Electricity_Provider_AR Records.csv", receivableRows()...)

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/invoices/?status=paid", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[InvoicePage](t, rr).Data
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Paid", page.Items[0].Status)

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/invoices/?status=outstanding", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[InvoicePage](t, rr).Data
	require.Equal(t, 2, page.Total)
	for _, inv := range page.Items {
		assert.Equal(t, "Outstanding", inv.Status)
	}

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/invoices/?skip=3&limit=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	page = decode[InvoicePage](t, rr).Data
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "INV004", page.Items[0].ID)

	assert.Equal(t, 1, ta.cache.Len())
}

func TestInvoiceStats(t *testing.T) {
	ta := newTestApplication(t)
	ta.seed(t, "Electricity_Provider_AR Records.csv", receivableRows()...)

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/invoices/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[analytics.InvoiceStats](t, rr).Data
	assert.Equal(t, 3500.0, stats.TotalReceivables)
	assert.Equal(t, 1500.0, stats.TotalAtRiskAmount)
	assert.Equal(t, 3, stats.ActiveInvoiceCount)
	assert.Equal(t, 2, stats.AtRiskInvoiceCount)
}

func TestDocuments_ListGetDelete(t *testing.T) {
	ta := newTestApplication(t)
	first := ta.seed(t, "a.csv", analytics.Row{"x": 1.0})
	second := ta.seed(t, "b.csv", analytics.Row{"x": 2.0})

	rr := ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/documents/?limit=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[DocumentPage](t, rr).Data
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, second, page.Items[0].ID)
	assert.NotContains(t, rr.Body.String(), "full_data")

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/documents/"+itoa(first), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a.csv", decode[*store.Document](t, rr).Data.Filename)

	rr = ta.do(t, httptest.NewRequest(http.MethodDelete, "/v1/documents/"+itoa(first), nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ta.do(t, httptest.NewRequest(http.MethodDelete, "/v1/documents/"+itoa(first), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, "/v1/documents/zero", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDocumentMetadata(t *testing.T) {
	ta := newTestApplication(t)
	id := ta.seed(t, "a.csv", analytics.Row{"Net Amount": 1.0})
	path := "/v1/documents/" + itoa(id) + "/metadata"

	rr := ta.do(t, jsonRequest(http.MethodPut, path, `{"columns":[{"column_name":" "}]}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ta.do(t, jsonRequest(http.MethodPut, path, `{"columns":[{"column_name":"Net Amount","data_type":"currency","is_target":true}]}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ta.do(t, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	columns := decode[[]store.ColumnMetadata](t, rr).Data
	require.Len(t, columns, 1)
	assert.Equal(t, "currency", columns[0].DataType)
	assert.True(t, columns[0].IsTarget)

	doc, err := ta.docs.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, doc.IsDescribed)

	rr = ta.do(t, jsonRequest(http.MethodPut, "/v1/documents/999/metadata", `{"columns":[]}`))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ta.do(t, jsonRequest(http.MethodPut, path, `{"columns":[],"extra":1}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList(" 3,1,,3 ,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIDList("1,-2")
	assert.Error(t, err)
}

func TestPaginateInvoices_OutOfRange(t *testing.T) {
	invoices := []analytics.InvoiceRecord{{ID: "a"}, {ID: "b"}}

	page := paginateInvoices(invoices, "", 10, 0)

	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, defaultInvoiceLimit, page.Limit)
	assert.Equal(t, 1, page.Page)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "stats", cacheKey("stats", nil))
	assert.Equal(t, "flow:1,7", cacheKey("flow", []int64{1, 7}))
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
