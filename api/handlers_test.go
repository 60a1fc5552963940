package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"sentinel/adapters/storage"
	"sentinel/domain/core"
	"sentinel/domain/dataset"
	"sentinel/domain/report"
	"sentinel/internal/config"
	"sentinel/internal/pipeline"
	"sentinel/internal/testkit"
	"sentinel/internal/worker"

	"github.com/stretchr/testify/require"
)

type memDatasetRepo struct {
	mu    sync.Mutex
	items map[core.DatasetID]*dataset.Dataset
}

func newMemDatasetRepo() *memDatasetRepo {
	return &memDatasetRepo{items: map[core.DatasetID]*dataset.Dataset{}}
}

func (r *memDatasetRepo) Create(ctx context.Context, ds *dataset.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *ds
	r.items[ds.ID] = &copied
	return nil
}

func (r *memDatasetRepo) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ds, ok := r.items[id]
	if !ok {
		return nil, core.ErrDatasetNotFound
	}
	copied := *ds
	return &copied, nil
}

func (r *memDatasetRepo) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*dataset.Dataset{}
	for _, ds := range r.items {
		copied := *ds
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memDatasetRepo) Update(ctx context.Context, ds *dataset.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[ds.ID]; !ok {
		return core.ErrDatasetNotFound
	}
	copied := *ds
	r.items[ds.ID] = &copied
	return nil
}

func (r *memDatasetRepo) Delete(ctx context.Context, id core.DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memDatasetRepo) UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ds, ok := r.items[id]
	if !ok {
		return core.ErrDatasetNotFound
	}
	ds.Status = status
	ds.ErrorMessage = errorMsg
	return nil
}

func (r *memDatasetRepo) ListByStatus(ctx context.Context, status dataset.Status) ([]*dataset.Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*dataset.Dataset{}
	for _, ds := range r.items {
		if ds.Status == status {
			copied := *ds
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memReportRepo struct {
	mu    sync.Mutex
	items []*report.Stored
}

func (r *memReportRepo) Save(ctx context.Context, stored *report.Stored) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, stored)
	return nil
}

func (r *memReportRepo) GetByID(ctx context.Context, id core.ReportID) (*report.Stored, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.ID == id {
			return stored, nil
		}
	}
	return nil, core.ErrReportNotFound
}

func (r *memReportRepo) GetLatestByDataset(ctx context.Context, datasetID core.DatasetID) (*report.Stored, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].DatasetID == datasetID {
			return r.items[i], nil
		}
	}
	return nil, core.ErrReportNotFound
}

func (r *memReportRepo) ListByDataset(ctx context.Context, datasetID core.DatasetID, limit int) ([]*report.Stored, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*report.Stored{}
	for _, stored := range r.items {
		if stored.DatasetID == datasetID {
			out = append(out, stored)
		}
	}
	return out, nil
}

func (r *memReportRepo) DeleteByDataset(ctx context.Context, datasetID core.DatasetID) error {
	return nil
}

type fakePlotEngine struct{}

func (e *fakePlotEngine) Generate(ctx context.Context, filePath string, rep *report.Report, target string, name string) ([]byte, error) {
	if name != "missing_heatmap" {
		return nil, fmt.Errorf("unknown plot %q", name)
	}
	return []byte("png-bytes"), nil
}

func (e *fakePlotEngine) SupportedPlots() []string { return []string{"missing_heatmap"} }

type testApp struct {
	app      *App
	datasets *memDatasetRepo
	reports  *memReportRepo
	worker   *worker.Worker
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0"},
		Storage: config.StorageConfig{UploadDir: t.TempDir(), MaxUploadSize: 32 << 20},
	}
	datasets := newMemDatasetRepo()
	reports := &memReportRepo{}
	files := storage.NewLocalFileStorage(cfg.Storage.UploadDir)
	w := worker.New(context.Background(), datasets, reports, pipeline.New(), 1)

	return &testApp{
		app:      NewApp(cfg, datasets, reports, files, &fakePlotEngine{}, w),
		datasets: datasets,
		reports:  reports,
		worker:   w,
	}
}

func multipartUpload(t *testing.T, filename string, lines []string, target string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	if target != "" {
		require.NoError(t, writer.WriteField("target_column", target))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/datasets/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	return payload
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)

	rec := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeJSON(t, rec)["status"])
}

func TestUploadAndReportLifecycle(t *testing.T) {
	ta := newTestApp(t)
	router := ta.app.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "train.csv", testkit.ClassificationCSV(t, 150, 9), "label"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	accepted := decodeJSON(t, rec)
	id := accepted["dataset_id"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, string(dataset.StatusPending), accepted["status"])

	ta.worker.Wait()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets/"+id+"/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeJSON(t, rec)
	require.Equal(t, string(dataset.StatusCompleted), status["status"])
	require.Equal(t, float64(150), status["rows"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decodeJSON(t, rec)
	require.Equal(t, "completed", rep["status"])
	require.Contains(t, rep, "score")
	require.Contains(t, rep, "report")
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	ta := newTestApp(t)

	rec := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(rec, multipartUpload(t, "data.parquet", []string{"a,b"}, ""))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReportWhilePending(t *testing.T) {
	ta := newTestApp(t)
	ds := dataset.New("pending.csv", "/tmp/pending.csv", 10, "", "")
	require.NoError(t, ta.datasets.Create(context.Background(), ds))

	rec := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+ds.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "processing", decodeJSON(t, rec)["status"])
}

func TestReportForFailedDataset(t *testing.T) {
	ta := newTestApp(t)
	ds := dataset.New("bad.csv", "/tmp/bad.csv", 10, "", "")
	ds.MarkFailed("dataset load failed")
	require.NoError(t, ta.datasets.Create(context.Background(), ds))

	rec := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+ds.ID.String(), nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Analysis failed", decodeJSON(t, rec)["detail"])
}

func TestUnknownDatasetIs404(t *testing.T) {
	ta := newTestApp(t)

	rec := httptest.NewRecorder()
	ta.app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/datasets/nope/status", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportView(t *testing.T) {
	ta := newTestApp(t)
	router := ta.app.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "view.csv", testkit.ClassificationCSV(t, 120, 5), "label"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := decodeJSON(t, rec)["dataset_id"].(string)

	ta.worker.Wait()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+id+"/view", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeJSON(t, rec)
	require.Contains(t, view, "sentinel_score")
	require.Contains(t, view, "summary_html")
	require.Contains(t, view, "sections")
	require.Equal(t, []any{"missing_heatmap"}, view["available_plots"])
}

func TestGetPlot(t *testing.T) {
	ta := newTestApp(t)
	router := ta.app.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartUpload(t, "plot.csv", testkit.ClassificationCSV(t, 120, 6), "label"))
	id := decodeJSON(t, rec)["dataset_id"].(string)

	ta.worker.Wait()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots/"+id+"/missing_heatmap", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots/"+id+"/unknown", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
