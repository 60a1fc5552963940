package api

import (
	"fmt"
	"net/http"
	"strconv"

	"sentinel/domain/core"
	"sentinel/domain/dataset"
	"sentinel/domain/report"

	"github.com/go-chi/chi/v5"
)

const defaultListLimit = 50

// handleUpload accepts a multipart dataset upload, registers it, and queues
// the analysis.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.cfg.Storage.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	if !dataset.SupportedFile(header.Filename) {
		respondError(w, http.StatusUnprocessableEntity, "unsupported file type; expected .csv or .xlsx")
		return
	}
	if header.Size > a.cfg.Storage.MaxUploadSize {
		respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds maximum upload size of %d bytes", a.cfg.Storage.MaxUploadSize))
		return
	}

	filePath, hash, err := a.files.Store(r.Context(), file, header.Filename)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	ds := dataset.New(header.Filename, filePath, header.Size, hash, r.FormValue("target_column"))
	if err := a.datasets.Create(r.Context(), ds); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register dataset")
		return
	}
	a.worker.Enqueue(ds.ID)

	respondJSON(w, http.StatusAccepted, map[string]any{
		"dataset_id": ds.ID,
		"filename":   ds.OriginalFilename,
		"status":     ds.Status,
	})
}

func (a *App) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	datasets, err := a.datasets.List(r.Context(), limit, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list datasets")
		return
	}
	if datasets == nil {
		datasets = []*dataset.Dataset{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"datasets": datasets})
}

func (a *App) handleDatasetStatus(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.datasetFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"dataset_id": ds.ID,
		"status":     ds.Status,
		"rows":       ds.RecordCount,
		"columns":    ds.FieldCount,
	})
}

func (a *App) handleGetReport(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.datasetFromRequest(w, r)
	if !ok {
		return
	}

	switch ds.Status {
	case dataset.StatusPending, dataset.StatusProcessing:
		respondJSON(w, http.StatusOK, processingResponse(ds))
		return
	case dataset.StatusFailed:
		respondError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	stored, err := a.reports.GetLatestByDataset(r.Context(), ds.ID)
	if err != nil {
		if core.IsNotFoundError(err) {
			respondJSON(w, http.StatusOK, processingResponse(ds))
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"dataset_id": ds.ID,
		"score":      stored.Score,
		"report":     stored.Document,
		"status":     "completed",
	})
}

func (a *App) handleReportView(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.datasetFromRequest(w, r)
	if !ok {
		return
	}
	if ds.Status != dataset.StatusCompleted {
		respondError(w, http.StatusBadRequest, "Analysis not completed")
		return
	}

	stored, err := a.reports.GetLatestByDataset(r.Context(), ds.ID)
	if err != nil {
		if core.IsNotFoundError(err) {
			respondError(w, http.StatusNotFound, "Report not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	view := buildReportView(ds, stored, a.plots.SupportedPlots())
	respondJSON(w, http.StatusOK, view)
}

func (a *App) handleGetPlot(w http.ResponseWriter, r *http.Request) {
	ds, ok := a.datasetFromRequest(w, r)
	if !ok {
		return
	}
	plotType := chi.URLParam(r, "plotType")

	if ds.Status != dataset.StatusCompleted {
		respondError(w, http.StatusBadRequest, "Analysis not completed")
		return
	}
	stored, err := a.reports.GetLatestByDataset(r.Context(), ds.ID)
	if err != nil {
		if core.IsNotFoundError(err) {
			respondError(w, http.StatusBadRequest, "Analysis not completed")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	image, err := a.plots.Generate(r.Context(), ds.FilePath, stored.Document, ds.TargetColumn, plotType)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Unknown or unrenderable plot %q", plotType))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}

// datasetFromRequest resolves the datasetID path parameter, writing the error
// response itself when resolution fails.
func (a *App) datasetFromRequest(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "datasetID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset ID")
		return nil, false
	}
	ds, err := a.datasets.GetByID(r.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			respondError(w, http.StatusNotFound, "Dataset not found")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to load dataset")
		return nil, false
	}
	return ds, true
}

func processingResponse(ds *dataset.Dataset) map[string]any {
	return map[string]any{
		"dataset_id": ds.ID,
		"score":      0,
		"report":     report.Result{},
		"status":     "processing",
	}
}
