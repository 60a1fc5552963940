// Package worker runs dataset analysis asynchronously. Uploads enqueue work;
// the worker transitions the dataset through processing to completed or
// failed and persists the resulting report.
package worker

import (
	"context"
	"log"
	"time"

	"sentinel/domain/core"
	"sentinel/domain/dataset"
	"sentinel/domain/report"
	"sentinel/internal/pipeline"
	"sentinel/ports"

	"golang.org/x/sync/errgroup"
)

// Worker processes queued datasets with bounded concurrency.
type Worker struct {
	datasets ports.DatasetRepository
	reports  ports.ReportRepository
	pipe     *pipeline.Pipeline
	group    *errgroup.Group
	ctx      context.Context
}

// New creates a worker that runs at most concurrency analyses in parallel.
func New(ctx context.Context, datasets ports.DatasetRepository, reports ports.ReportRepository, pipe *pipeline.Pipeline, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	return &Worker{
		datasets: datasets,
		reports:  reports,
		pipe:     pipe,
		group:    group,
		ctx:      ctx,
	}
}

// Enqueue schedules a dataset for analysis. It returns immediately; the
// analysis outcome lands in the dataset's status and the reports table.
func (w *Worker) Enqueue(id core.DatasetID) {
	w.group.Go(func() error {
		w.process(id)
		return nil
	})
}

// ResumePending re-enqueues datasets left in pending or processing state,
// typically after a restart.
func (w *Worker) ResumePending(ctx context.Context) error {
	for _, status := range []dataset.Status{dataset.StatusPending, dataset.StatusProcessing} {
		stuck, err := w.datasets.ListByStatus(ctx, status)
		if err != nil {
			return err
		}
		for _, ds := range stuck {
			log.Printf("[Worker] Resuming dataset %s (was %s)", ds.ID, status)
			w.Enqueue(ds.ID)
		}
	}
	return nil
}

// Wait blocks until all enqueued analyses finish.
func (w *Worker) Wait() {
	w.group.Wait()
}

func (w *Worker) process(id core.DatasetID) {
	ctx := w.ctx

	ds, err := w.datasets.GetByID(ctx, id)
	if err != nil {
		log.Printf("[Worker] Dataset %s not found: %v", id, err)
		return
	}

	ds.MarkProcessing()
	if err := w.datasets.UpdateStatus(ctx, ds.ID, ds.Status, ""); err != nil {
		log.Printf("[Worker] Failed to mark dataset %s processing: %v", ds.ID, err)
		return
	}

	rep, score, err := w.pipe.Run(ctx, ds.FilePath, ds.TargetColumn)
	if err != nil {
		log.Printf("[Worker] Analysis failed for dataset %s: %v", ds.ID, err)
		ds.MarkFailed(err.Error())
		if updateErr := w.datasets.Update(ctx, ds); updateErr != nil {
			log.Printf("[Worker] Failed to mark dataset %s failed: %v", ds.ID, updateErr)
		}
		return
	}

	stored := &report.Stored{
		ID:        core.ReportID(core.NewID()),
		DatasetID: ds.ID,
		Document:  rep,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.reports.Save(ctx, stored); err != nil {
		log.Printf("[Worker] Failed to save report for dataset %s: %v", ds.ID, err)
		ds.MarkFailed("report persistence failed")
		if updateErr := w.datasets.Update(ctx, ds); updateErr != nil {
			log.Printf("[Worker] Failed to mark dataset %s failed: %v", ds.ID, updateErr)
		}
		return
	}

	ds.MarkCompleted(rep.Ingestion.Int("rows"), rep.Ingestion.Int("columns"))
	if err := w.datasets.Update(ctx, ds); err != nil {
		log.Printf("[Worker] Failed to mark dataset %s completed: %v", ds.ID, err)
	}
}
