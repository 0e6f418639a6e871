package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docxport/internal/exporter"
	"github.com/dgallion1/docxport/internal/parser"
)

// Worker processes a single export job.
type Worker struct {
	exporter *exporter.Exporter
	defaults exporter.Config
	parse    parser.Options
	stats    *LatencyStats
	log      *slog.Logger
}

func NewWorker(ex *exporter.Exporter, defaults exporter.Config, parse parser.Options, stats *LatencyStats, log *slog.Logger) *Worker {
	return &Worker{
		exporter: ex,
		defaults: defaults,
		parse:    parse,
		stats:    stats,
		log:      log,
	}
}

// Process imports the job's input and exports it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	in := job.Input()

	// Phase 1: Import
	job.SetStatus(StatusImporting, "importing")
	tree, err := Import(in, w.parse)
	if err != nil {
		log.Error("import failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "importing")
		w.stats.RecordFailure()
		return
	}

	// Phase 2: Export
	job.SetStatus(StatusExporting, "exporting")
	start := time.Now()
	doc, err := w.exporter.Export(ctx, tree, Resolve(w.defaults, in, tree))
	took := time.Since(start)
	if err != nil {
		log.Error("export failed", "error", err, "duration_ms", took.Milliseconds())
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "exporting")
		w.stats.RecordFailure()
		return
	}

	w.stats.Record(took, doc.Len())
	job.Complete(doc, took)
	log.Info("export complete", "bytes", doc.Len(), "duration_ms", took.Milliseconds())
}
