package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docxport/internal/config"
	"github.com/dgallion1/docxport/internal/exporter"
	"github.com/dgallion1/docxport/internal/parser"
)

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

// Orchestrator manages the asynchronous export pipeline.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	exporter *exporter.Exporter
	defaults exporter.Config
	stats    *LatencyStats
	log      *slog.Logger
	cfg      config.Config

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. defaults are the server-wide export
// settings each request's config is layered over.
func NewOrchestrator(cfg config.Config, ex *exporter.Exporter, defaults exporter.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		exporter: ex,
		defaults: defaults,
		stats:    NewLatencyStats(time.Hour),
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range max(o.cfg.WorkerCount, 1) {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.exporter, o.defaults, o.ParserOptions(), o.stats, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				if n := o.jobs.Cleanup(); n > 0 {
					o.log.Debug("expired jobs removed", "count", n)
				}
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Queued jobs that no worker has
// picked up are marked failed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()

	for job := range o.queue {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "queued")
	}
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError(ErrQueueFull.Error())
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// Convert runs one export synchronously, outside the queue, and records its
// latency.
func (o *Orchestrator) Convert(ctx context.Context, in Input) (*exporter.Document, error) {
	tree, err := Import(in, o.ParserOptions())
	if err != nil {
		return nil, err
	}
	start := time.Now()
	doc, err := o.exporter.Export(ctx, tree, Resolve(o.defaults, in, tree))
	if err != nil {
		o.stats.RecordFailure()
		return nil, err
	}
	o.stats.Record(time.Since(start), doc.Len())
	return doc, nil
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling export latency aggregate.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

// ParserOptions returns the importer settings derived from the config.
func (o *Orchestrator) ParserOptions() parser.Options {
	return parser.Options{PdftotextFallback: o.cfg.PDFFallbackPdftotext}
}
