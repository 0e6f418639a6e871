package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/docxport/internal/config"
	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/exporter"
)

func paragraphDoc(text string) *doctree.Node {
	return doctree.New("doc", nil, doctree.New("paragraph", nil, doctree.NewText(text)))
}

func testConfig() config.Config {
	return config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
}

func newTestOrchestrator(cfg config.Config) *Orchestrator {
	log := slog.New(slog.DiscardHandler)
	return NewOrchestrator(cfg, exporter.New(exporter.WithLogger(log)), exporter.Config{Creator: "docxport"}, log)
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Status.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestratorProcessesJobs(t *testing.T) {
	o := newTestOrchestrator(testConfig())
	o.Start(context.Background())
	defer o.Stop()

	md := NewJob(Input{Filename: "notes.md", Data: []byte("# Notes\n\n- one\n- two\n")}, exporter.FormatBuffer)
	tree := NewJob(Input{Filename: "tree.json", Tree: paragraphDoc("hello")}, exporter.FormatBase64)
	bad := NewJob(Input{Filename: "slides.pptx", Data: []byte("x")}, exporter.FormatBuffer)

	for _, job := range []*Job{md, tree, bad} {
		if err := o.Submit(job); err != nil {
			t.Fatalf("submit %s: %v", job.Filename, err)
		}
	}

	for _, job := range []*Job{md, tree} {
		snap := waitDone(t, job)
		if snap.Status != StatusCompleted {
			t.Fatalf("%s: expected completed, got %s (%v)", job.Filename, snap.Status, snap.Result.Errors)
		}
		if job.Document() == nil || snap.Result.Bytes == 0 {
			t.Errorf("%s: expected a package", job.Filename)
		}
	}

	snap := waitDone(t, bad)
	if snap.Status != StatusFailed || snap.Phase != "importing" {
		t.Errorf("expected failed in importing, got %s/%s", snap.Status, snap.Phase)
	}
	if len(snap.Result.Errors) != 1 {
		t.Errorf("expected one error, got %v", snap.Result.Errors)
	}

	if got := o.GetJob(md.ID); got != md {
		t.Error("expected to look the job up by id")
	}
	stats := o.Stats()
	if stats.Count != 2 || stats.Failed != 1 {
		t.Errorf("expected 2 exports and 1 failure, got %+v", stats)
	}
}

func TestOrchestratorQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Not started: nothing drains the queue.
	o := newTestOrchestrator(cfg)

	first := NewJob(Input{Filename: "a.txt", Data: []byte("a")}, exporter.FormatBuffer)
	if err := o.Submit(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := NewJob(Input{Filename: "b.txt", Data: []byte("b")}, exporter.FormatBuffer)
	err := o.Submit(second)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected failed/queue_full, got %s/%s", snap.Status, snap.Phase)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	o.Stop()
	if snap := first.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected queued job to fail on stop, got %s", snap.Status)
	}
	if err := o.Submit(NewJob(Input{Filename: "c.txt"}, exporter.FormatBuffer)); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
	o.Stop()
}

func TestOrchestratorConvert(t *testing.T) {
	o := newTestOrchestrator(testConfig())
	doc, err := o.Convert(context.Background(), Input{Filename: "a.csv", Data: []byte("x,y\n1,2\n")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Len() == 0 {
		t.Error("expected a package")
	}

	_, err = o.Convert(context.Background(), Input{Filename: "a.json", Data: []byte(`{"type":"doc"}`), Root: "$.missing"})
	if !errors.Is(err, ErrImport) {
		t.Errorf("expected an import error for an unmatched root, got %v", err)
	}
	if got := o.Stats().Count; got != 1 {
		t.Errorf("expected 1 recorded export, got %d", got)
	}
}

func TestResolveTitle(t *testing.T) {
	tree := paragraphDoc("x")
	tree.Attrs = map[string]any{"title": "From tree"}

	cfg := Resolve(exporter.Config{Creator: "svc"}, Input{}, tree)
	if cfg.Title != "From tree" || cfg.Creator != "svc" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	cfg = Resolve(exporter.Config{}, Input{Config: exporter.Config{Title: "Explicit"}}, tree)
	if cfg.Title != "Explicit" {
		t.Errorf("expected explicit title to win, got %q", cfg.Title)
	}
}
