package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/dgallion1/docxport/internal/exporter"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob(Input{Filename: "notes/report.md", Data: []byte("hello world")}, exporter.FormatBase64)
	if len(job.ID) != 26 {
		t.Errorf("expected a 26 character ULID, got %q", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.Filename != "report.docx" {
		t.Errorf("expected filename %q, got %q", "report.docx", job.Filename)
	}
	if job.InputHash != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Errorf("unexpected input hash %q", job.InputHash)
	}
	if string(job.Input().Data) != "hello world" {
		t.Errorf("expected input to be kept, got %q", job.Input().Data)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusImporting, "importing"},
		{StatusExporting, "exporting"},
		{StatusFailed, "exporting"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if !job.Status.Done() || StatusExporting.Done() {
		t.Error("expected only terminal statuses to be done")
	}
}

func TestJob_Complete(t *testing.T) {
	doc, err := exporter.New().Export(context.Background(), paragraphDoc("hi"), exporter.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	job := NewJob(Input{Filename: "a.txt", Data: []byte("hi")}, exporter.FormatBuffer)
	if job.Document() != nil {
		t.Fatal("expected no document before completion")
	}
	job.Complete(doc, 42*time.Millisecond)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Phase != "done" {
		t.Errorf("expected completed/done, got %s/%s", snap.Status, snap.Phase)
	}
	if snap.Result.Bytes != doc.Len() || snap.Result.SHA256 != doc.SHA256() {
		t.Errorf("unexpected result: %+v", snap.Result)
	}
	if snap.Result.DurationMs != 42 {
		t.Errorf("expected 42ms, got %d", snap.Result.DurationMs)
	}
	if job.Document() != doc {
		t.Error("expected the document to be kept")
	}
	if job.Input().Data != nil {
		t.Error("expected the input to be released")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("image fetch failed")
	job.AddError("table: malformed")

	snap := job.Snapshot()
	if len(snap.Result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Result.Errors))
	}
	if snap.Result.Errors[0] != "image fetch failed" {
		t.Errorf("expected first error %q, got %q", "image fetch failed", snap.Result.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Result.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Result.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Result.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 job removed, got %d", n)
	}
	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", store.Len())
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.md", "report.docx"},
		{"dir/sub/notes.txt", "notes.docx"},
		{`C:\docs\plan.html`, "plan.docx"},
		{"", "document.docx"},
		{`we"ird;name.csv`, "weirdname.docx"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.in); got != tt.want {
			t.Errorf("OutputName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
