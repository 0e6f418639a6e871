package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docxport/internal/exporter"
)

// JobStatus represents the state of an export job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusImporting JobStatus = "importing"
	StatusExporting JobStatus = "exporting"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single export.
type Job struct {
	mu sync.Mutex

	ID       string          `json:"job_id"`
	Status   JobStatus       `json:"status"`
	Phase    string          `json:"phase"`
	Filename string          `json:"filename"`
	Format   exporter.Format `json:"format"`
	Result   Result          `json:"result"`

	InputHash string    `json:"input_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	input  Input
	doc    *exporter.Document
	errors []string
}

// Result describes the finished package.
type Result struct {
	Bytes      int      `json:"bytes"`
	SHA256     string   `json:"sha256,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	Errors     []string `json:"errors"`
}

// NewJob creates a queued job for in. The output filename is derived from
// the input's name.
func NewJob(in Input, format exporter.Format) *Job {
	now := time.Now()
	job := &Job{
		ID:        generateULID(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  OutputName(in.Filename),
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
		input:     in,
	}
	if len(in.Data) > 0 {
		job.InputHash = ContentHashHex(in.Data)
	}
	return job
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs, and the packages they hold, that have not changed
// within the TTL.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		if now.Sub(job.updated()) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func (j *Job) updated() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Result.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Complete stores the finished package and marks the job completed. The
// input is released.
func (j *Job) Complete(doc *exporter.Document, took time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doc = doc
	j.input = Input{}
	j.Result.Bytes = doc.Len()
	j.Result.SHA256 = doc.SHA256()
	j.Result.DurationMs = took.Milliseconds()
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Document returns the finished package, or nil until the job completes.
func (j *Job) Document() *exporter.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.doc
}

// Input returns what the job converts.
func (j *Job) Input() Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.input
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string          `json:"job_id"`
	Status    JobStatus       `json:"status"`
	Phase     string          `json:"phase"`
	Filename  string          `json:"filename"`
	Format    exporter.Format `json:"format"`
	InputHash string          `json:"input_hash,omitempty"`
	Result    Result          `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	res := j.Result
	res.Errors = append([]string{}, j.errors...)
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Format:    j.Format,
		InputHash: j.InputHash,
		Result:    res,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
