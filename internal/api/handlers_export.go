package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docxport/internal/doctree"
	"github.com/dgallion1/docxport/internal/exporter"
	"github.com/dgallion1/docxport/internal/parser"
	"github.com/dgallion1/docxport/internal/pipeline"
)

// exportRequest is the JSON body of /api/export and /api/exports.
type exportRequest struct {
	Document json.RawMessage  `json:"document"`
	Config   *exporter.Config `json:"config,omitempty"`
	Format   string           `json:"format,omitempty"` // docx or base64
	Filename string           `json:"filename,omitempty"`
	Root     string           `json:"root,omitempty"` // JSONPath into document
}

// badRequest is an input problem the client can fix.
type badRequest struct {
	msg  string
	code int
}

func (e *badRequest) Error() string { return e.msg }

func invalid(code int, format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...), code: code}
}

// handleExport converts a JSON tree synchronously.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	in, format, err := s.readJSON(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	doc, err := s.orchestrator.Convert(r.Context(), in)
	if err != nil {
		s.exportError(w, err)
		return
	}
	writeDocument(w, r, doc, pipeline.OutputName(in.Filename), format, time.Now())
}

// handleConvert imports an uploaded file and exports it synchronously.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	in, format, err := s.readUpload(w, r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	doc, err := s.orchestrator.Convert(r.Context(), in)
	if err != nil {
		s.exportError(w, err)
		return
	}
	writeDocument(w, r, doc, pipeline.OutputName(in.Filename), format, time.Now())
}

// handleSubmitExport queues an export from a JSON body or a multipart upload.
func (s *Server) handleSubmitExport(w http.ResponseWriter, r *http.Request) {
	var (
		in     pipeline.Input
		format exporter.Format
		err    error
	)
	if isMultipart(r) {
		in, format, err = s.readUpload(w, r)
		if err == nil {
			defer r.MultipartForm.RemoveAll()
		}
	} else {
		in, format, err = s.readJSON(w, r)
	}
	if err != nil {
		writeInputError(w, err)
		return
	}

	job := pipeline.NewJob(in, format)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"job_id":       job.ID,
		"status":       pipeline.StatusQueued,
		"poll_url":     fmt.Sprintf("/api/exports/%s/status", job.ID),
		"download_url": fmt.Sprintf("/api/exports/%s/download", job.ID),
	})
}

func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":     snap.ID,
		"status":     snap.Status,
		"phase":      snap.Phase,
		"filename":   snap.Filename,
		"result":     snap.Result,
		"created_at": snap.CreatedAt,
		"updated_at": snap.UpdatedAt,
	}
	if snap.Status == pipeline.StatusCompleted {
		resp["download_url"] = fmt.Sprintf("/api/exports/%s/download", snap.ID)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
	case pipeline.StatusFailed:
		jsonError(w, "export failed: "+strings.Join(snap.Result.Errors, "; "), http.StatusUnprocessableEntity)
		return
	default:
		jsonError(w, fmt.Sprintf("export is %s", snap.Status), http.StatusConflict)
		return
	}
	writeDocument(w, r, job.Document(), snap.Filename, snap.Format, snap.UpdatedAt)
}

// readJSON decodes an export request body.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request) (pipeline.Input, exporter.Format, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.Input{}, "", invalid(http.StatusRequestEntityTooLarge, "body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
		}
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "invalid json: %s", err)
	}
	if len(req.Document) == 0 || string(req.Document) == "null" {
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "document is required")
	}
	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "%s", err)
	}
	tree, err := doctree.Select(req.Document, req.Root)
	if err != nil {
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "document: %s", err)
	}

	in := pipeline.Input{Filename: req.Filename, Tree: tree}
	if req.Config != nil {
		in.Config = *req.Config
	}
	return in, format, nil
}

// readUpload reads the multipart "file" field plus the optional "config"
// (JSON), "format" and "root" fields. On success the caller owns
// r.MultipartForm.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (pipeline.Input, exporter.Format, error) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "invalid multipart form: %s", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "file is required: %s", err)
	}
	defer file.Close()

	in, format, err := s.uploadInput(r, header.Filename, file)
	if err != nil {
		r.MultipartForm.RemoveAll()
	}
	return in, format, err
}

func (s *Server) uploadInput(r *http.Request, name string, file io.Reader) (pipeline.Input, exporter.Format, error) {
	filename := sanitizeFilename(name)
	if !parser.IsSupportedExtension(filename) {
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return pipeline.Input{}, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return pipeline.Input{}, "", invalid(http.StatusRequestEntityTooLarge, "file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}

	format, err := exporter.ParseFormat(r.FormValue("format"))
	if err != nil {
		return pipeline.Input{}, "", invalid(http.StatusBadRequest, "%s", err)
	}

	in := pipeline.Input{Filename: filename, Data: data, Root: r.FormValue("root")}
	if raw := r.FormValue("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Config); err != nil {
			return pipeline.Input{}, "", invalid(http.StatusBadRequest, "invalid config: %s", err)
		}
	}
	return in, format, nil
}

// exportError maps conversion failures: unreadable input is the client's
// fault, everything after import is an export-fatal error.
func (s *Server) exportError(w http.ResponseWriter, err error) {
	if errors.Is(err, pipeline.ErrImport) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Warn("export failed", "error", err)
	jsonError(w, err.Error(), http.StatusUnprocessableEntity)
}

func writeInputError(w http.ResponseWriter, err error) {
	var br *badRequest
	if errors.As(err, &br) {
		jsonError(w, br.msg, br.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

// writeDocument sends the package in the requested format. Binary responses
// carry the package digest as ETag, so repeat downloads can be answered
// with 304.
func writeDocument(w http.ResponseWriter, r *http.Request, doc *exporter.Document, filename string, format exporter.Format, modified time.Time) {
	if format == exporter.FormatBase64 {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"filename": filename,
			"data":     doc.Base64(),
		})
		return
	}

	blob := doc.Blob()
	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("ETag", `"`+doc.SHA256()+`"`)
	http.ServeContent(w, r, filename, modified, blob.Open())
}

func isMultipart(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "multipart/form-data"
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
