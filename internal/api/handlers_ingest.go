package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/cvparse/internal/parser"
	"github.com/dgallion1/cvparse/internal/pipeline"
	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the file size limit for the
// rest of the form.
const multipartOverhead = 1 << 20

var errTooLarge = errors.New("file too large")

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	fh, ok := s.singleFile(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	data, err := s.readUpload(fh)
	if err != nil {
		uploadError(w, err)
		return
	}

	job := pipeline.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, jobAccepted(job))
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, jobStatus{JobSnapshot: job.Snapshot(), Parsed: job.Result()})
}

// jobStatus adds the parse result, once available, to the job snapshot.
type jobStatus struct {
	pipeline.JobSnapshot
	Parsed *resume.Resume `json:"parsed,omitempty"`
}

func (s *Server) handleBatchIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*multipartOverhead)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		formError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		data, err := s.readUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}
		results = append(results, jobAccepted(job))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func jobAccepted(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"filename":  snap.Filename,
		"job_id":    snap.ID,
		"resume_id": snap.ResumeID,
		"status":    snap.Status,
		"poll_url":  fmt.Sprintf("/api/ingest/%s/status", snap.ID),
	}
}

// singleFile parses the multipart form and returns its "file" part. On
// failure it has already written the error response.
func (s *Server) singleFile(w http.ResponseWriter, r *http.Request) (*multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		formError(w, err)
		return nil, false
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		r.MultipartForm.RemoveAll()
		// A part named "file" without a filename arrives as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			jsonError(w, "no selected file", http.StatusBadRequest)
		} else {
			jsonError(w, "no file part", http.StatusBadRequest)
		}
		return nil, false
	}
	if files[0].Filename == "" {
		r.MultipartForm.RemoveAll()
		jsonError(w, "no selected file", http.StatusBadRequest)
		return nil, false
	}
	return files[0], true
}

func (s *Server) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w (max %d bytes)", errTooLarge, s.cfg.MaxUploadBytes)
	}
	return data, nil
}

func uploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTooLarge) {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func formError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		jsonError(w, "request too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, http.ErrNotMultipart):
		jsonError(w, "no file part", http.StatusBadRequest)
	default:
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
	}
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
