package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/cvparse/internal/parser"
	"github.com/dgallion1/cvparse/internal/pipeline"
	"github.com/dgallion1/cvparse/internal/resume"
)

type uploadResponse struct {
	ID       string         `json:"id"`
	S3File   string         `json:"s3_file"`
	ParsedS3 string         `json:"parsed_s3"`
	Parsed   *resume.Resume `json:"parsed"`
}

// handleUpload parses one multipart "file" inline and stores the upload
// and its record before answering.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	fh, ok := s.singleFile(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, "file type not allowed", http.StatusBadRequest)
		return
	}
	data, err := s.readUpload(fh)
	if err != nil {
		uploadError(w, err)
		return
	}

	res, err := s.orchestrator.Worker().ProcessSync(r.Context(), filename, data)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrUnsupportedFormat):
			jsonError(w, "file type not allowed", http.StatusBadRequest)
		case pipeline.FailedPhase(err) == "storing":
			jsonError(w, "storage failed: "+err.Error(), http.StatusBadGateway)
		default:
			jsonError(w, "parsing failed: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:       res.ResumeID,
		S3File:   res.UploadKey,
		ParsedS3: res.RecordKey,
		Parsed:   res.Record.Parsed,
	})
}
