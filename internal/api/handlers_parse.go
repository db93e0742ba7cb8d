package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

type parseRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// handleParse parses text sent as the request body, either raw or as
// {"text": "...", "mode": "..."}. The mode may also come from ?mode=.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req parseRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			bodyError(w, err)
			return
		}
	} else {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			bodyError(w, err)
			return
		}
		req.Text = string(body)
	}
	if mode := r.URL.Query().Get("mode"); mode != "" {
		req.Mode = mode
	}

	res, err := s.orchestrator.Worker().ParseTextMode(req.Text, req.Mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func bodyError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		jsonError(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
}
