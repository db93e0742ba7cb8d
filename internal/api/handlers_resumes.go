package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/cvparse/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// resumeID reads the {id} URL parameter. IDs are UUIDs, which also keeps
// them from escaping their storage prefix.
func resumeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, "invalid resume id", http.StatusBadRequest)
		return "", false
	}
	return id.String(), true
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	id, ok := resumeID(w, r)
	if !ok {
		return
	}
	rec, err := s.records.LoadRecord(r.Context(), id)
	if err != nil {
		s.storageError(w, "load", id, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	id, ok := resumeID(w, r)
	if !ok {
		return
	}
	if err := s.records.Delete(r.Context(), id); err != nil {
		s.storageError(w, "delete", id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) storageError(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(w, "resume not found", http.StatusNotFound)
		return
	}
	s.log.Error().Err(err).Str("op", op).Str("resume_id", id).Msg("storage error")
	code := http.StatusInternalServerError
	if storage.IsRetryable(err) {
		code = http.StatusServiceUnavailable
	}
	jsonError(w, op+" failed", code)
}
