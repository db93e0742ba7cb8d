package api

import "net/http"

func (s *Server) handleParseStats(w http.ResponseWriter, r *http.Request) {
	if s.latency == nil {
		jsonError(w, "parse stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"parse":       s.latency.Snapshot(),
	})
}
