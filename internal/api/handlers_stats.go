package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"conversions": s.engine.MetricsSnapshot(),
		"queue": map[string]any{
			"depth": s.queue.Depth(),
			"tasks": s.queue.Counts(),
		},
	})
}
