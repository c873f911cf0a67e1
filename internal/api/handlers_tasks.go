package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/draftmill/draftmill/internal/queue"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleConvertAsync(w http.ResponseWriter, r *http.Request) {
	req, _, ok := s.decodeConvertRequest(w, r)
	if !ok {
		return
	}

	var overlay []byte
	if req.Config != "" {
		overlay = []byte(req.Config)
	}
	filename := "document.md"
	if req.Filename != "" {
		filename = sanitizeFilename(req.Filename)
	}

	id, err := s.queue.Submit([]byte(req.Markdown), overlay, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"task_id":  id,
		"status":   queue.StatusQueued,
		"poll_url": fmt.Sprintf("/api/tasks/%s/status", id),
	})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task := s.queue.Get(taskID)
	if task == nil {
		jsonError(w, "task not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(task.Snapshot())
}

func (s *Server) handleTaskDownload(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task := s.queue.Get(taskID)
	if task == nil {
		jsonError(w, "task not found", http.StatusNotFound)
		return
	}

	switch snap := task.Snapshot(); snap.Status {
	case queue.StatusCompleted:
		writeDocx(w, task.Result(), fmt.Sprintf("converted_%s.docx", taskID))
	case queue.StatusFailed:
		jsonError(w, "task failed: "+snap.Error, http.StatusGone)
	default:
		jsonError(w, "task not completed yet", http.StatusConflict)
	}
}
