package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/configsvc"
)

// configEditRequest asks for a natural-language edit of a conversion
// config. An empty Config edits the server's base configuration.
type configEditRequest struct {
	Config      string `json:"config,omitempty"`
	Instruction string `json:"instruction"`
}

// handleConfigValidate checks a conversion config without applying it.
// The body is either raw YAML or a JSON wrapper {"config": "..."}.
func (s *Server) handleConfigValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	src := body
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Config string `json:"config"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		src = []byte(req.Config)
	}
	if len(strings.TrimSpace(string(src))) == 0 {
		jsonError(w, "config is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := config.ParseConversion(src); err != nil {
		json.NewEncoder(w).Encode(map[string]any{"valid": false, "error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"valid": true})
}

func (s *Server) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	req, base, ok := s.decodeConfigEdit(w, r)
	if !ok {
		return
	}

	updated, err := s.cfgsvc.ApplyInstruction(r.Context(), base, req.Instruction)
	if err != nil {
		configEditError(w, err)
		return
	}
	out, err := updated.YAML()
	if err != nil {
		jsonError(w, "serialize config: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":        true,
		"updated_config": string(out),
	})
}

func (s *Server) handleConfigPreview(w http.ResponseWriter, r *http.Request) {
	req, base, ok := s.decodeConfigEdit(w, r)
	if !ok {
		return
	}

	preview, err := s.cfgsvc.Preview(r.Context(), base, req.Instruction)
	if err != nil {
		configEditError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":        true,
		"preview":        true,
		"updated_config": preview,
	})
}

func (s *Server) decodeConfigEdit(w http.ResponseWriter, r *http.Request) (configEditRequest, *config.Conversion, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req configEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return configEditRequest{}, nil, false
	}
	if strings.TrimSpace(req.Instruction) == "" {
		jsonError(w, "instruction is required", http.StatusBadRequest)
		return configEditRequest{}, nil, false
	}

	base := s.engine.Config()
	if req.Config != "" {
		cfg, err := config.ParseConversion([]byte(req.Config))
		if err != nil {
			jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return configEditRequest{}, nil, false
		}
		base = cfg
	}
	return req, base, true
}

func configEditError(w http.ResponseWriter, err error) {
	if errors.Is(err, configsvc.ErrLLMDisabled) {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	jsonError(w, "config update failed: "+err.Error(), http.StatusInternalServerError)
}
