package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/parser"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// convertRequest is the JSON body shared by the synchronous and async
// conversion endpoints. Config carries an optional YAML document layered
// over the server's base configuration for this request only.
type convertRequest struct {
	Markdown string `json:"markdown"`
	Config   string `json:"config,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// decodeConvertRequest parses and validates a conversion body. It writes
// the error response itself and reports ok=false when the request is bad.
func (s *Server) decodeConvertRequest(w http.ResponseWriter, r *http.Request) (convertRequest, *config.Conversion, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return convertRequest{}, nil, false
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return convertRequest{}, nil, false
	}
	if req.Markdown == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return convertRequest{}, nil, false
	}

	cfg := s.engine.Config()
	if req.Config != "" {
		overlay, err := config.ParseConversion([]byte(req.Config))
		if err != nil {
			jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return convertRequest{}, nil, false
		}
		cfg = overlay
	}
	return req, cfg, true
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, cfg, ok := s.decodeConvertRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	data, err := s.engine.ConvertWith(r.Context(), []byte(req.Markdown), cfg)
	if err != nil {
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	// docx_data is a []byte, which encoding/json emits as base64.
	json.NewEncoder(w).Encode(map[string]any{
		"success":            true,
		"docx_data":          data,
		"file_size":          len(data),
		"conversion_time_ms": time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleConvertDownload(w http.ResponseWriter, r *http.Request) {
	req, cfg, ok := s.decodeConvertRequest(w, r)
	if !ok {
		return
	}

	data, err := s.engine.ConvertWith(r.Context(), []byte(req.Markdown), cfg)
	if err != nil {
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeDocx(w, data, docxFilename(req.Filename))
}

func (s *Server) handleConvertUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	var cfg *config.Conversion
	if y := r.FormValue("config"); y != "" {
		cfg, err = config.ParseConversion([]byte(y))
		if err != nil {
			jsonError(w, "invalid config: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	out, err := s.engine.ConvertUpload(r.Context(), data, filename, cfg)
	if err != nil {
		jsonError(w, "conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeDocx(w, out, docxFilename(filename))
}

func writeDocx(w http.ResponseWriter, data []byte, filename string) {
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// docxFilename turns a client-supplied name into a safe attachment name
// ending in .docx.
func docxFilename(name string) string {
	if name == "" {
		return "converted.docx"
	}
	name = sanitizeFilename(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" {
		return "converted.docx"
	}
	return name + ".docx"
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
