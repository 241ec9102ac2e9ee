package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"markdownd/internal/urlconv"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// handleConvert accepts a document as a multipart "file" field or as the raw
// request body with an optional X-Filename header, and returns its markdown
// rendition.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if s.config.Convert.MaxUploadMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(s.config.Convert.MaxUploadMB)<<20)
	}

	var (
		body     io.Reader
		filename string
	)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
		filename = header.Filename
		if filename == "" {
			filename = "document"
		}
	} else {
		raw, rerr := io.ReadAll(r.Body)
		if rerr != nil || len(raw) == 0 {
			s.respondWithJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "No file provided",
				"message": "Send file via multipart/form-data or raw body",
			})
			return
		}
		body = bytes.NewReader(raw)
		filename = r.Header.Get("X-Filename")
		if filename == "" {
			filename = "document"
		}
	}

	result, size, err := s.files.Convert(r.Context(), body, filename)
	if err != nil {
		s.logger.Error("conversion failed", zap.String("filename", filename), zap.Error(err))
		s.countError(err)
		s.respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Conversion failed",
			"message": err.Error(),
			"type":    urlconv.ErrorKind(err),
		})
		return
	}

	metadata := map[string]any{
		"filename":        filename,
		"size_bytes":      size,
		"markdown_length": len(result.Markdown),
	}
	if result.Title != "" {
		metadata["title"] = result.Title
	}
	s.countConversion(filename)
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"markdown": result.Markdown,
		"metadata": metadata,
	})
}

func (s *Server) handleConvertURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.URL == "" {
		s.respondWithJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "No URL provided",
			"message": `Send JSON with "url" field`,
		})
		return
	}

	result, err := s.urls.Convert(r.Context(), payload.URL)
	if err != nil {
		s.logger.Error("url conversion failed", zap.String("url", payload.URL), zap.Error(err))
		s.countError(err)
		s.respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "URL conversion failed",
			"message": err.Error(),
			"type":    urlconv.ErrorKind(err),
		})
		return
	}

	metadata := map[string]any{
		"url":             payload.URL,
		"markdown_length": len(result.Markdown),
	}
	if result.Title != "" {
		metadata["title"] = result.Title
	}
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"markdown": result.Markdown,
		"metadata": metadata,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"version": serviceVersion,
		"endpoints": map[string]string{
			"GET /health":       "Health check",
			"POST /convert":     "Convert file to markdown (multipart/form-data or raw body)",
			"POST /convert/url": "Convert URL to markdown (JSON with url field)",
			"GET /metrics":      "Prometheus metrics",
			"GET /":             "This info page",
		},
		"supported_formats": []string{
			"HTML", "CSV", "TSV", "JSON", "XML",
			"Plain text / Markdown",
			"YouTube URLs",
		},
	})
}

// --- Helper Functions ---

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) countError(err error) {
	if s.metrics != nil {
		s.metrics.IncErrors(urlconv.ErrorKind(err))
	}
}

func (s *Server) countConversion(filename string) {
	if s.metrics == nil {
		return
	}
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if format == "" {
		format = "unknown"
	}
	s.metrics.IncConversions(format)
}
