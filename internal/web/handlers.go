package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/seaboard-labs/rosterd/internal/roster"
)

// handleImport runs a full reconciliation pass over the posted document.
// The document arrives either as the raw request body (text/csv or
// text/plain) or as the "file" part of a multipart form. The default role
// for non-contractor rows can be overridden with the default_role query
// parameter.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, roster.ErrTooManyImports) {
			status = http.StatusTooManyRequests
		}
		s.respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	raw, err := s.readDocument(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	defaultRole := strings.TrimSpace(r.URL.Query().Get("default_role"))
	if defaultRole == "" {
		defaultRole = s.cfg.Import.DefaultRole
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	result := s.importer.Import(ctx, raw, defaultRole)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// handlePreview returns headers, row count and a small sample without
// touching the registry, so an operator can confirm the file first.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	raw, err := s.readDocument(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	preview, err := s.importer.Preview(raw)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleListRuns returns recent import run summaries, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.respondError(w, r, errors.New("run history is not configured"), http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleHealth reports liveness and, when a database is attached, storage
// reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.respondError(w, r, fmt.Errorf("database unreachable: %w", err), http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readDocument extracts the raw roster document from the request,
// accepting either a multipart "file" field or the plain request body.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (string, error) {
	maxSize := s.cfg.Import.MaxBodySize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return "", fmt.Errorf("file too large or invalid form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("no file provided: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", errors.New("empty document")
	}
	return string(data), nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondError logs the technical error with its request ID and returns a
// JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", chimw.GetReqID(r.Context()),
	)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
