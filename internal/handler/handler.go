package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"hackmaster/internal/codec"
	"hackmaster/internal/domain"
	"hackmaster/internal/service"
	"hackmaster/internal/wordlist"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultListLimit    = 50
	defaultPreviewLimit = 100
)

// WordlistHandler handles wordlist API requests
type WordlistHandler struct {
	svc          *service.WordlistService
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewWordlistHandler creates a new wordlist handler
func NewWordlistHandler(svc *service.WordlistService, logger *zap.Logger) *WordlistHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WordlistHandler{svc: svc, logger: logger, maxBodyBytes: defaultMaxBodyBytes}
}

// SetMaxBodyBytes caps the size of request bodies
func (h *WordlistHandler) SetMaxBodyBytes(n int64) {
	if n > 0 {
		h.maxBodyBytes = n
	}
}

// Register mounts the wordlist routes on mux
func (h *WordlistHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /WiFi/wordlist-generator", h.GenerateForm)

	mux.HandleFunc("GET /api/wordlists", h.ListWordlists)
	mux.HandleFunc("POST /api/wordlists", h.CreateWordlist)
	mux.HandleFunc("POST /api/wordlists/preview", h.PreviewWordlist)
	mux.HandleFunc("GET /api/wordlists/{id}", h.GetWordlist)
	mux.HandleFunc("DELETE /api/wordlists/{id}", h.DeleteWordlist)
	mux.HandleFunc("GET /api/wordlists/{id}/download", h.DownloadWordlist)
	mux.HandleFunc("GET /api/wordlists/{id}/facts", h.ExportFacts)
}

// ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// FormResponse is the dashboard form's contract
type FormResponse struct {
	Success      bool   `json:"success"`
	Filename     string `json:"filename,omitempty"`
	Count        int    `json:"count"`
	Sample       string `json:"sample"`
	DownloadLink string `json:"download_link,omitempty"`
	Error        string `json:"error,omitempty"`
}

// GenerateForm handles the dashboard form post of {output_filename, info_data}
func (h *WordlistHandler) GenerateForm(w http.ResponseWriter, r *http.Request) {
	doc, err := codec.NewJSONCodec().Parse(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.writeJSON(w, FormResponse{Error: err.Error()}, http.StatusOK)
		return
	}

	run, err := h.svc.Generate(r.Context(), service.GenerateRequest{
		Filename: doc.OutputFilename,
		Facts:    doc.Facts,
	})
	if err != nil {
		h.logger.Warn("form generation failed", zap.Error(err))
		h.writeJSON(w, FormResponse{Error: err.Error()}, http.StatusOK)
		return
	}

	sample := strings.Join(run.Sample, "\n")
	if sample != "" {
		sample += "\n"
	}

	h.writeJSON(w, FormResponse{
		Success:      true,
		Filename:     run.Filename,
		Count:        run.LineCount,
		Sample:       sample,
		DownloadLink: run.DownloadLink(),
	}, http.StatusOK)
}

// CreateWordlist generates a wordlist and records the run
func (h *WordlistHandler) CreateWordlist(w http.ResponseWriter, r *http.Request) {
	doc, err := codec.NewJSONCodec().Parse(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.writeBodyError(w, err)
		return
	}

	run, err := h.svc.Generate(r.Context(), service.GenerateRequest{
		Filename: doc.OutputFilename,
		Facts:    doc.Facts,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to generate wordlist", err)
		return
	}

	h.writeJSON(w, runResponse(run), http.StatusCreated)
}

// PreviewWordlist returns the first accepted candidates without writing a file
func (h *WordlistHandler) PreviewWordlist(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPreviewLimit)
	if err != nil {
		h.writeError(w, "Invalid limit", err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := codec.NewJSONCodec().Parse(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.writeBodyError(w, err)
		return
	}

	preview, err := h.svc.Preview(doc.Facts, limit)
	if err != nil {
		h.writeServiceError(w, "Failed to preview wordlist", err)
		return
	}

	h.writeJSON(w, preview, http.StatusOK)
}

// ListWordlists returns recorded runs, newest first
func (h *WordlistHandler) ListWordlists(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		h.writeError(w, "Invalid limit", err.Error(), http.StatusBadRequest)
		return
	}

	runs, err := h.svc.ListRuns(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, "Failed to list wordlists", err)
		return
	}

	out := make([]RunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, runResponse(&runs[i]))
	}
	h.writeJSON(w, out, http.StatusOK)
}

// GetWordlist returns a single run
func (h *WordlistHandler) GetWordlist(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get wordlist", err)
		return
	}

	h.writeJSON(w, runResponse(run), http.StatusOK)
}

// DeleteWordlist removes a run and its file
func (h *WordlistHandler) DeleteWordlist(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRun(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to delete wordlist", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadWordlist streams a run's wordlist file as an attachment.
// With ?compress=zstd the file is compressed on the fly.
func (h *WordlistHandler) DownloadWordlist(w http.ResponseWriter, r *http.Request) {
	compress := r.URL.Query().Get("compress")
	if compress != "" && compress != "zstd" {
		h.writeError(w, "Unknown compression", compress, http.StatusBadRequest)
		return
	}

	f, run, err := h.svc.OpenWordlist(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to open wordlist", err)
		return
	}
	defer f.Close()

	if compress == "zstd" {
		h.writeZstd(w, f, run.Filename)
		return
	}

	info, err := f.Stat()
	if err != nil {
		h.writeServiceError(w, "Failed to open wordlist", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(run.Filename))
	http.ServeContent(w, r, run.Filename, info.ModTime(), f)
}

func (h *WordlistHandler) writeZstd(w http.ResponseWriter, src io.Reader, filename string) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		h.writeServiceError(w, "Failed to compress wordlist", fmt.Errorf("create zstd writer: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename+".zst"))

	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		h.logger.Warn("zstd download aborted", zap.String("filename", filename), zap.Error(err))
		return
	}
	if err := zw.Close(); err != nil {
		h.logger.Warn("zstd download aborted", zap.String("filename", filename), zap.Error(err))
	}
}

// ExportFacts returns the facts a run was generated from as JSON or YAML
func (h *WordlistHandler) ExportFacts(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	exporter := codec.ForFormat(format)
	if exporter == nil {
		h.writeError(w, "Unknown format", format, http.StatusBadRequest)
		return
	}

	// Resolve the run first so a missing ID still gets a JSON error
	if _, err := h.svc.GetRun(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to export facts", err)
		return
	}

	if exporter.Format() == "yaml" {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	if err := h.svc.ExportFacts(r.Context(), r.PathValue("id"), format, w); err != nil {
		h.logger.Error("failed to export facts", zap.Error(err))
	}
}

// RunResponse is the API view of a run
type RunResponse struct {
	*domain.Run
	DownloadLink string `json:"download_link"`
}

func runResponse(run *domain.Run) RunResponse {
	return RunResponse{Run: run, DownloadLink: run.DownloadLink()}
}

// Helper methods

func (h *WordlistHandler) writeServiceError(w http.ResponseWriter, message string, err error) {
	var malformed *wordlist.MalformedDateError

	switch {
	case errors.Is(err, service.ErrRunNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidFilename),
		errors.Is(err, service.ErrUnknownFormat),
		errors.As(err, &malformed):
		h.writeError(w, message, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(message, zap.Error(err))
		h.writeError(w, message, err.Error(), http.StatusInternalServerError)
	}
}

func (h *WordlistHandler) writeBodyError(w http.ResponseWriter, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.writeError(w, "Request body too large", err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
}

func (h *WordlistHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func (h *WordlistHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}
