package rag

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/retailops/asset-helpdesk/pkg/errors"
)

// Handler serves the ingestion and query endpoints. A nil service means the
// pipeline's backing dependencies were unavailable at startup; every endpoint
// then answers 503 while the rest of the server (catalog, health) stays up.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a Handler. service may be nil.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default().With("component", "rag-handler"),
	}
}

// Ingest triggers a full ingestion run.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	resp, err := h.service.Ingest(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// IngestStatus reports per-file ingestion state.
func (h *Handler) IngestStatus(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	status, err := h.service.Status(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

// IngestRuns returns recent ingestion run history.
func (h *Handler) IngestRuns(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	runs, err := h.service.Runs(r.Context(), limit)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// Query answers a question from the indexed documentation.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := h.service.Query(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Search runs a raw similarity search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	results, err := h.service.Search(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

// Stats reports collection statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// ResetCollection drops and recreates the vector collection.
func (h *Handler) ResetCollection(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	message, err := h.service.Reset(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// Summarize condenses a support conversation.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := h.service.Summarize(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) available(w http.ResponseWriter) bool {
	if h.service != nil {
		return true
	}
	h.writeError(w, http.StatusServiceUnavailable,
		"document pipeline unavailable; check vector store and embedding configuration")
	return false
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		h.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
