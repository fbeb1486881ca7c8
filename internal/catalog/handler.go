package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/retailops/asset-helpdesk/pkg/errors"
)

// Handler serves the asset inventory over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		logger:  slog.Default().With("component", "catalog-handler"),
	}
}

// List returns all assets, optionally filtered by category or status query
// parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		h.writeJSON(w, http.StatusOK, h.service.ByCategory(Category(category)))
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		h.writeJSON(w, http.StatusOK, h.service.ByStatus(Status(status)))
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.All())
}

// Stats returns inventory counts by category and status.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

// Get returns one asset by ID, 404 when unknown.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	asset, ok := h.service.Get(id)
	if !ok {
		err := apperrors.Newf(apperrors.ErrAssetNotFound, http.StatusNotFound, "asset %s not found", id)
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, asset)
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
