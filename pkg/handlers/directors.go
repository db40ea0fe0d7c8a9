package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// DirectorHandler serves the read-only director endpoints.
type DirectorHandler struct {
	directors repositories.DirectorRepository
	logger    *zap.Logger
}

// NewDirectorHandler creates a new DirectorHandler.
func NewDirectorHandler(directors repositories.DirectorRepository, logger *zap.Logger) *DirectorHandler {
	return &DirectorHandler{directors: directors, logger: logger}
}

// RegisterRoutes registers the director routes on the given mux.
func (h *DirectorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/directors", h.List)
}

// List handles GET /api/v1/directors?limit&offset.
func (h *DirectorHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePagination(w, r)
	if !ok {
		return
	}

	directors, err := h.directors.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list directors", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve directors", "")
		return
	}
	if directors == nil {
		directors = []models.Director{}
	}

	total, err := h.directors.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count directors", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve directors", "")
		return
	}

	_ = WriteSuccess(w, http.StatusOK, "Retrieved all directors", map[string]interface{}{
		"directors":  directors,
		"pagination": NewPagination(limit, offset, total),
	})
}
