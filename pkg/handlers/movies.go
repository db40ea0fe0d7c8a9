package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/apperrors"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// MovieHandler serves the read-only movie endpoints. Pass-through query
// wrappers only; all reconciliation logic lives in the importer.
type MovieHandler struct {
	movies  repositories.MovieRepository
	minYear int
	maxYear int
	logger  *zap.Logger
}

// NewMovieHandler creates a new MovieHandler. minYear and maxYear bound
// the year path parameter.
func NewMovieHandler(movies repositories.MovieRepository, minYear, maxYear int, logger *zap.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, minYear: minYear, maxYear: maxYear, logger: logger}
}

// RegisterRoutes registers the movie routes on the given mux. Literal
// segments (top-rated, search) take precedence over the {id} pattern, so
// registration order does not matter.
func (h *MovieHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/movies", h.List)
	mux.HandleFunc("GET /api/v1/movies/top-rated", h.TopRated)
	mux.HandleFunc("GET /api/v1/movies/top-grossing", h.TopGrossing)
	mux.HandleFunc("GET /api/v1/movies/search", h.Search)
	mux.HandleFunc("GET /api/v1/movies/year/{year}", h.ListByYear)
	mux.HandleFunc("GET /api/v1/movies/{id}", h.GetByID)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
}

// List handles GET /api/v1/movies?limit&offset.
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePagination(w, r)
	if !ok {
		return
	}

	movies, err := h.movies.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list movies", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve movies", "")
		return
	}

	total, err := h.movies.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count movies", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve movies", "")
		return
	}

	_ = WriteSuccess(w, http.StatusOK, "Retrieved all movies", map[string]interface{}{
		"movies":     emptyIfNil(movies),
		"pagination": NewPagination(limit, offset, total),
	})
}

// ListByYear handles GET /api/v1/movies/year/{year}.
func (h *MovieHandler) ListByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < h.minYear || year > h.maxYear {
		_ = WriteError(w, http.StatusBadRequest, "Invalid year",
			fmt.Sprintf("year must be an integer between %d and %d", h.minYear, h.maxYear))
		return
	}

	limit, offset, ok := parsePagination(w, r)
	if !ok {
		return
	}

	movies, err := h.movies.ListByYear(r.Context(), year, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list movies by year", zap.Int("year", year), zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve movies", "")
		return
	}

	total, err := h.movies.CountByYear(r.Context(), year)
	if err != nil {
		h.logger.Error("Failed to count movies by year", zap.Int("year", year), zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve movies", "")
		return
	}

	_ = WriteSuccess(w, http.StatusOK, fmt.Sprintf("Retrieved movies for %d", year), map[string]interface{}{
		"movies":     emptyIfNil(movies),
		"pagination": NewPagination(limit, offset, total),
	})
}

// GetByID handles GET /api/v1/movies/{id}.
func (h *MovieHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		_ = WriteError(w, http.StatusBadRequest, "Invalid movie ID",
			"movie ID must be an integer")
		return
	}

	movie, err := h.movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = WriteError(w, http.StatusNotFound, "Movie not found",
				fmt.Sprintf("no movie with ID %d", id))
			return
		}
		h.logger.Error("Failed to get movie", zap.Int64("movie_id", id), zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve movie", "")
		return
	}

	_ = WriteSuccess(w, http.StatusOK, "Movie details retrieved successfully", movie)
}

// Search handles GET /api/v1/movies/search?q&limit&offset, matching
// case-insensitively on a title substring.
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		_ = WriteError(w, http.StatusBadRequest, "Missing search query",
			"search query (q) parameter is required")
		return
	}

	limit, offset, ok := parsePagination(w, r)
	if !ok {
		return
	}

	movies, err := h.movies.SearchByTitle(r.Context(), term, limit, offset)
	if err != nil {
		h.logger.Error("Failed to search movies", zap.String("term", term), zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to search movies", "")
		return
	}

	total, err := h.movies.CountSearch(r.Context(), term)
	if err != nil {
		h.logger.Error("Failed to count search results", zap.String("term", term), zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to search movies", "")
		return
	}

	_ = WriteSuccess(w, http.StatusOK, fmt.Sprintf("Found %d movies matching %q", len(movies), term),
		map[string]interface{}{
			"movies":     emptyIfNil(movies),
			"pagination": NewPagination(limit, offset, total),
			"searchTerm": term,
		})
}

// TopRated handles GET /api/v1/movies/top-rated?limit&offset.
func (h *MovieHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, "Retrieved top-rated movies", h.movies.TopRated)
}

// TopGrossing handles GET /api/v1/movies/top-grossing?limit&offset.
func (h *MovieHandler) TopGrossing(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, "Retrieved top-grossing movies", h.movies.TopGrossing)
}

// ranked serves the two ranking endpoints, which differ only in sort order.
func (h *MovieHandler) ranked(w http.ResponseWriter, r *http.Request, message string,
	list func(ctx context.Context, limit, offset int) ([]models.Movie, error)) {
	limit, offset, ok := parsePagination(w, r)
	if !ok {
		return
	}

	movies, err := list(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list ranked movies", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve movies", "")
		return
	}

	total, err := h.movies.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count movies", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve movies", "")
		return
	}

	_ = WriteSuccess(w, http.StatusOK, message, map[string]interface{}{
		"movies":     emptyIfNil(movies),
		"pagination": NewPagination(limit, offset, total),
	})
}

// Stats handles GET /api/v1/stats.
func (h *MovieHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.movies.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute dataset stats", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "Failed to retrieve statistics", "")
		return
	}

	_ = WriteSuccess(w, http.StatusOK, "API statistics retrieved successfully", stats)
}

// parsePagination reads limit/offset query parameters, writing a 400
// envelope and returning ok=false on invalid input.
func parsePagination(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit = defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			_ = WriteError(w, http.StatusBadRequest, "Invalid limit",
				fmt.Sprintf("limit must be an integer between 1 and %d", maxPageLimit))
			return 0, 0, false
		}
		limit = n
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = WriteError(w, http.StatusBadRequest, "Invalid offset",
				"offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}

	return limit, offset, true
}

func emptyIfNil(movies []models.Movie) []models.Movie {
	if movies == nil {
		return []models.Movie{}
	}
	return movies
}
