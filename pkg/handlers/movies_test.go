package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/apperrors"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// mockMovieRepo implements repositories.MovieRepository for testing.
type mockMovieRepo struct {
	movies  []models.Movie
	listErr error
}

func (m *mockMovieRepo) ListTitles(context.Context) ([]string, error) { return nil, nil }
func (m *mockMovieRepo) Insert(context.Context, *models.Movie) error  { return nil }
func (m *mockMovieRepo) InsertGenreLink(context.Context, int64, int64) (repositories.InsertOutcome, error) {
	return repositories.OutcomeInserted, nil
}
func (m *mockMovieRepo) InsertActorLink(context.Context, int64, int64, string) (repositories.InsertOutcome, error) {
	return repositories.OutcomeInserted, nil
}
func (m *mockMovieRepo) DuplicateGroups(context.Context) ([]models.DuplicateGroup, error) {
	return nil, nil
}
func (m *mockMovieRepo) DeleteDuplicates(context.Context) (int64, error) { return 0, nil }

func (m *mockMovieRepo) Count(context.Context) (int, error) {
	return len(m.movies), nil
}

func (m *mockMovieRepo) List(_ context.Context, limit, offset int) ([]models.Movie, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if offset >= len(m.movies) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.movies) {
		end = len(m.movies)
	}
	return m.movies[offset:end], nil
}

func (m *mockMovieRepo) ListByYear(_ context.Context, year, limit, offset int) ([]models.Movie, error) {
	var matched []models.Movie
	for _, movie := range m.movies {
		if movie.ReleaseYear != nil && *movie.ReleaseYear == year {
			matched = append(matched, movie)
		}
	}
	return matched, nil
}

func (m *mockMovieRepo) CountByYear(_ context.Context, year int) (int, error) {
	movies, _ := m.ListByYear(context.Background(), year, 0, 0)
	return len(movies), nil
}

func (m *mockMovieRepo) GetByID(_ context.Context, id int64) (*models.Movie, error) {
	for i := range m.movies {
		if m.movies[i].ID == id {
			return &m.movies[i], nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockMovieRepo) SearchByTitle(_ context.Context, term string, limit, offset int) ([]models.Movie, error) {
	var matched []models.Movie
	for _, movie := range m.movies {
		if strings.Contains(strings.ToLower(movie.Title), strings.ToLower(term)) {
			matched = append(matched, movie)
		}
	}
	return matched, nil
}

func (m *mockMovieRepo) CountSearch(ctx context.Context, term string) (int, error) {
	matched, _ := m.SearchByTitle(ctx, term, 0, 0)
	return len(matched), nil
}

func (m *mockMovieRepo) TopRated(_ context.Context, limit, offset int) ([]models.Movie, error) {
	sorted := append([]models.Movie(nil), m.movies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := 0.0, 0.0
		if sorted[i].Rating != nil {
			ri = *sorted[i].Rating
		}
		if sorted[j].Rating != nil {
			rj = *sorted[j].Rating
		}
		return ri > rj
	})
	return sorted, nil
}

func (m *mockMovieRepo) TopGrossing(_ context.Context, limit, offset int) ([]models.Movie, error) {
	return m.movies, nil
}

func (m *mockMovieRepo) Stats(_ context.Context) (*models.DatasetStats, error) {
	return &models.DatasetStats{TotalMovies: len(m.movies)}, nil
}

var _ repositories.MovieRepository = (*mockMovieRepo)(nil)

func testMovies() []models.Movie {
	year := 2021
	duneRating, weaponsRating := 8.1, 7.4
	return []models.Movie{
		{ID: 1, Title: "Dune", ReleaseYear: &year, Rating: &duneRating},
		{ID: 2, Title: "Weapons", Rating: &weaponsRating},
	}
}

func newMovieMux(repo repositories.MovieRepository) *http.ServeMux {
	mux := http.NewServeMux()
	NewMovieHandler(repo, 1990, 2026, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestMovieListSuccess(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Retrieved all movies", env.Message)

	data := env.Data.(map[string]interface{})
	assert.Len(t, data["movies"], 2)
	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["totalCount"])
	assert.Equal(t, false, pagination["hasNext"])
}

func TestMovieListInvalidPagination(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	for _, target := range []string{
		"/api/v1/movies?limit=0",
		"/api/v1/movies?limit=101",
		"/api/v1/movies?limit=ten",
		"/api/v1/movies?offset=-1",
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)

		var env Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.False(t, env.Success)
	}
}

func TestMovieListRepositoryFailure(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{listErr: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMovieListByYear(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/year/2021", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	data := env.Data.(map[string]interface{})
	assert.Len(t, data["movies"], 1)
}

func TestMovieGetByID(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	movie := env.Data.(map[string]interface{})
	assert.Equal(t, "Dune", movie["title"])
	assert.Equal(t, 8.1, movie["rating"])
}

func TestMovieGetByIDNotFound(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestMovieGetByIDInvalid(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMovieSearch(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/search?q=dun", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	data := env.Data.(map[string]interface{})
	assert.Len(t, data["movies"], 1)
	assert.Equal(t, "dun", data["searchTerm"])
}

func TestMovieSearchRequiresQuery(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	for _, target := range []string{
		"/api/v1/movies/search",
		"/api/v1/movies/search?q=%20",
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}

func TestMovieTopRatedOrder(t *testing.T) {
	// "Weapons" seeds with the lower rating, so Dune must come back first.
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/top-rated", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	data := env.Data.(map[string]interface{})
	movies := data["movies"].([]interface{})
	require.Len(t, movies, 2)
	assert.Equal(t, "Dune", movies[0].(map[string]interface{})["title"])
}

func TestMovieStats(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	stats := env.Data.(map[string]interface{})
	assert.Equal(t, float64(2), stats["totalMovies"])
}

func TestMovieListByYearOutOfBounds(t *testing.T) {
	mux := newMovieMux(&mockMovieRepo{movies: testMovies()})

	for _, target := range []string{
		"/api/v1/movies/year/1875",
		"/api/v1/movies/year/3000",
		"/api/v1/movies/year/soon",
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}
