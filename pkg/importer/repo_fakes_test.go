package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JakitaK/dataset-webapi-group2/pkg/apperrors"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// fakeRefRepo implements repositories.ReferenceRepository in memory.
type fakeRefRepo struct {
	names     map[repositories.RefKind]map[string]int64
	countries map[string]int64
	nextID    int64
	insertErr error
	listErr   error
}

func newFakeRefRepo() *fakeRefRepo {
	return &fakeRefRepo{
		names: map[repositories.RefKind]map[string]int64{
			repositories.KindDirector: {},
			repositories.KindGenre:    {},
			repositories.KindActor:    {},
		},
		countries: map[string]int64{},
	}
}

// seed inserts a name directly, simulating a row created by an earlier
// run or a concurrent writer.
func (f *fakeRefRepo) seed(kind repositories.RefKind, name string) int64 {
	f.nextID++
	f.names[kind][name] = f.nextID
	return f.nextID
}

func (f *fakeRefRepo) ListNames(_ context.Context, kind repositories.RefKind) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var names []string
	for name := range f.names[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeRefRepo) InsertName(_ context.Context, kind repositories.RefKind, name string) (repositories.InsertOutcome, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	if _, ok := f.names[kind][name]; ok {
		return repositories.OutcomeAlreadyExists, nil
	}
	f.nextID++
	f.names[kind][name] = f.nextID
	return repositories.OutcomeInserted, nil
}

func (f *fakeRefRepo) ResolveIDs(_ context.Context, kind repositories.RefKind) (map[string]int64, error) {
	ids := make(map[string]int64, len(f.names[kind]))
	for name, id := range f.names[kind] {
		ids[name] = id
	}
	return ids, nil
}

func (f *fakeRefRepo) EnsureCountry(_ context.Context, name string) (int64, error) {
	if id, ok := f.countries[name]; ok {
		return id, nil
	}
	f.nextID++
	f.countries[name] = f.nextID
	return f.nextID, nil
}

var _ repositories.ReferenceRepository = (*fakeRefRepo)(nil)

// fakeMovieRepo implements repositories.MovieRepository in memory.
type fakeMovieRepo struct {
	nextID     int64
	movies     []models.Movie
	genreLinks map[int64][]int64
	actorLinks map[int64]map[int64]string
	insertFail map[string]error // keyed by title
	deleteErr  error
	titlesErr  error
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{
		genreLinks: map[int64][]int64{},
		actorLinks: map[int64]map[int64]string{},
		insertFail: map[string]error{},
	}
}

// seedMovie inserts a movie row directly with the next id.
func (f *fakeMovieRepo) seedMovie(title string, year int) int64 {
	f.nextID++
	y := year
	f.movies = append(f.movies, models.Movie{ID: f.nextID, Title: title, ReleaseYear: &y})
	return f.nextID
}

func (f *fakeMovieRepo) ListTitles(_ context.Context) ([]string, error) {
	if f.titlesErr != nil {
		return nil, f.titlesErr
	}
	var titles []string
	for _, m := range f.movies {
		titles = append(titles, m.Title)
	}
	return titles, nil
}

func (f *fakeMovieRepo) Insert(_ context.Context, movie *models.Movie) error {
	if err := f.insertFail[movie.Title]; err != nil {
		return err
	}
	f.nextID++
	movie.ID = f.nextID
	f.movies = append(f.movies, *movie)
	return nil
}

func (f *fakeMovieRepo) InsertGenreLink(_ context.Context, movieID, genreID int64) (repositories.InsertOutcome, error) {
	for _, existing := range f.genreLinks[movieID] {
		if existing == genreID {
			return repositories.OutcomeAlreadyExists, nil
		}
	}
	f.genreLinks[movieID] = append(f.genreLinks[movieID], genreID)
	return repositories.OutcomeInserted, nil
}

func (f *fakeMovieRepo) InsertActorLink(_ context.Context, movieID, actorID int64, character string) (repositories.InsertOutcome, error) {
	if f.actorLinks[movieID] == nil {
		f.actorLinks[movieID] = map[int64]string{}
	}
	if _, ok := f.actorLinks[movieID][actorID]; ok {
		return repositories.OutcomeAlreadyExists, nil
	}
	f.actorLinks[movieID][actorID] = character
	return repositories.OutcomeInserted, nil
}

func groupKey(m models.Movie) string {
	if m.ReleaseYear == nil {
		return m.Title + "|"
	}
	return fmt.Sprintf("%s|%d", m.Title, *m.ReleaseYear)
}

func (f *fakeMovieRepo) DuplicateGroups(_ context.Context) ([]models.DuplicateGroup, error) {
	byKey := map[string][]models.Movie{}
	for _, m := range f.movies {
		byKey[groupKey(m)] = append(byKey[groupKey(m)], m)
	}

	var groups []models.DuplicateGroup
	for _, members := range byKey {
		if len(members) < 2 {
			continue
		}
		g := models.DuplicateGroup{
			Title:       members[0].Title,
			ReleaseYear: members[0].ReleaseYear,
			Count:       len(members),
			MinID:       members[0].ID,
		}
		for _, m := range members[1:] {
			if m.ID < g.MinID {
				g.MinID = m.ID
			}
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].MinID < groups[j].MinID })
	return groups, nil
}

func (f *fakeMovieRepo) DeleteDuplicates(_ context.Context) (int64, error) {
	if f.deleteErr != nil {
		// Transactional: a failed delete leaves every row in place.
		return 0, f.deleteErr
	}

	minByKey := map[string]int64{}
	for _, m := range f.movies {
		key := groupKey(m)
		if min, ok := minByKey[key]; !ok || m.ID < min {
			minByKey[key] = m.ID
		}
	}

	var (
		kept    []models.Movie
		removed int64
	)
	for _, m := range f.movies {
		if m.ID == minByKey[groupKey(m)] {
			kept = append(kept, m)
			continue
		}
		removed++
		delete(f.genreLinks, m.ID)
		delete(f.actorLinks, m.ID)
	}
	f.movies = kept
	return removed, nil
}

func (f *fakeMovieRepo) Count(_ context.Context) (int, error) {
	return len(f.movies), nil
}

func (f *fakeMovieRepo) List(_ context.Context, limit, offset int) ([]models.Movie, error) {
	if offset >= len(f.movies) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.movies) {
		end = len(f.movies)
	}
	return f.movies[offset:end], nil
}

func (f *fakeMovieRepo) ListByYear(_ context.Context, year, limit, offset int) ([]models.Movie, error) {
	var matched []models.Movie
	for _, m := range f.movies {
		if m.ReleaseYear != nil && *m.ReleaseYear == year {
			matched = append(matched, m)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeMovieRepo) CountByYear(_ context.Context, year int) (int, error) {
	count := 0
	for _, m := range f.movies {
		if m.ReleaseYear != nil && *m.ReleaseYear == year {
			count++
		}
	}
	return count, nil
}

func (f *fakeMovieRepo) GetByID(_ context.Context, id int64) (*models.Movie, error) {
	for i := range f.movies {
		if f.movies[i].ID == id {
			return &f.movies[i], nil
		}
	}
	return nil, fmt.Errorf("movie %d: %w", id, apperrors.ErrNotFound)
}

func (f *fakeMovieRepo) SearchByTitle(_ context.Context, term string, limit, offset int) ([]models.Movie, error) {
	var matched []models.Movie
	for _, m := range f.movies {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(term)) {
			matched = append(matched, m)
		}
	}
	return page(matched, limit, offset), nil
}

func (f *fakeMovieRepo) CountSearch(_ context.Context, term string) (int, error) {
	matched, _ := f.SearchByTitle(context.Background(), term, len(f.movies), 0)
	return len(matched), nil
}

func (f *fakeMovieRepo) TopRated(_ context.Context, limit, offset int) ([]models.Movie, error) {
	sorted := append([]models.Movie(nil), f.movies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ratingOf(sorted[i]) > ratingOf(sorted[j])
	})
	return page(sorted, limit, offset), nil
}

func (f *fakeMovieRepo) TopGrossing(_ context.Context, limit, offset int) ([]models.Movie, error) {
	sorted := append([]models.Movie(nil), f.movies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return boxOfficeOf(sorted[i]) > boxOfficeOf(sorted[j])
	})
	return page(sorted, limit, offset), nil
}

func (f *fakeMovieRepo) Stats(_ context.Context) (*models.DatasetStats, error) {
	stats := &models.DatasetStats{TotalMovies: len(f.movies)}
	for i, m := range f.movies {
		if m.ReleaseYear != nil {
			if stats.EarliestYear == nil || *m.ReleaseYear < *stats.EarliestYear {
				stats.EarliestYear = f.movies[i].ReleaseYear
			}
			if stats.LatestYear == nil || *m.ReleaseYear > *stats.LatestYear {
				stats.LatestYear = f.movies[i].ReleaseYear
			}
		}
		if m.BoxOffice != nil {
			stats.TotalBoxOffice += *m.BoxOffice
			if stats.TopGrossing == nil || *m.BoxOffice > boxOfficeOf(*stats.TopGrossing) {
				stats.TopGrossing = &f.movies[i]
			}
		}
	}
	return stats, nil
}

func ratingOf(m models.Movie) float64 {
	if m.Rating == nil {
		return -1
	}
	return *m.Rating
}

func boxOfficeOf(m models.Movie) float64 {
	if m.BoxOffice == nil {
		return -1
	}
	return *m.BoxOffice
}

func page(movies []models.Movie, limit, offset int) []models.Movie {
	if offset >= len(movies) {
		return nil
	}
	end := offset + limit
	if end > len(movies) {
		end = len(movies)
	}
	return movies[offset:end]
}

// find returns the stored movie with the given title, if any.
func (f *fakeMovieRepo) find(title string) (models.Movie, bool) {
	for _, m := range f.movies {
		if m.Title == title {
			return m, true
		}
	}
	return models.Movie{}, false
}

var _ repositories.MovieRepository = (*fakeMovieRepo)(nil)
