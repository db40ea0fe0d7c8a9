package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JakitaK/dataset-webapi-group2/pkg/apperrors"
	"github.com/JakitaK/dataset-webapi-group2/pkg/database"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
)

// MovieRepository provides data access for movie rows and their junction
// tables.
type MovieRepository interface {
	// ListTitles returns every stored movie title. The importer lowercases
	// them into its resume snapshot.
	ListTitles(ctx context.Context) ([]string, error)
	// Insert persists one movie and fills in its store-assigned id.
	Insert(ctx context.Context, movie *models.Movie) error
	// InsertGenreLink and InsertActorLink create junction rows. Re-inserting
	// an existing pair reports OutcomeAlreadyExists.
	InsertGenreLink(ctx context.Context, movieID, genreID int64) (InsertOutcome, error)
	InsertActorLink(ctx context.Context, movieID, actorID int64, character string) (InsertOutcome, error)

	// DuplicateGroups returns every (title, release_year) group holding
	// more than one row, with the smallest movie id in each group.
	DuplicateGroups(ctx context.Context) ([]models.DuplicateGroup, error)
	// DeleteDuplicates removes, inside a single transaction, every movie
	// row whose id is not the minimum id of its (title, release_year)
	// group. It returns the number of rows removed. Either the full set of
	// excess rows is deleted or none are.
	DeleteDuplicates(ctx context.Context) (int64, error)

	// Read API queries.
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]models.Movie, error)
	ListByYear(ctx context.Context, year, limit, offset int) ([]models.Movie, error)
	CountByYear(ctx context.Context, year int) (int, error)
	// GetByID returns apperrors.ErrNotFound (wrapped) when no row matches.
	GetByID(ctx context.Context, id int64) (*models.Movie, error)
	// SearchByTitle matches case-insensitively on a title substring.
	SearchByTitle(ctx context.Context, term string, limit, offset int) ([]models.Movie, error)
	CountSearch(ctx context.Context, term string) (int, error)
	TopRated(ctx context.Context, limit, offset int) ([]models.Movie, error)
	TopGrossing(ctx context.Context, limit, offset int) ([]models.Movie, error)
	Stats(ctx context.Context) (*models.DatasetStats, error)
}

type movieRepository struct {
	db *database.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *database.DB) MovieRepository {
	return &movieRepository{db: db}
}

var _ MovieRepository = (*movieRepository)(nil)

func (r *movieRepository) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT title FROM movie")
	if err != nil {
		return nil, fmt.Errorf("failed to list movie titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan movie title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movie titles: %w", err)
	}

	return titles, nil
}

func (r *movieRepository) Insert(ctx context.Context, movie *models.Movie) error {
	query := `
		INSERT INTO movie (
			title, original_title, release_year, runtime_minutes, rating,
			budget, box_office, director_id, country_id, overview, genres,
			director_name, studios, poster_url, backdrop_url, collection,
			mpa_rating
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING movie_id`

	err := r.db.QueryRow(ctx, query,
		movie.Title,
		movie.OriginalTitle,
		movie.ReleaseYear,
		movie.RuntimeMinutes,
		movie.Rating,
		movie.Budget,
		movie.BoxOffice,
		movie.DirectorID,
		movie.CountryID,
		movie.Overview,
		movie.Genres,
		movie.DirectorName,
		movie.Studios,
		movie.PosterURL,
		movie.BackdropURL,
		movie.Collection,
		movie.MPARating,
	).Scan(&movie.ID)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}

	return nil
}

func (r *movieRepository) InsertGenreLink(ctx context.Context, movieID, genreID int64) (InsertOutcome, error) {
	_, err := r.db.Exec(ctx,
		"INSERT INTO movie_genre (movie_id, genre_id) VALUES ($1, $2)",
		movieID, genreID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return OutcomeAlreadyExists, nil
		}
		return 0, fmt.Errorf("failed to link movie %d to genre %d: %w", movieID, genreID, err)
	}
	return OutcomeInserted, nil
}

func (r *movieRepository) InsertActorLink(ctx context.Context, movieID, actorID int64, character string) (InsertOutcome, error) {
	var characterName *string
	if character != "" {
		characterName = &character
	}

	_, err := r.db.Exec(ctx,
		"INSERT INTO movie_actor (movie_id, actor_id, character_name) VALUES ($1, $2, $3)",
		movieID, actorID, characterName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return OutcomeAlreadyExists, nil
		}
		return 0, fmt.Errorf("failed to link movie %d to actor %d: %w", movieID, actorID, err)
	}
	return OutcomeInserted, nil
}

func (r *movieRepository) DuplicateGroups(ctx context.Context) ([]models.DuplicateGroup, error) {
	query := `
		SELECT title, release_year, COUNT(*), MIN(movie_id)
		FROM movie
		GROUP BY title, release_year
		HAVING COUNT(*) > 1
		ORDER BY COUNT(*) DESC, title`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for duplicate movies: %w", err)
	}
	defer rows.Close()

	var groups []models.DuplicateGroup
	for rows.Next() {
		var g models.DuplicateGroup
		if err := rows.Scan(&g.Title, &g.ReleaseYear, &g.Count, &g.MinID); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read duplicate groups: %w", err)
	}

	return groups, nil
}

func (r *movieRepository) DeleteDuplicates(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin reconcile transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	// Junction rows cascade from the movie delete; only the movie rows
	// outside each group's minimum id need removing. NULL release years
	// group together under GROUP BY, matching the duplicate scan.
	tag, err := tx.Exec(ctx, `
		DELETE FROM movie
		WHERE movie_id NOT IN (
			SELECT MIN(movie_id)
			FROM movie
			GROUP BY title, release_year
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicate movies: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit reconcile transaction: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *movieRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM movie").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}

const movieColumns = `
	movie_id, title, original_title, release_year, runtime_minutes, rating,
	budget, box_office, director_id, country_id, overview, genres,
	director_name, studios, poster_url, backdrop_url, collection, mpa_rating`

func (r *movieRepository) List(ctx context.Context, limit, offset int) ([]models.Movie, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM movie
		ORDER BY title ASC
		LIMIT $1 OFFSET $2`, movieColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func (r *movieRepository) ListByYear(ctx context.Context, year, limit, offset int) ([]models.Movie, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM movie
		WHERE release_year = $1
		ORDER BY title ASC
		LIMIT $2 OFFSET $3`, movieColumns)

	rows, err := r.db.Query(ctx, query, year, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies for year %d: %w", year, err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func (r *movieRepository) CountByYear(ctx context.Context, year int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM movie WHERE release_year = $1", year).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count movies for year %d: %w", year, err)
	}
	return count, nil
}

func (r *movieRepository) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM movie
		WHERE movie_id = $1`, movieColumns)

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}
	defer rows.Close()

	movies, err := scanMovies(rows)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("movie %d: %w", id, apperrors.ErrNotFound)
	}
	return &movies[0], nil
}

func (r *movieRepository) SearchByTitle(ctx context.Context, term string, limit, offset int) ([]models.Movie, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM movie
		WHERE LOWER(title) LIKE LOWER($1)
		ORDER BY title ASC
		LIMIT $2 OFFSET $3`, movieColumns)

	rows, err := r.db.Query(ctx, query, "%"+term+"%", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search movies for %q: %w", term, err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func (r *movieRepository) CountSearch(ctx context.Context, term string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM movie WHERE LOWER(title) LIKE LOWER($1)",
		"%"+term+"%").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count search results for %q: %w", term, err)
	}
	return count, nil
}

func (r *movieRepository) TopRated(ctx context.Context, limit, offset int) ([]models.Movie, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM movie
		ORDER BY rating DESC NULLS LAST, title ASC
		LIMIT $1 OFFSET $2`, movieColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list top-rated movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func (r *movieRepository) TopGrossing(ctx context.Context, limit, offset int) ([]models.Movie, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM movie
		ORDER BY box_office DESC NULLS LAST, title ASC
		LIMIT $1 OFFSET $2`, movieColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list top-grossing movies: %w", err)
	}
	defer rows.Close()

	return scanMovies(rows)
}

func (r *movieRepository) Stats(ctx context.Context) (*models.DatasetStats, error) {
	stats := &models.DatasetStats{}

	var totalBoxOffice *float64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), MIN(release_year), MAX(release_year),
		       SUM(box_office)
		FROM movie`).
		Scan(&stats.TotalMovies, &stats.EarliestYear, &stats.LatestYear, &totalBoxOffice)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dataset stats: %w", err)
	}
	if totalBoxOffice != nil {
		stats.TotalBoxOffice = *totalBoxOffice
	}

	top, err := r.TopGrossing(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(top) > 0 && top[0].BoxOffice != nil {
		stats.TopGrossing = &top[0]
	}

	return stats, nil
}

func scanMovies(rows pgx.Rows) ([]models.Movie, error) {
	var movies []models.Movie
	for rows.Next() {
		var m models.Movie
		err := rows.Scan(
			&m.ID,
			&m.Title,
			&m.OriginalTitle,
			&m.ReleaseYear,
			&m.RuntimeMinutes,
			&m.Rating,
			&m.Budget,
			&m.BoxOffice,
			&m.DirectorID,
			&m.CountryID,
			&m.Overview,
			&m.Genres,
			&m.DirectorName,
			&m.Studios,
			&m.PosterURL,
			&m.BackdropURL,
			&m.Collection,
			&m.MPARating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movies: %w", err)
	}
	return movies, nil
}
