package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/apperrors"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// Options configures one import run.
type Options struct {
	// BatchSize is the number of source rows per batch. Defaults to 500.
	BatchSize int
	// MinYear and MaxYear bound plausible release years; rows outside the
	// bounds are skipped. MaxYear 0 defaults to the current year plus one.
	MinYear int
	MaxYear int
	// Offset is the resume cursor: source rows before it are not
	// processed at all.
	Offset int
	// ResumeByTitle loads the stored titles (case-insensitive) at the
	// start of the run and skips rows whose title is already present.
	ResumeByTitle bool
	// DefaultCountry is the placeholder country linked to every imported
	// movie; the export has no country column.
	DefaultCountry string
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
	if o.MinYear == 0 {
		o.MinYear = 1990
	}
	if o.MaxYear == 0 {
		o.MaxYear = time.Now().Year() + 1
	}
	if o.DefaultCountry == "" {
		o.DefaultCountry = "United States"
	}
	return o
}

// Loader drives the import pipeline: normalize, deduplicate, write
// references, resolve ids, insert movies, insert junction rows. Batches
// run strictly sequentially; the title snapshot and per-batch reference
// snapshots must see the previous batch's writes.
type Loader struct {
	movies repositories.MovieRepository
	refs   repositories.ReferenceRepository
	opts   Options
	logger *zap.Logger
}

// NewLoader creates a Loader with defaults applied to opts.
func NewLoader(movies repositories.MovieRepository, refs repositories.ReferenceRepository, opts Options, logger *zap.Logger) *Loader {
	return &Loader{
		movies: movies,
		refs:   refs,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// seenTitles is the run-scoped, case-insensitive set of titles already
// represented in the store or accepted earlier in this run. It is the
// run's only within-run duplicate defense; it deliberately does not cover
// fully concurrent runs.
type seenTitles map[string]struct{}

func (s seenTitles) has(title string) bool {
	_, ok := s[strings.ToLower(title)]
	return ok
}

func (s seenTitles) add(title string) {
	s[strings.ToLower(title)] = struct{}{}
}

// Run executes the import over the ordered source rows. Row-level
// failures are absorbed and counted; only structural failures (reference
// resolution, reference-table write failures, snapshot reads) abort the
// run. Cancellation lands on a batch boundary: committed batches stay
// committed.
func (l *Loader) Run(ctx context.Context, rows []Row) (*models.ImportSummary, error) {
	summary := &models.ImportSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		RowsTotal: len(rows),
	}
	logger := l.logger.With(zap.String("run_id", summary.RunID))

	seen := make(seenTitles)
	if l.opts.ResumeByTitle {
		titles, err := l.movies.ListTitles(ctx)
		if err != nil {
			return summary, fmt.Errorf("failed to load resume snapshot: %w", err)
		}
		for _, t := range titles {
			seen.add(t)
		}
		logger.Info("Loaded resume snapshot", zap.Int("existing_titles", len(titles)))
	}

	countryID, err := l.refs.EnsureCountry(ctx, l.opts.DefaultCountry)
	if err != nil {
		return summary, fmt.Errorf("failed to ensure default country: %w", err)
	}

	for start := l.opts.Offset; start < len(rows); start += l.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now()
			return summary, fmt.Errorf("import interrupted before batch %d: %w", summary.Batches+1, err)
		}

		end := start + l.opts.BatchSize
		if end > len(rows) {
			end = len(rows)
		}

		if err := l.processBatch(ctx, logger, rows[start:end], seen, countryID, summary); err != nil {
			summary.FinishedAt = time.Now()
			return summary, fmt.Errorf("batch %d-%d failed: %w", start+1, end, err)
		}

		summary.Batches++
		logger.Info("Batch complete",
			zap.Int("from", start+1),
			zap.Int("to", end),
			zap.Int("inserted", summary.Inserted),
			zap.Int("skipped", summary.Skipped))
	}

	summary.FinishedAt = time.Now()
	return summary, nil
}

func (l *Loader) processBatch(ctx context.Context, logger *zap.Logger, batch []Row, seen seenTitles, countryID int64, summary *models.ImportSummary) error {
	accepted := l.normalizeBatch(logger, batch, seen, summary)
	if len(accepted) == 0 {
		return nil
	}

	// One snapshot read per batch bounds query volume; the set of new
	// names is computed in memory against it.
	snap, err := l.loadRefSnapshot(ctx)
	if err != nil {
		return err
	}

	writer := NewReferenceWriter(l.refs, logger)
	stats, err := writer.WriteNew(ctx, CollectNewNames(accepted, snap))
	if err != nil {
		return err
	}
	summary.NewDirectors += stats.Directors
	summary.NewGenres += stats.Genres
	summary.NewActors += stats.Actors

	ids, err := NewResolver(l.refs).Resolve(ctx)
	if err != nil {
		return err
	}
	if err := ids.Require(accepted); err != nil {
		return fmt.Errorf("reference resolution failed after write: %w", err)
	}

	for _, rec := range accepted {
		if err := l.insertMovie(ctx, logger, rec, ids, countryID); err != nil {
			// One bad row never aborts a multi-thousand-row batch. The
			// failure is logged with the offending title and counted.
			logger.Warn("Failed to insert movie",
				zap.String("title", rec.Title),
				zap.Error(err))
			summary.Skipped++
			continue
		}
		summary.Inserted++
	}

	return nil
}

// normalizeBatch applies the skip policy and returns the accepted records.
// Accepted titles enter the seen set immediately so later rows in the same
// run that collide are skipped too.
func (l *Loader) normalizeBatch(logger *zap.Logger, batch []Row, seen seenTitles, summary *models.ImportSummary) []*models.MovieRecord {
	var accepted []*models.MovieRecord
	for _, row := range batch {
		rec, err := NormalizeRow(row)
		if err != nil {
			if errors.Is(err, apperrors.ErrSkipRow) {
				logger.Debug("Skipping row", zap.Error(err))
				summary.Skipped++
				continue
			}
			// NormalizeRow only signals skips today; anything else would
			// be a programming error worth counting the same way.
			logger.Warn("Unexpected normalize failure", zap.Error(err))
			summary.Skipped++
			continue
		}

		switch {
		case rec.Title == UnknownTitle:
			logger.Debug("Skipping row without usable title")
			summary.Skipped++
		case rec.ReleaseYear < l.opts.MinYear || rec.ReleaseYear > l.opts.MaxYear:
			logger.Debug("Skipping row with implausible year",
				zap.String("title", rec.Title),
				zap.Int("year", rec.ReleaseYear))
			summary.Skipped++
		case seen.has(rec.Title):
			logger.Debug("Skipping already-known title", zap.String("title", rec.Title))
			summary.Skipped++
		default:
			seen.add(rec.Title)
			accepted = append(accepted, rec)
		}
	}
	return accepted
}

func (l *Loader) loadRefSnapshot(ctx context.Context) (*RefSnapshot, error) {
	directors, err := l.refs.ListNames(ctx, repositories.KindDirector)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot director names: %w", err)
	}
	genres, err := l.refs.ListNames(ctx, repositories.KindGenre)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot genre names: %w", err)
	}
	actors, err := l.refs.ListNames(ctx, repositories.KindActor)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot actor names: %w", err)
	}
	return NewRefSnapshot(directors, genres, actors), nil
}

func (l *Loader) insertMovie(ctx context.Context, logger *zap.Logger, rec *models.MovieRecord, ids *RefIDs, countryID int64) error {
	directorID := ids.Directors[rec.DirectorName]

	movie := &models.Movie{
		Title:          rec.Title,
		OriginalTitle:  nullableString(rec.OriginalTitle),
		ReleaseYear:    &rec.ReleaseYear,
		RuntimeMinutes: rec.RuntimeMinutes,
		Rating:         &rec.Rating,
		Budget:         rec.Budget,
		BoxOffice:      rec.BoxOffice,
		DirectorID:     &directorID,
		CountryID:      &countryID,
		Overview:       nullableString(rec.Overview),
		Genres:         nullableString(strings.Join(rec.GenreNames, "; ")),
		DirectorName:   nullableString(rec.DirectorName),
		Studios:        nullableString(rec.Studios),
		PosterURL:      nullableString(rec.PosterURL),
		BackdropURL:    nullableString(rec.BackdropURL),
		Collection:     nullableString(rec.Collection),
		MPARating:      nullableString(rec.MPARating),
	}

	if err := l.movies.Insert(ctx, movie); err != nil {
		return err
	}

	// Junction rows attach immediately after the primary insert. Conflicts
	// are tolerated; any other junction failure is logged but does not
	// undo the movie row.
	for _, genre := range rec.GenreNames {
		if _, err := l.movies.InsertGenreLink(ctx, movie.ID, ids.Genres[genre]); err != nil {
			logger.Warn("Failed to link genre",
				zap.String("title", rec.Title),
				zap.String("genre", genre),
				zap.Error(err))
		}
	}
	for _, actor := range rec.Actors {
		if _, err := l.movies.InsertActorLink(ctx, movie.ID, ids.Actors[actor.Name], actor.Character); err != nil {
			logger.Warn("Failed to link actor",
				zap.String("title", rec.Title),
				zap.String("actor", actor.Name),
				zap.Error(err))
		}
	}

	return nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
