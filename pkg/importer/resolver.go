package importer

import (
	"context"
	"fmt"

	"github.com/JakitaK/dataset-webapi-group2/pkg/apperrors"
	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// RefIDs maps reference-entity names to their store-assigned ids.
type RefIDs struct {
	Directors map[string]int64
	Genres    map[string]int64
	Actors    map[string]int64
}

// Resolver builds name-to-id mappings by re-reading the reference tables
// after a write pass. Insert-returned ids are never trusted: entities may
// have been created by a concurrent writer, so a fresh read is the only
// authoritative source.
type Resolver struct {
	refs repositories.ReferenceRepository
}

// NewResolver creates a new Resolver.
func NewResolver(refs repositories.ReferenceRepository) *Resolver {
	return &Resolver{refs: refs}
}

// Resolve reads all three reference tables into id maps.
func (r *Resolver) Resolve(ctx context.Context) (*RefIDs, error) {
	directors, err := r.refs.ResolveIDs(ctx, repositories.KindDirector)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve director ids: %w", err)
	}
	genres, err := r.refs.ResolveIDs(ctx, repositories.KindGenre)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve genre ids: %w", err)
	}
	actors, err := r.refs.ResolveIDs(ctx, repositories.KindActor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor ids: %w", err)
	}

	return &RefIDs{
		Directors: directors,
		Genres:    genres,
		Actors:    actors,
	}, nil
}

// Require verifies that every name referenced by the records has a
// resolved id. A missing id after a completed write-then-resolve pass
// signals a logic defect (for example a case-sensitivity mismatch between
// write and read), so the batch must fail fast rather than write a movie
// with a dangling link.
func (ids *RefIDs) Require(records []*models.MovieRecord) error {
	for _, rec := range records {
		if _, ok := ids.Directors[rec.DirectorName]; !ok {
			return fmt.Errorf("%w: director %q", apperrors.ErrMissingReference, rec.DirectorName)
		}
		for _, genre := range rec.GenreNames {
			if _, ok := ids.Genres[genre]; !ok {
				return fmt.Errorf("%w: genre %q", apperrors.ErrMissingReference, genre)
			}
		}
		for _, actor := range rec.Actors {
			if _, ok := ids.Actors[actor.Name]; !ok {
				return fmt.Errorf("%w: actor %q", apperrors.ErrMissingReference, actor.Name)
			}
		}
	}
	return nil
}
