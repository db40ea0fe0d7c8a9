package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// WriteStats counts the outcomes of one reference-write pass.
type WriteStats struct {
	Directors int
	Genres    int
	Actors    int
	// AlreadyExisted counts names another writer inserted first, or that a
	// stale snapshot reported as new. Not an error: the desired end state
	// already holds.
	AlreadyExisted int
}

// ReferenceWriter persists new reference entities. It never reads ids
// back; id resolution is a separate step so concurrent writers need no
// read-your-writes ordering.
type ReferenceWriter struct {
	refs   repositories.ReferenceRepository
	logger *zap.Logger
}

// NewReferenceWriter creates a new ReferenceWriter.
func NewReferenceWriter(refs repositories.ReferenceRepository, logger *zap.Logger) *ReferenceWriter {
	return &ReferenceWriter{refs: refs, logger: logger}
}

// WriteNew inserts every new name. A name that already exists is counted
// and skipped; any other failure aborts the batch.
func (w *ReferenceWriter) WriteNew(ctx context.Context, names NewNames) (WriteStats, error) {
	var stats WriteStats

	inserted, err := w.writeKind(ctx, repositories.KindDirector, names.Directors, &stats)
	if err != nil {
		return stats, err
	}
	stats.Directors = inserted

	inserted, err = w.writeKind(ctx, repositories.KindGenre, names.Genres, &stats)
	if err != nil {
		return stats, err
	}
	stats.Genres = inserted

	inserted, err = w.writeKind(ctx, repositories.KindActor, names.Actors, &stats)
	if err != nil {
		return stats, err
	}
	stats.Actors = inserted

	return stats, nil
}

func (w *ReferenceWriter) writeKind(ctx context.Context, kind repositories.RefKind, names []string, stats *WriteStats) (int, error) {
	inserted := 0
	for _, name := range names {
		outcome, err := w.refs.InsertName(ctx, kind, name)
		if err != nil {
			return inserted, fmt.Errorf("failed to write %s references: %w", kind, err)
		}
		switch outcome {
		case repositories.OutcomeInserted:
			inserted++
		case repositories.OutcomeAlreadyExists:
			stats.AlreadyExisted++
			w.logger.Debug("Reference already existed",
				zap.String("kind", string(kind)),
				zap.String("name", name))
		}
	}
	return inserted, nil
}
