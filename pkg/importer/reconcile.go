package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/models"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// Reconciler collapses movie rows sharing a (title, release year) natural
// key down to exactly one surviving row per group. The survivor is always
// the row with the smallest store-assigned id: earliest-created wins. The
// delete runs in a single transaction, so a failure leaves the table
// untouched. The reconciler assumes no concurrent movie writes during its
// pass.
type Reconciler struct {
	movies repositories.MovieRepository
	logger *zap.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(movies repositories.MovieRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{movies: movies, logger: logger}
}

// Run executes one reconciliation pass. It is idempotent: a second run
// over an already-clean table removes zero rows.
func (r *Reconciler) Run(ctx context.Context) (*models.ReconcileSummary, error) {
	summary := &models.ReconcileSummary{RunID: uuid.New().String()}
	logger := r.logger.With(zap.String("run_id", summary.RunID))

	groups, err := r.movies.DuplicateGroups(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to scan for duplicates: %w", err)
	}
	summary.GroupsFound = len(groups)

	if len(groups) == 0 {
		logger.Info("No duplicate movies found")
		return summary, nil
	}

	logger.Info("Removing duplicate movies",
		zap.Int("groups", len(groups)),
		zap.String("policy", "keep smallest id"))

	removed, err := r.movies.DeleteDuplicates(ctx)
	if err != nil {
		// The repository rolls the transaction back; nothing was removed.
		return summary, fmt.Errorf("reconciliation failed: %w", err)
	}
	summary.RowsRemoved = removed

	// Post-condition scan. A residual group after a committed
	// delete-minimum pass indicates a logic or concurrency bug worth
	// surfacing, not a transient condition, so it is reported rather than
	// retried.
	residual, err := r.movies.DuplicateGroups(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to verify reconciliation: %w", err)
	}
	summary.ResidualGroups = len(residual)

	if summary.ResidualGroups > 0 {
		logger.Warn("Duplicate groups remain after reconciliation",
			zap.Int("residual_groups", summary.ResidualGroups))
	} else {
		logger.Info("Reconciliation complete",
			zap.Int64("rows_removed", removed))
	}

	return summary, nil
}
