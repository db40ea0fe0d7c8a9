// remove-duplicates collapses movie rows sharing the same
// (title, release_year) down to one surviving row per group, keeping the
// row with the smallest movie_id. The delete runs in a single transaction
// and a post-condition scan reports any groups that survived the pass.
//
// Usage: go run ./scripts/remove-duplicates [-dry-run=false]
//
// Database connection: Uses standard PG* environment variables, or
// DATABASE_URL when set. A .env file in the working directory is loaded
// if present.
//
// Flags:
//
//	-dry-run   List duplicate groups without deleting (default: true)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/config"
	"github.com/JakitaK/dataset-webapi-group2/pkg/database"
	"github.com/JakitaK/dataset-webapi-group2/pkg/importer"
	"github.com/JakitaK/dataset-webapi-group2/pkg/logging"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

func main() {
	dryRun := flag.Bool("dry-run", true, "List duplicate groups without deleting")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.URL(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	movies := repositories.NewMovieRepository(db)

	if *dryRun {
		if err := listDuplicates(ctx, movies); err != nil {
			logger.Fatal("Duplicate scan failed", zap.Error(err))
		}
		fmt.Println("\nDry run only. Re-run with -dry-run=false to delete.")
		return
	}

	summary, err := importer.NewReconciler(movies, logger).Run(ctx)
	if err != nil {
		logger.Fatal("Reconciliation failed", zap.Error(err))
	}

	fmt.Printf("\nReconcile run %s\n", summary.RunID)
	fmt.Printf("  Duplicate groups: %d\n", summary.GroupsFound)
	fmt.Printf("  Rows removed:     %d\n", summary.RowsRemoved)
	if summary.ResidualGroups > 0 {
		fmt.Printf("  WARNING: %d duplicate groups remain\n", summary.ResidualGroups)
	}
}

func listDuplicates(ctx context.Context, movies repositories.MovieRepository) error {
	groups, err := movies.DuplicateGroups(ctx)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		fmt.Println("No duplicate movies found.")
		return nil
	}

	fmt.Printf("Found %d duplicate groups:\n", len(groups))
	for _, g := range groups {
		year := "unknown"
		if g.ReleaseYear != nil {
			year = fmt.Sprintf("%d", *g.ReleaseYear)
		}
		fmt.Printf("  %q (%s): %d rows, survivor would be movie_id %d\n",
			g.Title, year, g.Count, g.MinID)
	}
	return nil
}
