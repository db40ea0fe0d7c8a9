// import-movies loads the denormalized movie CSV export into the
// normalized schema in resumable batches.
//
// Rows are skipped (counted, not fatal) when the title is blank, the
// release year is missing or implausible, or the title is already present
// in the database (resume mode). Reference entities (directors, genres,
// actors) are deduplicated by exact name; concurrent inserts of the same
// name are tolerated.
//
// Usage: go run ./scripts/import-movies -csv data/movies_last30years.csv
//
// Database connection: Uses standard PG* environment variables, or
// DATABASE_URL when set. A .env file in the working directory is loaded
// if present.
//
// Flags:
//
//	-csv         Path to the CSV export (required)
//	-batch-size  Rows per batch (default from config, 500)
//	-offset      Source-row offset to resume from (default 0)
//	-resume      Skip rows whose title already exists in the database (default true)
//	-min-year    Lowest plausible release year (default from config, 1990)
//	-max-year    Highest plausible release year (default current year + 1)
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/config"
	"github.com/JakitaK/dataset-webapi-group2/pkg/database"
	"github.com/JakitaK/dataset-webapi-group2/pkg/importer"
	"github.com/JakitaK/dataset-webapi-group2/pkg/logging"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

func main() {
	csvPath := flag.String("csv", "", "Path to the CSV export (required)")
	batchSize := flag.Int("batch-size", 0, "Rows per batch (0 uses the configured default)")
	offset := flag.Int("offset", 0, "Source-row offset to resume from")
	resume := flag.Bool("resume", true, "Skip rows whose title already exists in the database")
	minYear := flag.Int("min-year", 0, "Lowest plausible release year (0 uses the configured default)")
	maxYear := flag.Int("max-year", 0, "Highest plausible release year (0 means current year + 1)")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -csv <path> [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

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

	// Interrupts land on a batch boundary: committed batches stay
	// committed and a later run resumes past them.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *csvPath, *batchSize, *offset, *resume, *minYear, *maxYear); err != nil {
		logger.Error("Import failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, csvPath string, batchSize, offset int, resume bool, minYear, maxYear int) error {
	rows, err := importer.ReadCSVFile(csvPath)
	if err != nil {
		return fmt.Errorf("failed to read source rows: %w", err)
	}
	logger.Info("Parsed source rows", zap.Int("rows", len(rows)))

	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.URL(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	if err := database.RunMigrations(sqlDB, cfg.Import.MigrationsPath, logger); err != nil {
		return err
	}
	_ = sqlDB.Close()

	if batchSize <= 0 {
		batchSize = cfg.Import.BatchSize
	}
	if minYear == 0 {
		minYear = cfg.Import.MinYear
	}
	if maxYear == 0 {
		maxYear = cfg.Import.MaxYear
	}

	loader := importer.NewLoader(
		repositories.NewMovieRepository(db),
		repositories.NewReferenceRepository(db),
		importer.Options{
			BatchSize:      batchSize,
			MinYear:        minYear,
			MaxYear:        maxYear,
			Offset:         offset,
			ResumeByTitle:  resume,
			DefaultCountry: cfg.Import.DefaultCountry,
		},
		logger,
	)

	summary, err := loader.Run(ctx, rows)

	fmt.Printf("\nImport run %s\n", summary.RunID)
	fmt.Printf("  Rows:          %d\n", summary.RowsTotal)
	fmt.Printf("  Batches:       %d\n", summary.Batches)
	fmt.Printf("  Inserted:      %d\n", summary.Inserted)
	fmt.Printf("  Skipped:       %d\n", summary.Skipped)
	fmt.Printf("  New directors: %d\n", summary.NewDirectors)
	fmt.Printf("  New genres:    %d\n", summary.NewGenres)
	fmt.Printf("  New actors:    %d\n", summary.NewActors)
	fmt.Printf("  Duration:      %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	return err
}
