package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/JakitaK/dataset-webapi-group2/pkg/config"
	"github.com/JakitaK/dataset-webapi-group2/pkg/database"
	"github.com/JakitaK/dataset-webapi-group2/pkg/handlers"
	"github.com/JakitaK/dataset-webapi-group2/pkg/logging"
	"github.com/JakitaK/dataset-webapi-group2/pkg/middleware"
	"github.com/JakitaK/dataset-webapi-group2/pkg/repositories"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
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

	// Migrations run through database/sql (required by golang-migrate).
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Import.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	movieRepo := repositories.NewMovieRepository(db)
	directorRepo := repositories.NewDirectorRepository(db)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, db, logger)
	healthHandler.RegisterRoutes(mux)

	// The API key guards the data routes only; health stays open for
	// platform probes.
	apiMux := http.NewServeMux()

	movieHandler := handlers.NewMovieHandler(movieRepo, cfg.Import.MinYear, cfg.Import.MaxYear, logger)
	movieHandler.RegisterRoutes(apiMux)

	directorHandler := handlers.NewDirectorHandler(directorRepo, logger)
	directorHandler.RegisterRoutes(apiMux)

	mux.Handle("/api/v1/", middleware.APIKey(cfg.APIKey)(apiMux))

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting dataset-webapi",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
