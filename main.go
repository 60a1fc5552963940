package main

import (
	"context"
	"log"

	"sentinel/adapters/plot"
	"sentinel/adapters/postgres"
	"sentinel/adapters/storage"
	"sentinel/api"
	"sentinel/internal/config"
	"sentinel/internal/errors"
	"sentinel/internal/migration"
	"sentinel/internal/pipeline"
	"sentinel/internal/simulation"
	"sentinel/internal/worker"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	datasets := postgres.NewDatasetRepository(db)
	reports := postgres.NewReportRepository(db)
	files := storage.NewLocalFileStorage(appConfig.Storage.UploadDir)
	plots := plot.NewEngine()

	pipe := pipeline.New(pipeline.WithSimulationOptions(simulation.Options{
		MaxRows: appConfig.Pipeline.SimulationRows,
		Seed:    appConfig.Pipeline.Seed,
	}))

	ctx := context.Background()
	analysisWorker := worker.New(ctx, datasets, reports, pipe, appConfig.Pipeline.Workers)
	if err := analysisWorker.ResumePending(ctx); err != nil {
		log.Printf("Failed to resume pending datasets: %v", err)
	}

	app := api.NewApp(appConfig, datasets, reports, files, plots, analysisWorker)
	if err := app.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
