package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations

	"github.com/naturewatch/aoi-engine/pkg/auth"
	"github.com/naturewatch/aoi-engine/pkg/config"
	"github.com/naturewatch/aoi-engine/pkg/database"
	"github.com/naturewatch/aoi-engine/pkg/handlers"
	"github.com/naturewatch/aoi-engine/pkg/llm"
	"github.com/naturewatch/aoi-engine/pkg/logging"
	"github.com/naturewatch/aoi-engine/pkg/middleware"
	"github.com/naturewatch/aoi-engine/pkg/models"
	"github.com/naturewatch/aoi-engine/pkg/repositories"
	"github.com/naturewatch/aoi-engine/pkg/services"
)

// Version is set at build time via ldflags.
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
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to open migration connection: %v", err)
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	_ = sqlDB.Close()

	oracleClient, err := llm.NewClient(&llm.Config{
		Provider:  cfg.Oracle.Provider,
		Endpoint:  cfg.Oracle.Endpoint,
		Model:     cfg.Oracle.Model,
		APIKey:    cfg.Oracle.APIKey,
		MaxTokens: cfg.Oracle.MaxTokens,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create oracle client: %v", err)
	}

	verifier, err := auth.NewVerifier(cfg.Auth.EnableVerification, cfg.Auth.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}

	repo := repositories.NewGeometryRepository(db, logger)
	searcher := services.NewCandidateSearcher(
		repo, models.Descriptors(),
		cfg.Search.PerSourceLimit, cfg.Search.SimilarityFloor,
		logger)
	oracle := services.NewSelectionOracle(oracleClient, cfg.Oracle.Temperature, logger)
	expander := services.NewSubregionExpander(repo, logger)
	resolver := services.NewResolver(searcher, oracle, expander, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewResolveHandler(resolver, verifier, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	log.Printf("Starting aoi-engine on %s (version: %s, oracle: %s)", addr, cfg.Version, oracleClient.Model())
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
