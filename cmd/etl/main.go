package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/couchcryptid/fire-detection-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/fire-detection-etl/internal/adapter/kafka"
	"github.com/couchcryptid/fire-detection-etl/internal/adapter/landsearch"
	pgadapter "github.com/couchcryptid/fire-detection-etl/internal/adapter/postgres"
	"github.com/couchcryptid/fire-detection-etl/internal/config"
	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/couchcryptid/fire-detection-etl/internal/geo"
	"github.com/couchcryptid/fire-detection-etl/internal/model"
	"github.com/couchcryptid/fire-detection-etl/internal/observability"
	"github.com/couchcryptid/fire-detection-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var db *gorm.DB
	if cfg.PostgresDSN != "" {
		db, err = pgadapter.Open(cfg.PostgresDSN, logger)
		if err != nil {
			logger.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
	}

	matcher, err := buildMatcher(cfg, db, logger)
	if err != nil {
		logger.Error("perimeter matcher setup failed", "error", err)
		os.Exit(1)
	}
	metrics.PerimeterEnabled.Set(boolGauge(matcher != nil))

	lookup := buildLookup(cfg, metrics, logger)
	metrics.RegionEnabled.Set(boolGauge(lookup != nil))

	scorer, err := buildScorer(cfg, logger)
	if err != nil {
		logger.Error("model load failed", "error", err)
		os.Exit(1)
	}
	metrics.ScoringEnabled.Set(boolGauge(scorer != nil))

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(matcher, lookup, scorer, logger, metrics)

	loaders := []pipeline.BatchLoader{writer}
	if cfg.PostgresPersist {
		if err := pgadapter.Migrate(db); err != nil {
			logger.Error("postgres migration failed", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, pgadapter.NewDetectionStore(db, logger))
		logger.Info("postgres persistence enabled")
	}

	p := pipeline.New(reader, transformer, pipeline.NewMultiLoader(loaders...), logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, scorer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if db != nil {
		if err := pgadapter.Close(db); err != nil {
			logger.Error("postgres close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildMatcher selects the perimeter label source: a GeoJSON file loaded into
// an in-memory index, live PostGIS queries, or none.
func buildMatcher(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (domain.PerimeterMatcher, error) {
	switch cfg.PerimeterSource {
	case config.PerimeterSourceGeoJSON:
		perimeters, err := geo.LoadGeoJSON(cfg.PerimeterGeoJSON)
		if err != nil {
			return nil, err
		}
		index := geo.NewIndex(perimeters, cfg.PerimeterDateSlack)
		logger.Info("perimeter labeling enabled",
			"source", "geojson",
			"path", cfg.PerimeterGeoJSON,
			"perimeters", index.Len(),
		)
		return index, nil
	case config.PerimeterSourcePostgres:
		logger.Info("perimeter labeling enabled", "source", "postgres")
		return pgadapter.NewPerimeterStore(db, cfg.PerimeterDateSlack), nil
	default:
		logger.Info("perimeter labeling disabled")
		return nil, nil
	}
}

// buildLookup constructs the cached region lookup when a token is configured.
func buildLookup(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.RegionLookup {
	if !cfg.LandsearchEnabled {
		logger.Info("region lookup disabled")
		return nil
	}
	client := landsearch.NewClient(cfg.LandsearchToken, cfg.LandsearchTimeout, metrics, logger)
	logger.Info("region lookup enabled", "cache_size", cfg.LandsearchCacheSize, "timeout", cfg.LandsearchTimeout)
	return landsearch.NewCachedLookup(client, cfg.LandsearchCacheSize, metrics)
}

// buildScorer loads the classifier artifact when MODEL_PATH is set. The
// threshold from the environment overrides the one stored in the artifact.
func buildScorer(cfg *config.Config, logger *slog.Logger) (domain.Scorer, error) {
	if cfg.ModelPath == "" {
		logger.Info("model scoring disabled")
		return nil, nil
	}
	artifact, err := model.Load(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	artifact.Threshold = cfg.ModelThreshold
	logger.Info("model scoring enabled",
		"model", artifact.Model,
		"version", artifact.Version,
		"threshold", artifact.Threshold,
	)
	return artifact, nil
}

func boolGauge(enabled bool) float64 {
	if enabled {
		return 1
	}
	return 0
}
