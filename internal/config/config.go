package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Perimeter label sources.
const (
	PerimeterSourceNone     = "none"
	PerimeterSourceGeoJSON  = "geojson"
	PerimeterSourcePostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string `validate:"required,min=1"`
	KafkaSourceTopic string   `validate:"required"`
	KafkaSinkTopic   string   `validate:"required"`
	KafkaGroupID     string   `validate:"required"`
	HTTPAddr         string   `validate:"required"`
	LogLevel         string   `validate:"oneof=debug info warn error"`
	LogFormat        string   `validate:"oneof=json text"`
	ShutdownTimeout  time.Duration

	BatchSize          int           `validate:"gt=0"`
	BatchFlushInterval time.Duration `validate:"gt=0"`

	// Model scoring configuration.
	ModelPath      string
	ModelThreshold float64 `validate:"gte=0,lte=1"`

	// Perimeter labeling configuration.
	PerimeterSource    string `validate:"oneof=none geojson postgres"`
	PerimeterGeoJSON   string
	PerimeterDateSlack time.Duration

	// Postgres configuration.
	PostgresDSN     string
	PostgresPersist bool

	// Region lookup configuration.
	LandsearchToken     string
	LandsearchEnabled   bool
	LandsearchTimeout   time.Duration
	LandsearchCacheSize int `validate:"gt=0"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "5s")
	if err != nil {
		return nil, err
	}
	dateSlack, err := parseDuration("PERIMETER_DATE_SLACK", "72h")
	if err != nil {
		return nil, err
	}
	landsearchTimeout, err := parseDuration("LANDSEARCH_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 || batchSize > 1000 {
		return nil, errors.New("BATCH_SIZE must be between 1 and 1000")
	}
	cacheSize, err := parseInt("LANDSEARCH_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	threshold, err := parseFloat("MODEL_THRESHOLD", 0.50)
	if err != nil {
		return nil, err
	}

	landsearchToken := os.Getenv("LANDSEARCH_TOKEN")
	landsearchEnabled := landsearchToken != ""
	if v := os.Getenv("LANDSEARCH_ENABLED"); v != "" {
		landsearchEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-fire-detections"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "processed-fire-detections"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "fire-detection-etl"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ModelPath:      os.Getenv("MODEL_PATH"),
		ModelThreshold: threshold,

		PerimeterSource:    envOrDefault("PERIMETER_SOURCE", PerimeterSourceNone),
		PerimeterGeoJSON:   os.Getenv("PERIMETER_GEOJSON"),
		PerimeterDateSlack: dateSlack,

		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		PostgresPersist: os.Getenv("POSTGRES_PERSIST") == "true",

		LandsearchToken:     landsearchToken,
		LandsearchEnabled:   landsearchEnabled,
		LandsearchTimeout:   landsearchTimeout,
		LandsearchCacheSize: cacheSize,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.PerimeterSource == PerimeterSourceGeoJSON && cfg.PerimeterGeoJSON == "" {
		return nil, errors.New("PERIMETER_SOURCE is geojson but PERIMETER_GEOJSON is not set")
	}
	if cfg.PerimeterSource == PerimeterSourcePostgres && cfg.PostgresDSN == "" {
		return nil, errors.New("PERIMETER_SOURCE is postgres but POSTGRES_DSN is not set")
	}
	if cfg.PostgresPersist && cfg.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_PERSIST is true but POSTGRES_DSN is not set")
	}
	if cfg.LandsearchEnabled && cfg.LandsearchToken == "" {
		return nil, errors.New("LANDSEARCH_ENABLED is true but LANDSEARCH_TOKEN is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
