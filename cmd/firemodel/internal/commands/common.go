// Package commands implements the firemodel CLI sub-commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fire-detection-etl/internal/feature"
	"github.com/couchcryptid/fire-detection-etl/internal/model/timefold"
)

// Training dataset columns that are targets rather than features.
const (
	labelColumn = "forest_fire"
	dateColumn  = "date"
)

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// trainingData is a dataset prepared for fitting: featurized matrix plus the
// label and date targets.
type trainingData struct {
	dataset feature.Dataset
	schema  feature.Schema
	x       [][]float64
	y       []bool
	dates   []time.Time
}

// loadTrainingData reads a labeled CSV and featurizes it. The region state
// vocabulary is inferred from the data so the schema travels with the model.
func loadTrainingData(path string) (*trainingData, error) {
	ds, err := feature.LoadCSV(path)
	if err != nil {
		return nil, err
	}

	y, err := ds.Labels(labelColumn)
	if err != nil {
		return nil, err
	}
	dates, err := ds.Dates(dateColumn)
	if err != nil {
		return nil, err
	}

	states := feature.InferCategories(ds.Rows, feature.ColRegionState)
	schema := feature.DetectionSchema(states)
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	return &trainingData{
		dataset: ds,
		schema:  schema,
		x:       schema.VectorizeRows(ds.Rows),
		y:       y,
		dates:   dates,
	}, nil
}

// buildFolds generates time folds from the command's fold flags.
func buildFolds(cmd *cobra.Command, td *trainingData) ([]timefold.Fold, error) {
	strategy, _ := cmd.Flags().GetString("fold-strategy")
	maxFolds, _ := cmd.Flags().GetInt("folds")
	windowDays, _ := cmd.Flags().GetInt("window-days")
	resample, _ := cmd.Flags().GetString("resample")
	seed, _ := cmd.Flags().GetInt64("seed")

	cfg := timefold.Config{
		MaxFolds: maxFolds,
		Resample: resample,
		Seed:     seed,
	}

	switch strategy {
	case "sequential":
		return timefold.Sequential(td.dates, td.y, cfg)
	case "stratified":
		return timefold.Stratified(td.dates, td.y, windowDays, 0, cfg)
	default:
		return nil, fmt.Errorf("unknown fold strategy %q (want sequential or stratified)", strategy)
	}
}

func addFoldFlags(cmd *cobra.Command) {
	cmd.Flags().String("fold-strategy", "sequential", "cross-validation strategy: sequential or stratified")
	cmd.Flags().Int("folds", 10, "maximum number of time folds")
	cmd.Flags().Int("window-days", 30, "calendar window for stratified folds, in days")
	cmd.Flags().String("resample", timefold.ResampleNone, "training resampling: none, upsample, or downsample")
	cmd.Flags().Int64("seed", 24, "resampling RNG seed")
}

// InitModelCommands registers the train, evaluate, and score sub-commands.
func InitModelCommands(rootCmd *cobra.Command) error {
	handler := &ModelCommandHandler{logger: setupLogger()}

	rootCmd.AddCommand(handler.trainCommand())
	rootCmd.AddCommand(handler.evaluateCommand())
	rootCmd.AddCommand(handler.scoreCommand())
	return nil
}

// ModelCommandHandler encapsulates logic shared by the model sub-commands.
type ModelCommandHandler struct {
	logger *slog.Logger
}
