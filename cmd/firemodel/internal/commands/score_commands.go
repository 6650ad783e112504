package commands

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fire-detection-etl/internal/feature"
	"github.com/couchcryptid/fire-detection-etl/internal/model"
)

func (h *ModelCommandHandler) scoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Apply a saved artifact to a CSV of detections",
		Long: `score reads a detection CSV (same columns as the training data, label
optional), applies the artifact, and writes id, probability, and the
thresholded prediction as CSV to stdout.`,
		RunE: h.runScore,
	}

	cmd.Flags().String("data", "", "detection CSV to score")
	cmd.Flags().String("model-file", "", "artifact produced by train")
	cmd.Flags().String("id-column", "id", "column copied through as the row identifier")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("model-file")

	return cmd
}

func (h *ModelCommandHandler) runScore(cmd *cobra.Command, _ []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	modelPath, _ := cmd.Flags().GetString("model-file")
	idColumn, _ := cmd.Flags().GetString("id-column")

	artifact, err := model.Load(modelPath)
	if err != nil {
		return err
	}

	ds, err := feature.LoadCSV(dataPath)
	if err != nil {
		return err
	}

	probs, err := artifact.PredictProba(ds.Rows)
	if err != nil {
		return err
	}

	h.logger.Info("detections scored",
		"model", artifact.Model,
		"version", artifact.Version,
		"rows", len(ds.Rows),
	)

	w := csv.NewWriter(cmd.OutOrStdout())
	if err := w.Write([]string{"id", "probability", "forest_fire"}); err != nil {
		return err
	}
	for i, row := range ds.Rows {
		id := row[idColumn]
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		}
		rec := []string{
			id,
			strconv.FormatFloat(probs[i], 'f', 6, 64),
			strconv.FormatBool(probs[i] >= artifact.Threshold),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
