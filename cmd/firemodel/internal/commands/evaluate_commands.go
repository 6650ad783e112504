package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fire-detection-etl/internal/feature"
	"github.com/couchcryptid/fire-detection-etl/internal/model"
)

func (h *ModelCommandHandler) evaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a labeled holdout CSV against a saved artifact",
		RunE:  h.runEvaluate,
	}

	cmd.Flags().String("data", "", "labeled holdout CSV")
	cmd.Flags().String("model-file", "", "artifact produced by train")
	cmd.Flags().String("run-log", "", "append a run record to this file")
	cmd.Flags().Bool("update-artifact", false, "write the holdout scores back into the artifact")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("model-file")

	return cmd
}

func (h *ModelCommandHandler) runEvaluate(cmd *cobra.Command, _ []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	modelPath, _ := cmd.Flags().GetString("model-file")
	runLogPath, _ := cmd.Flags().GetString("run-log")
	updateArtifact, _ := cmd.Flags().GetBool("update-artifact")

	artifact, err := model.Load(modelPath)
	if err != nil {
		return err
	}

	ds, err := feature.LoadCSV(dataPath)
	if err != nil {
		return err
	}
	y, err := ds.Labels(labelColumn)
	if err != nil {
		return err
	}

	probs, err := artifact.PredictProba(ds.Rows)
	if err != nil {
		return err
	}
	scores, err := model.ComputeScores(y, probs, artifact.Threshold)
	if err != nil {
		return err
	}

	h.logger.Info("holdout evaluated",
		"model", artifact.Model,
		"version", artifact.Version,
		"rows", len(ds.Rows),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "model:     %s (%s)\n", artifact.Model, artifact.Version)
	fmt.Fprintf(out, "rows:      %d\n", len(ds.Rows))
	fmt.Fprintf(out, "accuracy:  %.4f\n", scores.Accuracy)
	fmt.Fprintf(out, "precision: %.4f\n", scores.Precision)
	fmt.Fprintf(out, "recall:    %.4f\n", scores.Recall)
	fmt.Fprintf(out, "f1:        %.4f\n", scores.F1)
	fmt.Fprintf(out, "roc_auc:   %.4f\n", scores.RocAuc)

	if updateArtifact {
		artifact.Scores = &scores
		if err := artifact.Save(modelPath); err != nil {
			return err
		}
		h.logger.Info("artifact updated with holdout scores", "path", modelPath)
	}

	if runLogPath != "" {
		rec := model.RunRecord{
			RunID:      artifact.Version,
			Model:      artifact.Model,
			Params:     artifact.Params,
			Features:   artifact.Schema.Names(),
			Holdout:    &scores,
			TrainedAt:  artifact.TrainedAt,
			DatasetLen: len(ds.Rows),
		}
		if err := model.AppendRunLog(runLogPath, rec); err != nil {
			return err
		}
	}

	return nil
}
