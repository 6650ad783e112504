package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fire-detection-etl/internal/model"
)

func (h *ModelCommandHandler) trainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Grid-search a classifier over time folds and save the artifact",
		RunE:  h.runTrain,
	}

	cmd.Flags().String("data", "", "labeled training CSV")
	cmd.Flags().String("model", model.NameLogit, "classifier: logit, random_forest, or gradient_boosting")
	cmd.Flags().String("out", "model.json", "output artifact path")
	cmd.Flags().Float64("threshold", model.DefaultThreshold, "decision threshold stored in the artifact")
	cmd.Flags().String("run-log", "", "append a run record to this file")
	addFoldFlags(cmd)
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func (h *ModelCommandHandler) runTrain(cmd *cobra.Command, _ []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	modelName, _ := cmd.Flags().GetString("model")
	outPath, _ := cmd.Flags().GetString("out")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	runLogPath, _ := cmd.Flags().GetString("run-log")

	td, err := loadTrainingData(dataPath)
	if err != nil {
		return err
	}
	h.logger.Info("dataset loaded",
		"rows", len(td.dataset.Rows),
		"features", td.schema.Width(),
		"positives", countTrue(td.y),
	)

	folds, err := buildFolds(cmd, td)
	if err != nil {
		return err
	}
	h.logger.Info("folds generated", "count", len(folds))

	result, err := model.GridSearch(cmd.Context(), modelName, td.x, td.y, folds, h.logger)
	if err != nil {
		return err
	}

	artifact, err := model.NewArtifact(result.Classifier, td.schema, threshold, nil)
	if err != nil {
		return err
	}
	if err := artifact.Save(outPath); err != nil {
		return err
	}
	h.logger.Info("artifact saved", "path", outPath, "version", artifact.Version)

	if runLogPath != "" {
		rec := model.RunRecord{
			RunID:      artifact.Version,
			Model:      modelName,
			Params:     result.Params,
			Features:   td.schema.Names(),
			FoldAucs:   foldAucs(result.FoldScores),
			MeanAuc:    result.MeanAuc,
			TrainedAt:  artifact.TrainedAt,
			DatasetLen: len(td.dataset.Rows),
		}
		if err := model.AppendRunLog(runLogPath, rec); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "trained %s (mean fold AUC %.4f), artifact at %s\n",
		modelName, result.MeanAuc, outPath)
	return nil
}

func countTrue(y []bool) int {
	n := 0
	for _, v := range y {
		if v {
			n++
		}
	}
	return n
}

func foldAucs(scores []model.Scores) []float64 {
	aucs := make([]float64, len(scores))
	for i, s := range scores {
		aucs[i] = s.RocAuc
	}
	return aucs
}
