package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/fire-detection-etl/internal/model/timefold"
)

// paramGrids returns the hyperparameter grid per model. A nil grid means the
// model trains once with its defaults.
func paramGrids(name string) []Params {
	switch name {
	case NameLogit:
		var grid []Params
		for _, penalty := range []string{"l2", "l1"} {
			for _, c := range []string{"0.1", "0.5", "1", "2", "10"} {
				grid = append(grid, Params{"penalty": penalty, "C": c})
			}
		}
		return grid
	case NameRandomForest:
		var grid []Params
		for _, depth := range []string{"3", "5", "10", "20"} {
			grid = append(grid, Params{"n_estimators": "500", "max_depth": depth})
		}
		return grid
	case NameGradientBoosting:
		var grid []Params
		for _, lr := range []string{"0.01", "0.05", "0.1"} {
			grid = append(grid, Params{"learning_rate": lr})
		}
		return grid
	default:
		return nil
	}
}

// GridResult is the outcome of a grid search.
type GridResult struct {
	Classifier Classifier
	Params     Params
	// MeanAuc is the mean fold ROC AUC of the winning parameters.
	MeanAuc float64
	// FoldScores are the per-fold scores of the winning parameters.
	FoldScores []Scores
	Elapsed    time.Duration
}

// GridSearch evaluates every parameter combination for the model over the
// folds, picks the combination with the highest mean ROC AUC, and refits it
// on the full training set. Mirrors the per-model grids the project has
// always used.
func GridSearch(ctx context.Context, name string, x [][]float64, y []bool, folds []timefold.Fold, logger *slog.Logger) (*GridResult, error) {
	if len(folds) == 0 {
		return nil, fmt.Errorf("grid search: no folds")
	}
	grid := paramGrids(name)
	if grid == nil {
		// Validate the name even when there is no grid to sweep.
		if _, err := New(name, nil); err != nil {
			return nil, fmt.Errorf("grid search: %w", err)
		}
		grid = []Params{{}}
	}

	start := time.Now()
	best := -1.0
	var bestParams Params
	var bestFoldScores []Scores

	for _, params := range grid {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("grid search cancelled: %w", err)
		}

		foldScores, err := evaluateParams(name, params, x, y, folds)
		if err != nil {
			return nil, fmt.Errorf("grid search %v: %w", params, err)
		}
		mean := meanAuc(foldScores)
		logger.Debug("grid point evaluated", "model", name, "params", params, "mean_auc", mean)

		if mean > best {
			best = mean
			bestParams = params
			bestFoldScores = foldScores
		}
	}

	clf, err := New(name, bestParams.Clone())
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(x, y); err != nil {
		return nil, fmt.Errorf("refit best params: %w", err)
	}

	logger.Info("grid search complete",
		"model", name,
		"best_params", bestParams,
		"mean_auc", best,
		"folds", len(folds),
		"elapsed", time.Since(start),
	)

	return &GridResult{
		Classifier: clf,
		Params:     bestParams,
		MeanAuc:    best,
		FoldScores: bestFoldScores,
		Elapsed:    time.Since(start),
	}, nil
}

// evaluateParams trains and scores one parameter combination across folds.
func evaluateParams(name string, params Params, x [][]float64, y []bool, folds []timefold.Fold) ([]Scores, error) {
	scores := make([]Scores, 0, len(folds))
	for _, fold := range folds {
		clf, err := New(name, params.Clone())
		if err != nil {
			return nil, err
		}

		trainX, trainY := subset(x, y, fold.Train)
		testX, testY := subset(x, y, fold.Test)

		if err := clf.Fit(trainX, trainY); err != nil {
			return nil, fmt.Errorf("fold %s: %w", fold.TestDate.Format("2006-01-02"), err)
		}
		probs, err := clf.PredictProba(testX)
		if err != nil {
			return nil, fmt.Errorf("fold %s: %w", fold.TestDate.Format("2006-01-02"), err)
		}
		s, err := ComputeScores(testY, probs, DefaultThreshold)
		if err != nil {
			return nil, fmt.Errorf("fold %s: %w", fold.TestDate.Format("2006-01-02"), err)
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func subset(x [][]float64, y []bool, idx []int) ([][]float64, []bool) {
	subX := make([][]float64, len(idx))
	subY := make([]bool, len(idx))
	for k, i := range idx {
		subX[k] = x[i]
		subY[k] = y[i]
	}
	return subX, subY
}

func meanAuc(scores []Scores) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.RocAuc
	}
	return sum / float64(len(scores))
}
