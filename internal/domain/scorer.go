package domain

import (
	"context"
	"log/slog"
)

// Scorer classifies a detection as forest fire or other thermal anomaly.
type Scorer interface {
	// ScoreDetection returns the forest-fire probability, the thresholded
	// decision, and the scoring model's version.
	ScoreDetection(ctx context.Context, det Detection) (Score, error)
}

// ApplyScore attempts to score a detection with the given scorer. A nil
// scorer leaves the detection unscored; a scorer error is logged and the
// detection continues through the pipeline without a score.
func ApplyScore(ctx context.Context, det Detection, scorer Scorer, logger *slog.Logger) Detection {
	if scorer == nil {
		return det
	}

	score, err := scorer.ScoreDetection(ctx, det)
	if err != nil {
		logger.Warn("scoring failed", "detection_id", det.ID, "error", err)
		return det
	}
	det.Score = &score
	return det
}
