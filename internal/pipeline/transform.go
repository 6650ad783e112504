package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/couchcryptid/fire-detection-etl/internal/observability"
)

// DetectionTransformer implements Transformer using the domain transform
// functions, with optional perimeter labeling, region enrichment, and model
// scoring. Any of the three enrichers may be nil to disable that stage.
type DetectionTransformer struct {
	matcher domain.PerimeterMatcher
	lookup  domain.RegionLookup
	scorer  domain.Scorer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a DetectionTransformer.
func NewTransformer(matcher domain.PerimeterMatcher, lookup domain.RegionLookup, scorer domain.Scorer, logger *slog.Logger, metrics *observability.Metrics) *DetectionTransformer {
	return &DetectionTransformer{
		matcher: matcher,
		lookup:  lookup,
		scorer:  scorer,
		logger:  logger,
		metrics: metrics,
	}
}

func (t *DetectionTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Detection, error) {
	det, err := domain.ParseRawDetection(raw)
	if err != nil {
		return domain.Detection{}, err
	}

	det = domain.EnrichDetection(det)
	det = domain.EnrichWithRegion(ctx, det, t.lookup, t.logger)

	det = domain.LabelWithPerimeter(ctx, det, t.matcher, t.logger)
	if det.Label != nil {
		t.metrics.PerimeterLabels.WithLabelValues(det.Label.Source).Inc()
	}

	if t.scorer != nil {
		start := time.Now()
		det = domain.ApplyScore(ctx, det, t.scorer, t.logger)
		t.metrics.ScoreDuration.Observe(time.Since(start).Seconds())
		if det.Score != nil && det.Score.ForestFire {
			t.metrics.ScoredPositive.Inc()
		}
	}

	return det, nil
}
