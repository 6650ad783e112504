package domain

import (
	"context"
	"log/slog"
	"time"
)

// PerimeterMatch describes the forest-fire perimeter a detection falls inside.
type PerimeterMatch struct {
	PerimeterID string
	FireName    string
	Agency      string
	AreaAcres   float64
}

// PerimeterMatcher answers whether a point lies inside a forest-fire
// perimeter whose active window covers the given date. Implementations must
// be safe for concurrent use.
type PerimeterMatcher interface {
	// Match returns the best matching perimeter for the point and date.
	// The bool result is false when no perimeter contains the point.
	Match(ctx context.Context, geo Geo, date time.Time) (PerimeterMatch, bool, error)
}

// LabelWithPerimeter attempts to label a detection against forest-fire
// perimeters. If matcher is nil or matching fails, the detection is returned
// with the label source set accordingly (graceful degradation).
func LabelWithPerimeter(ctx context.Context, det Detection, matcher PerimeterMatcher, logger *slog.Logger) Detection {
	if matcher == nil {
		det.Label = &Label{Source: "skipped"}
		return det
	}

	match, ok, err := matcher.Match(ctx, det.Geo, det.DetectedAt)
	if err != nil {
		logger.Warn("perimeter match failed",
			"detection_id", det.ID,
			"lat", det.Geo.Lat,
			"lon", det.Geo.Lon,
			"error", err,
		)
		det.Label = &Label{Source: "failed"}
		return det
	}
	if !ok {
		det.Label = &Label{Source: "clear"}
		return det
	}

	det.Label = &Label{
		ForestFire:  true,
		PerimeterID: match.PerimeterID,
		FireName:    match.FireName,
		Source:      "matched",
	}
	return det
}
