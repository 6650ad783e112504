package domain

import (
	"context"
	"log/slog"
)

// RegionResult contains administrative area data returned by a lookup provider.
type RegionResult struct {
	State     string
	County    string
	PlaceName string
	Relevance float64 // 0.0–1.0 provider confidence score
}

// RegionLookup resolves coordinates to administrative areas. The resolved
// state and county feed the classifier's geographic features.
type RegionLookup interface {
	// ReverseLookup converts coordinates to administrative area details.
	ReverseLookup(ctx context.Context, lat, lon float64) (RegionResult, error)
}

// EnrichWithRegion attempts to resolve the detection's state and county.
// If lookup is nil or the lookup fails, the detection is returned with
// Region.Source set accordingly (graceful degradation).
func EnrichWithRegion(ctx context.Context, det Detection, lookup RegionLookup, logger *slog.Logger) Detection {
	if lookup == nil {
		det.Region.Source = "skipped"
		return det
	}

	result, err := lookup.ReverseLookup(ctx, det.Geo.Lat, det.Geo.Lon)
	if err != nil {
		logger.Warn("region lookup failed",
			"detection_id", det.ID,
			"lat", det.Geo.Lat,
			"lon", det.Geo.Lon,
			"error", err,
		)
		det.Region.Source = "failed"
		return det
	}
	if result.State == "" && result.PlaceName == "" {
		det.Region.Source = "skipped"
		return det
	}

	det.Region = Region{
		State:     result.State,
		County:    result.County,
		PlaceName: result.PlaceName,
		Source:    "lookup",
		Relevance: result.Relevance,
	}
	return det
}
