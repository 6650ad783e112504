package geo

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// DefaultDateSlack widens a perimeter's active window on both ends to absorb
// agency submission lag: perimeters are often filed days after ignition and
// closed days before the last hotspots fade.
const DefaultDateSlack = 72 * time.Hour

// Index is an in-memory domain.PerimeterMatcher over loaded perimeters.
// The perimeter slice is fixed at construction, so matching needs no locking
// and is safe for concurrent use.
type Index struct {
	perimeters []Perimeter
	dateSlack  time.Duration
}

// NewIndex builds a matcher over the given perimeters. A non-positive
// dateSlack falls back to DefaultDateSlack.
func NewIndex(perimeters []Perimeter, dateSlack time.Duration) *Index {
	if dateSlack <= 0 {
		dateSlack = DefaultDateSlack
	}
	return &Index{perimeters: perimeters, dateSlack: dateSlack}
}

// Len reports the number of indexed perimeters.
func (idx *Index) Len() int { return len(idx.perimeters) }

// Match returns the perimeter containing the point whose active window covers
// the date. When several perimeters contain the point (complex fires get
// re-submitted under new incident IDs), the one whose window sits closest to
// the date wins, ties broken by largest area.
func (idx *Index) Match(_ context.Context, geo domain.Geo, date time.Time) (domain.PerimeterMatch, bool, error) {
	pt := orb.Point{geo.Lon, geo.Lat}

	var best *Perimeter
	var bestDistance time.Duration
	for i := range idx.perimeters {
		p := &idx.perimeters[i]
		if !p.bound.Contains(pt) {
			continue
		}
		if !idx.windowCovers(p, date) {
			continue
		}
		if !planar.MultiPolygonContains(p.geometry, pt) {
			continue
		}

		distance := idx.windowDistance(p, date)
		if best == nil || distance < bestDistance ||
			(distance == bestDistance && p.AreaAcres > best.AreaAcres) {
			best = p
			bestDistance = distance
		}
	}

	if best == nil {
		return domain.PerimeterMatch{}, false, nil
	}
	return domain.PerimeterMatch{
		PerimeterID: best.ID,
		FireName:    best.FireName,
		Agency:      best.Agency,
		AreaAcres:   best.AreaAcres,
	}, true, nil
}

// windowCovers reports whether the date falls within the perimeter's active
// window widened by the slack. Perimeters without dates match any date.
func (idx *Index) windowCovers(p *Perimeter, date time.Time) bool {
	if date.IsZero() {
		return true
	}
	if !p.Start.IsZero() && date.Before(p.Start.Add(-idx.dateSlack)) {
		return false
	}
	if !p.End.IsZero() && date.After(p.End.Add(idx.dateSlack)) {
		return false
	}
	return true
}

// windowDistance is zero when the date lies inside the unwidened window,
// otherwise the gap to the nearest end.
func (idx *Index) windowDistance(p *Perimeter, date time.Time) time.Duration {
	if date.IsZero() || (p.Start.IsZero() && p.End.IsZero()) {
		return 0
	}
	if !p.Start.IsZero() && date.Before(p.Start) {
		return p.Start.Sub(date)
	}
	if !p.End.IsZero() && date.After(p.End) {
		return date.Sub(p.End)
	}
	return 0
}
