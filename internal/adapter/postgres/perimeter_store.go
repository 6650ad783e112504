package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// PerimeterStore matches detection coordinates against fire perimeter
// polygons in PostGIS. It implements domain.PerimeterMatcher.
//
// The perimeters table is loaded from agency GIS exports with columns
// (id, fire_name, agency, area_acres, start_date, end_date, geom) where geom
// is a 4326 MultiPolygon.
type PerimeterStore struct {
	db        *gorm.DB
	dateSlack time.Duration
}

// NewPerimeterStore creates a PerimeterStore. dateSlack widens each
// perimeter's active window on both ends, since agency start and end dates
// trail the satellite observations by a day or more.
func NewPerimeterStore(db *gorm.DB, dateSlack time.Duration) *PerimeterStore {
	return &PerimeterStore{db: db, dateSlack: dateSlack}
}

type perimeterRow struct {
	ID        string
	FireName  string
	Agency    string
	AreaAcres float64
}

// Match returns the perimeter containing the point whose active window covers
// the date. Among overlapping perimeters the one whose window fits the date
// most tightly wins, with the larger fire breaking ties. Perimeters with no
// recorded dates match any date.
func (s *PerimeterStore) Match(ctx context.Context, geo domain.Geo, date time.Time) (domain.PerimeterMatch, bool, error) {
	slackDays := int(s.dateSlack.Hours() / 24)
	day := date.UTC().Format("2006-01-02")

	// date - date yields integer days in Postgres, so the window test and the
	// tightness ranking both work in whole days.
	var rows []perimeterRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, fire_name, agency, area_acres
		FROM perimeters
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint(?, ?), 4326))
		  AND (start_date IS NULL OR start_date - ?::int <= ?::date)
		  AND (end_date IS NULL OR end_date + ?::int >= ?::date)
		ORDER BY
		  (start_date IS NULL) ASC,
		  GREATEST(COALESCE(start_date - ?::date, 0), COALESCE(?::date - end_date, 0), 0) ASC,
		  area_acres DESC
		LIMIT 1`,
		geo.Lon, geo.Lat,
		slackDays, day,
		slackDays, day,
		day, day,
	).Scan(&rows).Error
	if err != nil {
		return domain.PerimeterMatch{}, false, fmt.Errorf("perimeter query: %w", err)
	}
	if len(rows) == 0 {
		return domain.PerimeterMatch{}, false, nil
	}

	r := rows[0]
	return domain.PerimeterMatch{
		PerimeterID: r.ID,
		FireName:    r.FireName,
		Agency:      r.Agency,
		AreaAcres:   r.AreaAcres,
	}, true, nil
}
