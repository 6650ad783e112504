// Package geo provides the forest-fire perimeter model and an in-memory
// point-in-polygon matcher over GeoJSON perimeter files.
package geo

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Perimeter is a forest-fire boundary polygon submitted by a state agency,
// with the window during which the fire was active.
type Perimeter struct {
	ID        string
	FireName  string
	Agency    string
	State     string
	AreaAcres float64
	Start     time.Time
	End       time.Time

	geometry orb.MultiPolygon
	bound    orb.Bound
}

// LoadGeoJSON reads a GeoJSON FeatureCollection of fire perimeters from disk.
// Expected feature properties: id, fire_name, agency, state, acres,
// start_date, end_date (dates as YYYY-MM-DD). Property types are tolerated
// loosely because agency exports mix strings and numbers.
func LoadGeoJSON(path string) ([]Perimeter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read perimeter file: %w", err)
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON decodes perimeters from GeoJSON FeatureCollection bytes.
func ParseGeoJSON(data []byte) ([]Perimeter, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode perimeter geojson: %w", err)
	}

	perimeters := make([]Perimeter, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, err := featureToPerimeter(f)
		if err != nil {
			return nil, fmt.Errorf("perimeter feature %d: %w", i, err)
		}
		perimeters = append(perimeters, p)
	}
	return perimeters, nil
}

func featureToPerimeter(f *geojson.Feature) (Perimeter, error) {
	var mp orb.MultiPolygon
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		mp = g
	default:
		return Perimeter{}, fmt.Errorf("unsupported geometry type %q", f.Geometry.GeoJSONType())
	}

	p := Perimeter{
		ID:        propString(f, "id"),
		FireName:  propString(f, "fire_name"),
		Agency:    propString(f, "agency"),
		State:     propString(f, "state"),
		AreaAcres: propFloat(f, "acres"),
		geometry:  mp,
		bound:     mp.Bound(),
	}
	if p.ID == "" {
		return Perimeter{}, fmt.Errorf("missing id property")
	}

	var err error
	if p.Start, err = propDate(f, "start_date"); err != nil {
		return Perimeter{}, err
	}
	if p.End, err = propDate(f, "end_date"); err != nil {
		return Perimeter{}, err
	}
	return p, nil
}

func propString(f *geojson.Feature, key string) string {
	switch v := f.Properties[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func propFloat(f *geojson.Feature, key string) float64 {
	switch v := f.Properties[key].(type) {
	case float64:
		return v
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func propDate(f *geojson.Feature, key string) (time.Time, error) {
	s := propString(f, key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("property %q: %w", key, err)
	}
	return t, nil
}
