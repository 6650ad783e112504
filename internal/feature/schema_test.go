package feature

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

func TestSchema_VectorizeRow(t *testing.T) {
	schema := Schema{Columns: []Column{
		{Name: "conf", Kind: Numeric},
		{Name: "daytime", Kind: Boolean},
		{Name: "sat", Kind: OneHot, Categories: []string{"aqua", "terra"}},
	}}

	t.Run("names and width", func(t *testing.T) {
		assert.Equal(t, 4, schema.Width())
		assert.Equal(t, []string{"conf", "daytime", "sat=aqua", "sat=terra"}, schema.Names())
	})

	t.Run("complete row", func(t *testing.T) {
		vec := schema.VectorizeRow(map[string]string{
			"conf": "85", "daytime": "true", "sat": "terra",
		})
		assert.Equal(t, []float64{85, 1, 0, 1}, vec)
	})

	t.Run("unknown category encodes as zeros", func(t *testing.T) {
		vec := schema.VectorizeRow(map[string]string{
			"conf": "40", "daytime": "false", "sat": "viirs",
		})
		assert.Equal(t, []float64{40, 0, 0, 0}, vec)
	})

	t.Run("missing values are zero", func(t *testing.T) {
		vec := schema.VectorizeRow(map[string]string{})
		assert.Equal(t, []float64{0, 0, 0, 0}, vec)
	})

	t.Run("unparseable numeric is zero", func(t *testing.T) {
		vec := schema.VectorizeRow(map[string]string{"conf": "UNK"})
		assert.Equal(t, 0.0, vec[0])
	})
}

func TestSchema_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, DetectionSchema([]string{"CA", "ID"}).Validate())
	})
	t.Run("empty", func(t *testing.T) {
		assert.Error(t, Schema{}.Validate())
	})
	t.Run("one hot without categories", func(t *testing.T) {
		err := Schema{Columns: []Column{{Name: "sat", Kind: OneHot}}}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "without categories")
	})
	t.Run("categories on numeric", func(t *testing.T) {
		err := Schema{Columns: []Column{{Name: "conf", Kind: Numeric, Categories: []string{"x"}}}}.Validate()
		assert.Error(t, err)
	})
	t.Run("unknown kind", func(t *testing.T) {
		err := Schema{Columns: []Column{{Name: "conf", Kind: "embedding"}}}.Validate()
		assert.Error(t, err)
	})
}

func TestDetectionRow(t *testing.T) {
	det := domain.Detection{
		Satellite:       "terra",
		Geo:             domain.Geo{Lat: 40.2, Lon: -121.5},
		DetectedAt:      time.Date(2013, 8, 17, 18, 30, 0, 0, time.UTC),
		Temp:            330.1,
		Frp:             45.2,
		ScanPixelKm:     1.1,
		TrackPixelKm:    1.0,
		Confidence:      92,
		ConfidenceClass: "high",
		Daytime:         true,
		Region:          domain.Region{State: "CA", Source: "lookup"},
	}

	row := DetectionRow(det)

	want := map[string]string{
		ColConf: "92", ColTemp: "330.1", ColFrp: "45.2",
		ColSpix: "1.1", ColTpix: "1", ColDaytime: "true",
		ColSatellite: "terra", ColConfClass: "high", ColRegionState: "CA",
		ColMonth: "8", ColDayOfYear: "229", ColHour: "18",
	}
	if diff := cmp.Diff(want, row); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}

	schema := DetectionSchema([]string{"CA", "ID"})
	vec := schema.VectorizeRow(row)
	require.Len(t, vec, schema.Width())
}

func TestDetectionRow_ZeroTimeOmitsDateColumns(t *testing.T) {
	row := DetectionRow(domain.Detection{Satellite: "aqua"})
	_, ok := row[ColMonth]
	assert.False(t, ok)
}

func TestInferCategories(t *testing.T) {
	rows := []map[string]string{
		{"region_state": "ID"},
		{"region_state": "CA"},
		{"region_state": ""},
		{"region_state": "CA"},
	}
	assert.Equal(t, []string{"CA", "ID"}, InferCategories(rows, "region_state"))
}

func TestReadCSV(t *testing.T) {
	csvData := `date,conf,temp,sat,fire_bool
2013-08-17,92,330.1,terra,true
2013-08-18,15,301.0,aqua,false
`
	ds, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "92", ds.Rows[0]["conf"])

	labels, err := ds.Labels("fire_bool")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, labels)

	dates, err := ds.Dates("date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, 8, 17, 0, 0, 0, 0, time.UTC), dates[0])

	t.Run("missing label column", func(t *testing.T) {
		_, err := ds.Labels("missing")
		assert.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		bad, err := ReadCSV(strings.NewReader("date\n08/17/2013\n"))
		require.NoError(t, err)
		_, err = bad.Dates("date")
		assert.Error(t, err)
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("date,conf\n"))
		assert.Error(t, err)
	})
}
