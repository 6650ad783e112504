package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRecordJSON = `{"LAT":"40.1997","LONG":"-121.5075","DATE":"2013-08-17","GMT":"1830","TEMP":"330.1","SPIX":"1.1","TPIX":"1.0","SRC":"gsfc_drl","SAT_SRC":"T","CONF":"92","FRP":"45.2"}`

func TestParseRawDetection(t *testing.T) {
	msgTime := time.Date(2013, 8, 17, 0, 0, 0, 0, time.UTC)

	t.Run("complete record", func(t *testing.T) {
		data := []byte(testRecordJSON)
		raw := RawEvent{Value: data, Timestamp: msgTime}
		result, err := ParseRawDetection(raw)

		require.NoError(t, err)
		assert.Equal(t, 40.1997, result.Geo.Lat)
		assert.Equal(t, -121.5075, result.Geo.Lon)
		assert.Equal(t, 330.1, result.Temp)
		assert.Equal(t, 1.1, result.ScanPixelKm)
		assert.Equal(t, 1.0, result.TrackPixelKm)
		assert.Equal(t, 45.2, result.Frp)
		assert.Equal(t, 92, result.Confidence)
		assert.Equal(t, "gsfc_drl", result.Source)
		assert.Equal(t, time.Date(2013, 8, 17, 18, 30, 0, 0, time.UTC), result.DetectedAt)
		assert.NotEmpty(t, result.ID)
		assert.True(t, strings.HasPrefix(result.ID, "terra-"))
		assert.Equal(t, data, result.RawPayload)
	})

	t.Run("aqua record", func(t *testing.T) {
		data := []byte(`{"LAT":"44.05","LONG":"-114.20","DATE":"2012-07-04","GMT":"0945","TEMP":"315.7","SAT_SRC":"A","CONF":"55"}`)
		raw := RawEvent{Value: data, Timestamp: msgTime}
		result, err := ParseRawDetection(raw)

		require.NoError(t, err)
		assert.Equal(t, 55, result.Confidence)
		assert.True(t, strings.HasPrefix(result.ID, "aqua-"))
		assert.Equal(t, time.Date(2012, 7, 4, 9, 45, 0, 0, time.UTC), result.DetectedAt)
	})

	t.Run("UNK confidence", func(t *testing.T) {
		data := []byte(`{"LAT":"44.05","LONG":"-114.20","DATE":"2012-07-04","GMT":"0945","SAT_SRC":"A","CONF":"UNK"}`)
		raw := RawEvent{Value: data, Timestamp: msgTime}
		result, err := ParseRawDetection(raw)

		require.NoError(t, err)
		assert.Equal(t, -1, result.Confidence)
	})

	t.Run("three digit GMT is zero padded", func(t *testing.T) {
		data := []byte(`{"LAT":"44.05","LONG":"-114.20","DATE":"2012-07-04","GMT":"930","SAT_SRC":"A","CONF":"40"}`)
		raw := RawEvent{Value: data, Timestamp: msgTime}
		result, err := ParseRawDetection(raw)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2012, 7, 4, 9, 30, 0, 0, time.UTC), result.DetectedAt)
	})

	t.Run("invalid GMT falls back to midnight", func(t *testing.T) {
		data := []byte(`{"LAT":"44.05","LONG":"-114.20","DATE":"2012-07-04","GMT":"9999","SAT_SRC":"A","CONF":"40"}`)
		raw := RawEvent{Value: data, Timestamp: msgTime}
		result, err := ParseRawDetection(raw)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2012, 7, 4, 0, 0, 0, 0, time.UTC), result.DetectedAt)
	})

	t.Run("missing date falls back to message timestamp", func(t *testing.T) {
		data := []byte(`{"LAT":"44.05","LONG":"-114.20","GMT":"1205","SAT_SRC":"A","CONF":"40"}`)
		raw := RawEvent{Value: data, Timestamp: time.Date(2012, 7, 9, 3, 12, 0, 0, time.UTC)}
		result, err := ParseRawDetection(raw)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2012, 7, 9, 12, 5, 0, 0, time.UTC), result.DetectedAt)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		raw := RawEvent{Value: []byte("{invalid json")}
		_, err := ParseRawDetection(raw)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw detection")
	})

	t.Run("deterministic IDs", func(t *testing.T) {
		raw := RawEvent{Value: []byte(testRecordJSON), Timestamp: msgTime}
		first, err := ParseRawDetection(raw)
		require.NoError(t, err)
		second, err := ParseRawDetection(raw)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain value", "72", 72},
		{"zero", "0", 0},
		{"empty", "", -1},
		{"UNK sentinel", "UNK", -1},
		{"lowercase unk", "unk", -1},
		{"garbage", "n/a", -1},
		{"clamped high", "140", 100},
		{"clamped low", "-5", 0},
		{"decimal rounds", "81.6", 82},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseConfidence(tt.input))
		})
	}
}

func TestEnrichDetection(t *testing.T) {
	frozen := time.Date(2013, 8, 18, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	t.Run("terra daytime overpass", func(t *testing.T) {
		det := Detection{
			Satellite:  "T",
			Geo:        Geo{Lat: 40.2, Lon: -121.5},
			DetectedAt: time.Date(2013, 8, 17, 18, 30, 0, 0, time.UTC),
			Confidence: 92,
		}

		enriched := EnrichDetection(det)

		assert.Equal(t, "terra", enriched.Satellite)
		assert.Equal(t, "high", enriched.ConfidenceClass)
		// 18:30 UTC at -121.5° is ~10:24 local solar.
		assert.True(t, enriched.Daytime)
		assert.Equal(t, time.Date(2013, 8, 17, 18, 0, 0, 0, time.UTC), enriched.TimeBucket)
		assert.Equal(t, frozen, enriched.ProcessedAt)
	})

	t.Run("aqua night overpass", func(t *testing.T) {
		det := Detection{
			Satellite:  "A",
			Geo:        Geo{Lat: 44.0, Lon: -114.2},
			DetectedAt: time.Date(2012, 7, 4, 9, 45, 0, 0, time.UTC),
			Confidence: 25,
		}

		enriched := EnrichDetection(det)

		assert.Equal(t, "aqua", enriched.Satellite)
		assert.Equal(t, "low", enriched.ConfidenceClass)
		// 09:45 UTC at -114.2° is ~02:08 local solar.
		assert.False(t, enriched.Daytime)
	})

	t.Run("unknown satellite code", func(t *testing.T) {
		enriched := EnrichDetection(Detection{Satellite: "X", Confidence: 50})
		assert.Empty(t, enriched.Satellite)
		assert.Equal(t, "nominal", enriched.ConfidenceClass)
	})

	t.Run("zero detection time", func(t *testing.T) {
		enriched := EnrichDetection(Detection{Satellite: "T", Confidence: -1})
		assert.True(t, enriched.TimeBucket.IsZero())
		assert.False(t, enriched.Daytime)
		assert.Equal(t, "unknown", enriched.ConfidenceClass)
	})
}

func TestDeriveConfidenceClass(t *testing.T) {
	tests := []struct {
		conf int
		want string
	}{
		{-1, "unknown"},
		{0, "low"},
		{29, "low"},
		{30, "nominal"},
		{80, "nominal"},
		{81, "high"},
		{100, "high"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deriveConfidenceClass(tt.conf), "conf=%d", tt.conf)
	}
}

func TestDeriveDayNight(t *testing.T) {
	t.Run("noon UTC at prime meridian", func(t *testing.T) {
		assert.True(t, deriveDayNight(time.Date(2013, 8, 17, 12, 0, 0, 0, time.UTC), 0))
	})
	t.Run("midnight UTC at prime meridian", func(t *testing.T) {
		assert.False(t, deriveDayNight(time.Date(2013, 8, 17, 0, 0, 0, 0, time.UTC), 0))
	})
	t.Run("wraps across the antimeridian", func(t *testing.T) {
		// 01:00 UTC at 180° east is 13:00 local solar.
		assert.True(t, deriveDayNight(time.Date(2013, 8, 17, 1, 0, 0, 0, time.UTC), 180))
	})
}
