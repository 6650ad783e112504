package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseRawDetection deserializes a RawEvent's value into a Detection.
// It expects the flat CSV-style JSON produced by the collector service.
func ParseRawDetection(raw RawEvent) (Detection, error) {
	var rec RawDetectionRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Detection{}, fmt.Errorf("parse raw detection: %w", err)
	}

	lat := parseFloatOrZero(rec.Lat)
	lon := parseFloatOrZero(rec.Long)
	detectedAt := parseAcquisitionTime(raw.Timestamp, rec.Date, rec.GMT)

	return Detection{
		ID:           generateID(rec.SatSrc, lat, lon, rec.Date, rec.GMT),
		Satellite:    rec.SatSrc,
		Source:       strings.TrimSpace(rec.Src),
		Geo:          Geo{Lat: lat, Lon: lon},
		DetectedAt:   detectedAt,
		Temp:         parseFloatOrZero(rec.Temp),
		ScanPixelKm:  parseFloatOrZero(rec.Spix),
		TrackPixelKm: parseFloatOrZero(rec.Tpix),
		Frp:          parseFloatOrZero(rec.Frp),
		Confidence:   parseConfidence(rec.Conf),

		RawPayload: raw.Value,
	}, nil
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseConfidence parses the CONF column. Returns -1 for the "UNK" sentinel
// and for unparseable values, keeping unknown distinct from a measured 0.
// Out-of-range values are clamped to 0-100.
func parseConfidence(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "UNK") {
		return -1
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1
	}
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(math.Round(v))
}

// parseAcquisitionTime combines the DATE column with the GMT overpass time
// (e.g. "1830" → 18:30 UTC). An unparseable DATE falls back to the message
// timestamp; an unparseable GMT falls back to midnight of the date.
func parseAcquisitionTime(msgTime time.Time, date, gmt string) time.Time {
	base, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		base = msgTime.UTC().Truncate(24 * time.Hour)
	}

	gmt = strings.TrimSpace(gmt)
	if len(gmt) < 3 {
		return base
	}
	if len(gmt) == 3 {
		gmt = "0" + gmt
	}

	hour, errH := strconv.Atoi(gmt[:2])
	mins, errM := strconv.Atoi(gmt[2:])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || mins < 0 || mins > 59 {
		return base
	}

	return time.Date(
		base.Year(), base.Month(), base.Day(),
		hour, mins, 0, 0, time.UTC,
	)
}

// generateID produces a deterministic ID from the detection's key fields.
// Deterministic IDs enable idempotent upserts (ON CONFLICT DO NOTHING) and
// replay safety — reprocessing the same raw event produces the same ID.
func generateID(satSrc string, lat, lon float64, date, gmt string) string {
	input := fmt.Sprintf("%s|%.4f|%.4f|%s|%s", satSrc, lat, lon, date, gmt)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	switch normalizeSatellite(satSrc) {
	case "terra":
		return "terra-" + short
	case "aqua":
		return "aqua-" + short
	}
	return "det-" + short
}

// EnrichDetection normalizes and classifies a parsed detection. It resolves
// the satellite name, derives the confidence class and day/night flag,
// assigns an hourly time bucket, and stamps the processing time.
func EnrichDetection(det Detection) Detection {
	det.Satellite = normalizeSatellite(det.Satellite)
	det.ConfidenceClass = deriveConfidenceClass(det.Confidence)
	det.Daytime = deriveDayNight(det.DetectedAt, det.Geo.Lon)
	det.TimeBucket = deriveTimeBucket(det.DetectedAt)
	det.ProcessedAt = clock.Now()
	return det
}

// normalizeSatellite maps the archive's SAT_SRC codes to satellite names.
// Accepts "T"/"A" and already-normalized names; anything else is unknown.
func normalizeSatellite(value string) string {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "T", "TERRA":
		return "terra"
	case "A", "AQUA":
		return "aqua"
	default:
		return ""
	}
}

// deriveConfidenceClass maps a confidence value to the MODIS fire product's
// class boundaries: <30 low, 30-80 nominal, >80 high. Returns "unknown" for
// the -1 sentinel.
func deriveConfidenceClass(conf int) string {
	switch {
	case conf < 0:
		return "unknown"
	case conf < 30:
		return "low"
	case conf <= 80:
		return "nominal"
	default:
		return "high"
	}
}

// deriveDayNight approximates the MODIS day/night flag from local solar time:
// UTC hour plus one hour per 15 degrees of longitude. Overpasses between
// 06:00 and 18:00 local solar count as daytime.
func deriveDayNight(t time.Time, lon float64) bool {
	if t.IsZero() {
		return false
	}
	solar := float64(t.UTC().Hour()) + float64(t.UTC().Minute())/60 + lon/15
	solar = math.Mod(solar+24, 24)
	return solar >= 6 && solar < 18
}

// deriveTimeBucket truncates the detection time to the hour in UTC.
// Returns zero time if the input is zero.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC().Truncate(time.Hour)
}
