package domain

import (
	"context"
	"time"
)

// RawDetectionRecord represents the flat JSON structure produced by the
// collector from the UMD active fire archive CSVs. All fields arrive as
// strings; parsing and normalization happen in ParseRawDetection.
type RawDetectionRecord struct {
	Lat    string `json:"LAT"`
	Long   string `json:"LONG"`
	Date   string `json:"DATE"`    // acquisition date, YYYY-MM-DD
	GMT    string `json:"GMT"`     // overpass time, HHMM 24-hour UTC
	Temp   string `json:"TEMP"`    // brightness temperature, Kelvin
	Spix   string `json:"SPIX"`    // pixel size along scan, km
	Tpix   string `json:"TPIX"`    // pixel size along track, km
	Src    string `json:"SRC"`     // processing source, e.g. "gsfc_drl"
	SatSrc string `json:"SAT_SRC"` // "T" (Terra) or "A" (Aqua)
	Conf   string `json:"CONF"`    // detection confidence, 0-100 or "UNK"
	Frp    string `json:"FRP"`     // fire radiative power, MW
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Region holds administrative area enrichment for a detection, used as
// geographic model features.
type Region struct {
	State     string  `json:"state,omitempty"`
	County    string  `json:"county,omitempty"`
	PlaceName string  `json:"place_name,omitempty"`
	Source    string  `json:"source,omitempty"` // "lookup", "failed", "skipped"
	Relevance float64 `json:"relevance,omitempty"`
}

// Label records the outcome of matching a detection against forest-fire
// perimeter polygons.
type Label struct {
	ForestFire  bool   `json:"forest_fire"`
	PerimeterID string `json:"perimeter_id,omitempty"`
	FireName    string `json:"fire_name,omitempty"`
	Source      string `json:"source"` // "matched", "clear", "failed", "skipped"
}

// Score holds classifier output for a detection.
type Score struct {
	Probability  float64 `json:"probability"`
	ForestFire   bool    `json:"forest_fire"`
	ModelVersion string  `json:"model_version"`
	Threshold    float64 `json:"threshold"`
}

// Detection is the domain-rich representation after parsing and enrichment.
type Detection struct {
	ID              string    `json:"id"`
	Satellite       string    `json:"satellite"` // "terra" or "aqua"
	Source          string    `json:"source,omitempty"`
	Geo             Geo       `json:"geo"`
	DetectedAt      time.Time `json:"detected_at"`
	Temp            float64   `json:"temp"`
	ScanPixelKm     float64   `json:"scan_pixel_km,omitempty"`
	TrackPixelKm    float64   `json:"track_pixel_km,omitempty"`
	Frp             float64   `json:"frp,omitempty"`
	Confidence      int       `json:"confidence"` // 0-100, -1 when unknown
	ConfidenceClass string    `json:"confidence_class,omitempty"`
	Daytime         bool      `json:"daytime"`
	TimeBucket      time.Time `json:"time_bucket,omitempty"`

	Region Region `json:"region,omitempty"`
	Label  *Label `json:"label,omitempty"`
	Score  *Score `json:"score,omitempty"`

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}
