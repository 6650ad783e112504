package feature

import (
	"strconv"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// Detection row keys shared by training datasets and the streaming scorer.
const (
	ColConf        = "conf"
	ColTemp        = "temp"
	ColFrp         = "frp"
	ColSpix        = "spix"
	ColTpix        = "tpix"
	ColDaytime     = "daytime"
	ColSatellite   = "sat"
	ColConfClass   = "conf_class"
	ColRegionState = "region_state"
	ColMonth       = "month"
	ColDayOfYear   = "yday"
	ColHour        = "hour"
)

// DetectionRow flattens a detection into the string-valued row form the
// schema encodes, including the date expansion of DetectedAt.
func DetectionRow(det domain.Detection) map[string]string {
	row := map[string]string{
		ColConf:        strconv.Itoa(det.Confidence),
		ColTemp:        strconv.FormatFloat(det.Temp, 'f', -1, 64),
		ColFrp:         strconv.FormatFloat(det.Frp, 'f', -1, 64),
		ColSpix:        strconv.FormatFloat(det.ScanPixelKm, 'f', -1, 64),
		ColTpix:        strconv.FormatFloat(det.TrackPixelKm, 'f', -1, 64),
		ColDaytime:     strconv.FormatBool(det.Daytime),
		ColSatellite:   det.Satellite,
		ColConfClass:   det.ConfidenceClass,
		ColRegionState: det.Region.State,
	}
	if !det.DetectedAt.IsZero() {
		row[ColMonth] = strconv.Itoa(int(det.DetectedAt.Month()))
		row[ColDayOfYear] = strconv.Itoa(det.DetectedAt.YearDay())
		row[ColHour] = strconv.Itoa(det.DetectedAt.UTC().Hour())
	}
	return row
}

// DetectionSchema builds the default schema for detection scoring. The state
// vocabulary comes from training data; pass nil to omit the region feature.
func DetectionSchema(states []string) Schema {
	cols := []Column{
		{Name: ColConf, Kind: Numeric},
		{Name: ColTemp, Kind: Numeric},
		{Name: ColFrp, Kind: Numeric},
		{Name: ColSpix, Kind: Numeric},
		{Name: ColTpix, Kind: Numeric},
		{Name: ColDaytime, Kind: Boolean},
		{Name: ColSatellite, Kind: OneHot, Categories: []string{"aqua", "terra"}},
		{Name: ColConfClass, Kind: OneHot, Categories: []string{"high", "low", "nominal", "unknown"}},
		{Name: ColMonth, Kind: Numeric},
		{Name: ColDayOfYear, Kind: Numeric},
		{Name: ColHour, Kind: Numeric},
	}
	if len(states) > 0 {
		cols = append(cols, Column{Name: ColRegionState, Kind: OneHot, Categories: states})
	}
	return Schema{Columns: cols}
}
