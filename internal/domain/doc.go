// Package domain models satellite active-fire detection data.
//
// # Data Source
//
// Detections originate from the University of Maryland (UMD) active fire
// product, built from the MODIS sensors aboard the Terra and Aqua satellites.
// The upstream collector service fetches the per-year archive CSVs, parses
// them, and publishes each row as flat JSON to the Kafka source topic.
//
// # Active Fire Data Conventions
//
// Coordinate format:
//
//	WGS-84 decimal degrees in the "LAT" and "LONG" columns. Detections are
//	pixel centroids, not fire perimeters; a single fire typically produces
//	many detections across days.
//
// Time format:
//
//	"DATE" is the acquisition date (YYYY-MM-DD). "GMT" is the overpass time
//	in HHMM 24-hour UTC notation, e.g. "1830" = 18:30 UTC. Three-digit
//	values are zero-padded: "930" → "0930". Combined to produce a full UTC
//	acquisition time; an unparseable GMT falls back to midnight of DATE.
//
// Measurement columns:
//
//	TEMP    brightness temperature of the detection pixel, Kelvin.
//	SPIX    pixel size along scan, km.
//	TPIX    pixel size along track, km.
//	FRP     fire radiative power, megawatts. Absent in early archive years.
//	CONF    detection confidence, integer 0–100.
//	SAT_SRC "T" for Terra, "A" for Aqua.
//
// Unknown values:
//
//	"UNK" is the archive sentinel for unknown confidence. It is parsed as -1
//	to keep it distinct from a measured confidence of 0. Empty measurement
//	strings are treated as zero (unmeasured).
//
// Confidence classification:
//
//	Derived from the confidence value using the MODIS fire product's own
//	class boundaries:
//
//	  <30 low | 30–80 nominal | >80 high | unknown when CONF is "UNK"
//
// Day/night flag:
//
//	Approximated from local solar time (UTC hour + longitude/15°): overpasses
//	between 06:00 and 18:00 local solar are flagged as daytime. See
//	[deriveDayNight].
//
// # Labeling
//
// A detection is a thermal anomaly of any origin: forest fire, agricultural
// burn, gas flare, volcano. Detections falling inside a state-submitted
// forest-fire perimeter polygon whose active window covers the acquisition
// date are labeled as forest fires; everything else is a negative example.
// Labeling is delegated to a [PerimeterMatcher] so the service can match
// against either an in-memory GeoJSON index or a spatial database.
//
// # ID Generation
//
// Detection IDs are deterministic SHA-256 hashes of satellite|lat|lon|date|gmt.
// This enables idempotent upserts downstream (ON CONFLICT DO NOTHING) and
// replay safety without distributed coordination. See [generateID].
package domain
