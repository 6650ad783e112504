// Command validate performs end-to-end data integrity checks across the mock
// data sources in the fire detection pipeline: UMD archive CSVs, the raw JSON
// fixture, and the transformed detections fixture. It verifies row counts,
// field presence, transformation correctness, and cross-source consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv-dir testdata/umd \
//	  -raw-json data/mock/fire_detections_raw.json \
//	  -detections-json data/mock/fire_detections_transformed.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2013, time.August, 17, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvDir := flag.String("csv-dir", "", "directory containing UMD active fire CSV files")
	rawJSON := flag.String("raw-json", "", "path to raw JSON fixture")
	detJSON := flag.String("detections-json", "", "path to transformed detections fixture")
	flag.Parse()

	if *csvDir == "" || *rawJSON == "" || *detJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvDir, *rawJSON, *detJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvDir, rawJSONPath, detJSONPath string) int {
	// Set a fixed clock matching genmock for ID reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2013, time.August, 18, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Fire Detection Data Integrity Validation ===")
	fmt.Println()

	csvRows, err := loadAllCSVs(csvDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load source CSVs: %v\n", err)
		return 1
	}

	rawRecords, err := loadJSON[domain.RawDetectionRecord](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	detections, err := loadJSON[domain.Detection](detJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load detections JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRawIntegrity(rawRecords, csvRows),
		validateTransformation(detections, rawRecords),
		validateDetectionFields(detections),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d source CSV, %d raw JSON, %d detections JSON\n",
		len(csvRows), len(rawRecords), len(detections))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by uppercased header name.
type csvRow struct {
	file    string
	lineNum int
	fields  map[string]string
}

func loadAllCSVs(dir string) ([]csvRow, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files in %s", dir)
	}
	sort.Strings(paths)

	var all []csvRow
	for _, path := range paths {
		rows, err := loadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		all = append(all, rows...)
	}
	return all, nil
}

func loadCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	var rows []csvRow
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[strings.ToUpper(strings.TrimSpace(h))] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{file: filepath.Base(path), lineNum: i + 2, fields: fields})
	}
	return rows, nil
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Raw Integrity ──
// Validates raw JSON records against the source CSVs.

func validateRawIntegrity(raw []domain.RawDetectionRecord, source []csvRow) *phase {
	p := &phase{name: "Phase 1: Raw Integrity (JSON vs CSV)"}

	if len(raw) != len(source) {
		p.errorf("total count: expected %d, got %d", len(source), len(raw))
	}

	rawIndex := map[string]int{}
	for i := range raw {
		rawIndex[rawKey(raw[i].SatSrc, raw[i].Lat, raw[i].Long, raw[i].Date, raw[i].GMT)]++
	}

	for _, row := range source {
		key := rawKey(row.fields["SAT_SRC"], row.fields["LAT"], row.fields["LONG"], row.fields["DATE"], row.fields["GMT"])
		if rawIndex[key] == 0 {
			p.errorf("%s line %d: CSV row not found in raw JSON (key=%s)", row.file, row.lineNum, key)
		}
	}

	for i := range raw {
		if raw[i].Lat == "" || raw[i].Long == "" {
			p.errorf("raw record %d: missing coordinates", i)
		}
		if raw[i].Date == "" {
			p.errorf("raw record %d: missing DATE", i)
		}
	}

	return p
}

func rawKey(satSrc, lat, lon, date, gmt string) string {
	return satSrc + "|" + lat + "|" + lon + "|" + date + "|" + gmt
}

// ── Phase 2: Transformation ──
// Validates that the detections fixture was correctly transformed from the
// raw records.

func validateTransformation(dets []domain.Detection, raw []domain.RawDetectionRecord) *phase {
	p := &phase{name: "Phase 2: Transformation (enrichment)"}

	// Build detection index by ID. When duplicate IDs exist (same satellite,
	// coords, date, and overpass), keep the first occurrence — matching the
	// database's ON CONFLICT DO NOTHING upsert behavior.
	detByID := map[string]*domain.Detection{}
	var dupeCount int
	for i := range dets {
		if dets[i].ID == "" {
			p.errorf("detection %d: missing ID", i)
			continue
		}
		if _, exists := detByID[dets[i].ID]; exists {
			dupeCount++
			continue
		}
		detByID[dets[i].ID] = &dets[i]
	}

	if dupeCount > 0 {
		fmt.Printf("  Note: %d duplicate ID(s) found (matching DB upsert first-wins behavior)\n", dupeCount)
	}

	seenIDs := map[string]bool{}

	for i := range raw {
		enriched, err := transformRawRecord(raw[i])
		if err != nil {
			p.errorf("raw record %d: %v", i, err)
			continue
		}

		if seenIDs[enriched.ID] {
			continue
		}
		seenIDs[enriched.ID] = true

		det, ok := detByID[enriched.ID]
		if !ok {
			p.errorf("raw record %d: ID %q not found in detections JSON", i, enriched.ID)
			continue
		}

		compareDetections(p, enriched, det)
	}

	return p
}

// transformRawRecord re-runs the ETL transformation on a raw record.
func transformRawRecord(rec domain.RawDetectionRecord) (domain.Detection, error) {
	rawJSON, err := json.Marshal(rec)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("marshal error: %w", err)
	}
	parsed, err := domain.ParseRawDetection(domain.RawEvent{
		Value:     rawJSON,
		Timestamp: baseDate,
	})
	if err != nil {
		return domain.Detection{}, fmt.Errorf("parse error: %w", err)
	}
	return domain.EnrichDetection(parsed), nil
}

func compareDetections(p *phase, enriched domain.Detection, det *domain.Detection) {
	id := enriched.ID

	if det.Satellite != enriched.Satellite {
		p.errorf("ID %s: satellite: expected %q, got %q", id, enriched.Satellite, det.Satellite)
	}
	if !floatEq(det.Geo.Lat, enriched.Geo.Lat) || !floatEq(det.Geo.Lon, enriched.Geo.Lon) {
		p.errorf("ID %s: geo mismatch: expected (%g, %g), got (%g, %g)",
			id, enriched.Geo.Lat, enriched.Geo.Lon, det.Geo.Lat, det.Geo.Lon)
	}
	if !floatEq(det.Temp, enriched.Temp) {
		p.errorf("ID %s: temp: expected %g, got %g", id, enriched.Temp, det.Temp)
	}
	if !floatEq(det.Frp, enriched.Frp) {
		p.errorf("ID %s: frp: expected %g, got %g", id, enriched.Frp, det.Frp)
	}
	if det.Confidence != enriched.Confidence {
		p.errorf("ID %s: confidence: expected %d, got %d", id, enriched.Confidence, det.Confidence)
	}
	if det.ConfidenceClass != enriched.ConfidenceClass {
		p.errorf("ID %s: confidence_class: expected %q, got %q", id, enriched.ConfidenceClass, det.ConfidenceClass)
	}
	if det.Daytime != enriched.Daytime {
		p.errorf("ID %s: daytime: expected %t, got %t", id, enriched.Daytime, det.Daytime)
	}
	if !det.DetectedAt.Equal(enriched.DetectedAt) {
		p.errorf("ID %s: detected_at: expected %s, got %s",
			id, enriched.DetectedAt.Format(time.RFC3339), det.DetectedAt.Format(time.RFC3339))
	}
	if !det.TimeBucket.Equal(enriched.TimeBucket) {
		p.errorf("ID %s: time_bucket: expected %s, got %s",
			id, enriched.TimeBucket.Format(time.RFC3339), det.TimeBucket.Format(time.RFC3339))
	}
}

// ── Phase 3: Detection Fields ──
// Validates that detection field values satisfy the sink contract.

var (
	validSatellites = map[string]bool{"terra": true, "aqua": true}
	validClasses    = map[string]bool{"low": true, "nominal": true, "high": true, "unknown": true}
)

func validateDetectionFields(dets []domain.Detection) *phase {
	p := &phase{name: "Phase 3: Detection Fields (sink contract)"}
	for i := range dets {
		checkDetectionRecord(p, i, &dets[i])
	}
	return p
}

func checkDetectionRecord(p *phase, i int, d *domain.Detection) {
	pf := func(format string, args ...any) {
		p.errorf("record %d (ID %s): "+format, append([]any{i, d.ID}, args...)...)
	}

	if d.ID == "" {
		pf("id is empty")
	} else if d.Satellite != "" && !strings.HasPrefix(d.ID, d.Satellite+"-") {
		pf("id %q doesn't start with satellite prefix %q-", d.ID, d.Satellite)
	}

	if d.Satellite != "" && !validSatellites[d.Satellite] {
		pf("satellite %q not in {terra, aqua}", d.Satellite)
	}
	if !validClasses[d.ConfidenceClass] {
		pf("confidence_class %q not in {low, nominal, high, unknown}", d.ConfidenceClass)
	}
	if d.Confidence < -1 || d.Confidence > 100 {
		pf("confidence %d outside -1..100", d.Confidence)
	}
	if d.Confidence == -1 && d.ConfidenceClass != "unknown" {
		pf("confidence is UNK but class is %q", d.ConfidenceClass)
	}

	if d.Geo.Lat == 0 && d.Geo.Lon == 0 {
		pf("geo coordinates are both zero")
	}
	if d.Geo.Lat < -90 || d.Geo.Lat > 90 {
		pf("lat %g outside -90..90", d.Geo.Lat)
	}
	if d.Geo.Lon < -180 || d.Geo.Lon > 180 {
		pf("lon %g outside -180..180", d.Geo.Lon)
	}

	if d.DetectedAt.IsZero() {
		pf("detected_at is zero")
	}
	if d.TimeBucket.IsZero() {
		pf("time_bucket is zero")
	} else if !d.TimeBucket.Equal(d.TimeBucket.Truncate(time.Hour)) {
		pf("time_bucket %s is not hour-aligned", d.TimeBucket.Format(time.RFC3339))
	}
	if d.ProcessedAt.IsZero() {
		pf("processed_at is zero")
	}
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
