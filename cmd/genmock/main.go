// Command genmock reads UMD MODIS active fire archive CSV files and generates
// mock data fixtures for the ETL test suites. It uses the actual domain
// package to ensure the transformed output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv-dir testdata/umd \
//	  -raw-out data/mock/fire_detections_raw.json \
//	  -detections-out data/mock/fire_detections_transformed.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2013, time.August, 17, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvDir := flag.String("csv-dir", "", "directory containing UMD active fire CSV files")
	rawOut := flag.String("raw-out", "", "output path for raw JSON fixture")
	detOut := flag.String("detections-out", "", "output path for transformed detections fixture")
	flag.Parse()

	if *csvDir == "" || *rawOut == "" || *detOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv-dir, -raw-out, -detections-out")
	}

	paths, err := filepath.Glob(filepath.Join(*csvDir, "*.csv"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no CSV files in %s", *csvDir)
	}
	sort.Strings(paths)

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2013, time.August, 18, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	var rawRecords []domain.RawDetectionRecord //nolint:prealloc // size depends on CSV file contents
	var detections []domain.Detection          //nolint:prealloc // size depends on CSV file contents

	for _, path := range paths {
		recs, dets, err := processCSV(path)
		if err != nil {
			return fmt.Errorf("processing %s: %w", filepath.Base(path), err)
		}
		rawRecords = append(rawRecords, recs...)
		detections = append(detections, dets...)
		log.Printf("%s: %d records", filepath.Base(path), len(recs))
	}

	log.Printf("total: %d records", len(rawRecords))

	if err := writeJSON(*rawOut, rawRecords); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*detOut, detections); err != nil {
		return fmt.Errorf("writing detections fixture: %w", err)
	}
	log.Printf("wrote detections fixture: %s", *detOut)

	printStats(detections)
	return nil
}

func processCSV(path string) ([]domain.RawDetectionRecord, []domain.Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	var recs []domain.RawDetectionRecord
	var dets []domain.Detection

	for _, row := range rows[1:] {
		if len(row) < len(header) {
			continue
		}

		rec := domain.RawDetectionRecord{
			Lat:    get(row, colIdx, "LAT"),
			Long:   get(row, colIdx, "LONG"),
			Date:   get(row, colIdx, "DATE"),
			GMT:    get(row, colIdx, "GMT"),
			Temp:   get(row, colIdx, "TEMP"),
			Spix:   get(row, colIdx, "SPIX"),
			Tpix:   get(row, colIdx, "TPIX"),
			Src:    get(row, colIdx, "SRC"),
			SatSrc: get(row, colIdx, "SAT_SRC"),
			Conf:   get(row, colIdx, "CONF"),
			Frp:    get(row, colIdx, "FRP"),
		}
		recs = append(recs, rec)

		// Run the actual ETL parse and enrichment.
		rawJSON, err := json.Marshal(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal record: %w", err)
		}

		parsed, err := domain.ParseRawDetection(domain.RawEvent{
			Value:     rawJSON,
			Timestamp: baseDate,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("parse raw detection: %w", err)
		}

		dets = append(dets, domain.EnrichDetection(parsed))
	}

	return recs, dets, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	satelliteCounts map[string]int
	classCounts     map[string]int
	dayCount        int
	nightCount      int
	unknownConf     int
	highConf        int
	frpPresent      int
}

func collectStats(dets []domain.Detection) statsResult {
	s := statsResult{
		satelliteCounts: map[string]int{},
		classCounts:     map[string]int{},
	}
	for i := range dets {
		d := &dets[i]
		s.satelliteCounts[d.Satellite]++
		s.classCounts[d.ConfidenceClass]++
		if d.Daytime {
			s.dayCount++
		} else {
			s.nightCount++
		}
		if d.Confidence < 0 {
			s.unknownConf++
		}
		if d.Confidence > 80 {
			s.highConf++
		}
		if d.Frp > 0 {
			s.frpPresent++
		}
	}
	return s
}

func printStats(dets []domain.Detection) {
	stats := collectStats(dets)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(dets))
	fmt.Printf("By satellite: terra=%d, aqua=%d\n",
		stats.satelliteCounts["terra"], stats.satelliteCounts["aqua"])
	fmt.Printf("By confidence class: low=%d, nominal=%d, high=%d, unknown=%d\n",
		stats.classCounts["low"], stats.classCounts["nominal"],
		stats.classCounts["high"], stats.classCounts["unknown"])
	fmt.Printf("Day/night: day=%d, night=%d\n", stats.dayCount, stats.nightCount)
	fmt.Printf("Confidence UNK: %d, confidence > 80: %d\n", stats.unknownConf, stats.highConf)
	fmt.Printf("With FRP: %d\n", stats.frpPresent)

	printDateRange(dets)
	printFirstTerra(dets)
	printMaxTemp(dets)
}

func printDateRange(dets []domain.Detection) {
	var minDate, maxDate time.Time
	for i := range dets {
		t := dets[i].DetectedAt
		if t.IsZero() {
			continue
		}
		if minDate.IsZero() || t.Before(minDate) {
			minDate = t
		}
		if t.After(maxDate) {
			maxDate = t
		}
	}
	fmt.Printf("Date range: %s to %s\n",
		minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"))
}

func printFirstTerra(dets []domain.Detection) {
	for i := range dets {
		if dets[i].Satellite != "terra" {
			continue
		}
		d := &dets[i]
		fmt.Printf("\nFirst terra record:\n")
		fmt.Printf("  ID: %s\n", d.ID)
		fmt.Printf("  Lat: %g, Lon: %g\n", d.Geo.Lat, d.Geo.Lon)
		fmt.Printf("  Temp: %g K, FRP: %g MW\n", d.Temp, d.Frp)
		fmt.Printf("  Confidence: %d (%s)\n", d.Confidence, d.ConfidenceClass)
		fmt.Printf("  Daytime: %t\n", d.Daytime)
		fmt.Printf("  DetectedAt: %s\n", d.DetectedAt.Format(time.RFC3339))
		fmt.Printf("  TimeBucket: %s\n", d.TimeBucket.Format(time.RFC3339))
		break
	}
}

func printMaxTemp(dets []domain.Detection) {
	var maxTemp float64
	for i := range dets {
		if dets[i].Temp > maxTemp {
			maxTemp = dets[i].Temp
		}
	}
	fmt.Printf("\nMax brightness temperature: %g K\n", maxTemp)
}
