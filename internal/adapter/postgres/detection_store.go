package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

// DetectionModel is the GORM row for a processed detection.
type DetectionModel struct {
	ID              string    `gorm:"primaryKey;size:64"`
	Satellite       string    `gorm:"size:16;index"`
	Source          string    `gorm:"size:32"`
	Lat             float64   `gorm:"not null"`
	Lon             float64   `gorm:"not null"`
	DetectedAt      time.Time `gorm:"index"`
	Temp            float64
	ScanPixelKm     float64
	TrackPixelKm    float64
	Frp             float64
	Confidence      int
	ConfidenceClass string `gorm:"size:16"`
	Daytime         bool
	RegionState     string `gorm:"size:8;index"`
	RegionCounty    string `gorm:"size:64"`

	LabelForestFire  *bool
	LabelPerimeterID string `gorm:"size:64"`
	LabelFireName    string `gorm:"size:128"`
	LabelSource      string `gorm:"size:16"`

	ScoreProbability *float64
	ScoreForestFire  *bool
	ScoreModel       string `gorm:"size:64"`

	ProcessedAt time.Time
}

// TableName keeps the table name stable across gorm naming strategies.
func (DetectionModel) TableName() string { return "detections" }

// FromDomain flattens a Detection into a row.
func (m *DetectionModel) FromDomain(det domain.Detection) {
	m.ID = det.ID
	m.Satellite = det.Satellite
	m.Source = det.Source
	m.Lat = det.Geo.Lat
	m.Lon = det.Geo.Lon
	m.DetectedAt = det.DetectedAt
	m.Temp = det.Temp
	m.ScanPixelKm = det.ScanPixelKm
	m.TrackPixelKm = det.TrackPixelKm
	m.Frp = det.Frp
	m.Confidence = det.Confidence
	m.ConfidenceClass = det.ConfidenceClass
	m.Daytime = det.Daytime
	m.RegionState = det.Region.State
	m.RegionCounty = det.Region.County
	m.ProcessedAt = det.ProcessedAt

	if det.Label != nil {
		forestFire := det.Label.ForestFire
		m.LabelForestFire = &forestFire
		m.LabelPerimeterID = det.Label.PerimeterID
		m.LabelFireName = det.Label.FireName
		m.LabelSource = det.Label.Source
	}
	if det.Score != nil {
		prob := det.Score.Probability
		fire := det.Score.ForestFire
		m.ScoreProbability = &prob
		m.ScoreForestFire = &fire
		m.ScoreModel = det.Score.ModelVersion
	}
}

// DetectionStore persists detections. It implements pipeline.BatchLoader.
type DetectionStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewDetectionStore creates a DetectionStore.
func NewDetectionStore(db *gorm.DB, logger *slog.Logger) *DetectionStore {
	return &DetectionStore{db: db, logger: logger}
}

// LoadBatch inserts detections in one statement. Detection IDs are
// deterministic hashes of the source record, so replays after a crash hit the
// primary key and are dropped by ON CONFLICT DO NOTHING.
func (s *DetectionStore) LoadBatch(ctx context.Context, detections []domain.Detection) error {
	if len(detections) == 0 {
		return nil
	}

	rows := make([]DetectionModel, len(detections))
	for i := range detections {
		rows[i].FromDomain(detections[i])
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("insert detections: %w", err)
	}
	return nil
}
