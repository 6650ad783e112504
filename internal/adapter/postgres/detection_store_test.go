package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
)

func TestDetectionModel_FromDomain(t *testing.T) {
	detectedAt := time.Date(2013, 8, 17, 18, 30, 0, 0, time.UTC)

	det := domain.Detection{
		ID:              "terra-1a2b3c4d",
		Satellite:       "terra",
		Source:          "gsfc_drl",
		Geo:             domain.Geo{Lat: 40.1997, Lon: -121.5075},
		DetectedAt:      detectedAt,
		Temp:            330.1,
		Confidence:      85,
		ConfidenceClass: "high",
		Daytime:         true,
		Region:          domain.Region{State: "CA", County: "Plumas County", Source: "lookup"},
		Label: &domain.Label{
			ForestFire:  true,
			PerimeterID: "2013-CA-RIM",
			FireName:    "Rim Fire",
			Source:      "matched",
		},
		Score: &domain.Score{
			Probability:  0.93,
			ForestFire:   true,
			ModelVersion: "logit-v1",
		},
	}

	var m DetectionModel
	m.FromDomain(det)

	assert.Equal(t, "terra-1a2b3c4d", m.ID)
	assert.Equal(t, "terra", m.Satellite)
	assert.Equal(t, 40.1997, m.Lat)
	assert.Equal(t, -121.5075, m.Lon)
	assert.Equal(t, detectedAt, m.DetectedAt)
	assert.Equal(t, 85, m.Confidence)
	assert.Equal(t, "CA", m.RegionState)

	require.NotNil(t, m.LabelForestFire)
	assert.True(t, *m.LabelForestFire)
	assert.Equal(t, "2013-CA-RIM", m.LabelPerimeterID)
	assert.Equal(t, "matched", m.LabelSource)

	require.NotNil(t, m.ScoreProbability)
	assert.InEpsilon(t, 0.93, *m.ScoreProbability, 1e-9)
	assert.Equal(t, "logit-v1", m.ScoreModel)
}

func TestDetectionModel_FromDomain_Unlabeled(t *testing.T) {
	var m DetectionModel
	m.FromDomain(domain.Detection{ID: "det-00000000"})

	assert.Nil(t, m.LabelForestFire)
	assert.Nil(t, m.ScoreProbability)
	assert.Empty(t, m.LabelSource)
}

func TestDetectionModel_TableName(t *testing.T) {
	assert.Equal(t, "detections", DetectionModel{}.TableName())
}
