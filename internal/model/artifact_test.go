package model

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-detection-etl/internal/domain"
	"github.com/couchcryptid/fire-detection-etl/internal/feature"
)

// trainedArtifact fits a logit on a two-column schema where high confidence
// and daytime mean fire.
func trainedArtifact(t *testing.T) *Artifact {
	t.Helper()

	schema := feature.Schema{Columns: []feature.Column{
		{Name: feature.ColConf, Kind: feature.Numeric},
		{Name: feature.ColDaytime, Kind: feature.Boolean},
	}}

	var rows []map[string]string
	var labels []bool
	for conf := 0; conf <= 100; conf += 5 {
		for _, day := range []string{"true", "false"} {
			rows = append(rows, map[string]string{
				feature.ColConf:    strconv.Itoa(conf),
				feature.ColDaytime: day,
			})
			labels = append(labels, conf >= 50 && day == "true")
		}
	}

	clf, err := New(NameLogit, Params{"C": "10"})
	require.NoError(t, err)
	require.NoError(t, clf.Fit(schema.VectorizeRows(rows), labels))

	art, err := NewArtifact(clf, schema, DefaultThreshold, nil)
	require.NoError(t, err)
	return art
}

func TestArtifact_SaveLoad(t *testing.T) {
	art := trainedArtifact(t)
	path := filepath.Join(t.TempDir(), "model.json")

	require.NoError(t, art.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, art.Version, loaded.Version)
	assert.Equal(t, NameLogit, loaded.Model)
	assert.Equal(t, art.Schema.Names(), loaded.Schema.Names())
	assert.Equal(t, DefaultThreshold, loaded.Threshold)
	require.NotNil(t, loaded.Classifier())

	rows := []map[string]string{
		{feature.ColConf: "90", feature.ColDaytime: "true"},
		{feature.ColConf: "10", feature.ColDaytime: "false"},
	}
	want, err := art.PredictProba(rows)
	require.NoError(t, err)
	got, err := loaded.PredictProba(rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-9)
}

func TestArtifact_ScoreDetection(t *testing.T) {
	art := trainedArtifact(t)

	t.Run("confident daytime detection scores as fire", func(t *testing.T) {
		det := domain.Detection{
			ID:         "terra-deadbeef",
			Confidence: 95,
			Daytime:    true,
		}
		score, err := art.ScoreDetection(context.Background(), det)
		require.NoError(t, err)

		assert.True(t, score.ForestFire)
		assert.Greater(t, score.Probability, art.Threshold)
		assert.Equal(t, DefaultThreshold, score.Threshold)
		assert.Equal(t, NameLogit+"-"+art.Version, score.ModelVersion)
	})

	t.Run("weak nighttime detection scores clear", func(t *testing.T) {
		det := domain.Detection{
			ID:         "aqua-deadbeef",
			Confidence: 5,
			Daytime:    false,
		}
		score, err := art.ScoreDetection(context.Background(), det)
		require.NoError(t, err)

		assert.False(t, score.ForestFire)
		assert.Less(t, score.Probability, art.Threshold)
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown model name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"version":"v1","model":"neural_net","state":{}}`), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestAppendRunLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.log")
	rec := RunRecord{
		RunID:      "0f5a",
		Model:      NameRandomForest,
		Params:     Params{"n_estimators": "500", "max_depth": "10"},
		Features:   []string{feature.ColConf, feature.ColTemp},
		FoldAucs:   []float64{0.91, 0.87},
		MeanAuc:    0.89,
		Holdout:    &Scores{Accuracy: 0.9, Precision: 0.8, Recall: 0.7, F1: 0.75, RocAuc: 0.88},
		TrainedAt:  time.Date(2013, 8, 17, 18, 30, 0, 0, time.UTC),
		DatasetLen: 1234,
	}

	require.NoError(t, AppendRunLog(path, rec))
	require.NoError(t, AppendRunLog(path, rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Equal(t, 2, strings.Count(out, "2013-08-17 18:30:00"))
	assert.Contains(t, out, "Run: random_forest (0f5a)")
	assert.Contains(t, out, "Params: max_depth=10 n_estimators=500")
	assert.Contains(t, out, "Rows: 1234")
	assert.Contains(t, out, "Fold AUCs: [0.9100 0.8700] mean=0.8900")
	assert.Contains(t, out, "roc_auc=0.8800")
}
