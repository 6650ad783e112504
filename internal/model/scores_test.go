package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScores(t *testing.T) {
	t.Run("known confusion counts", func(t *testing.T) {
		yTrue := []bool{true, true, true, false, false, false}
		probs := []float64{0.9, 0.8, 0.2, 0.7, 0.1, 0.3}

		s, err := ComputeScores(yTrue, probs, 0.5)
		require.NoError(t, err)

		assert.Equal(t, 2, s.TruePositives)
		assert.Equal(t, 1, s.FalseNegatives)
		assert.Equal(t, 1, s.FalsePositives)
		assert.Equal(t, 2, s.TrueNegatives)
		assert.InDelta(t, 4.0/6.0, s.Accuracy, 1e-9)
		assert.InDelta(t, 2.0/3.0, s.Precision, 1e-9)
		assert.InDelta(t, 2.0/3.0, s.Recall, 1e-9)
		assert.InDelta(t, 2.0/3.0, s.F1, 1e-9)
	})

	t.Run("perfect separation", func(t *testing.T) {
		s, err := ComputeScores(
			[]bool{false, false, true, true},
			[]float64{0.1, 0.2, 0.8, 0.9},
			0.5,
		)
		require.NoError(t, err)
		assert.Equal(t, 1.0, s.RocAuc)
		assert.Equal(t, 1.0, s.Accuracy)
		assert.Equal(t, 1.0, s.F1)
	})

	t.Run("reversed ranking", func(t *testing.T) {
		s, err := ComputeScores(
			[]bool{true, true, false, false},
			[]float64{0.1, 0.2, 0.8, 0.9},
			0.5,
		)
		require.NoError(t, err)
		assert.Equal(t, 0.0, s.RocAuc)
	})

	t.Run("ties score half credit", func(t *testing.T) {
		s, err := ComputeScores(
			[]bool{true, false},
			[]float64{0.5, 0.5},
			0.5,
		)
		require.NoError(t, err)
		assert.Equal(t, 0.5, s.RocAuc)
	})

	t.Run("single class auc is half", func(t *testing.T) {
		s, err := ComputeScores([]bool{true, true}, []float64{0.9, 0.8}, 0.5)
		require.NoError(t, err)
		assert.Equal(t, 0.5, s.RocAuc)
	})

	t.Run("no positive predictions has zero precision", func(t *testing.T) {
		s, err := ComputeScores([]bool{true, false}, []float64{0.1, 0.2}, 0.5)
		require.NoError(t, err)
		assert.Equal(t, 0.0, s.Precision)
		assert.Equal(t, 0.0, s.Recall)
		assert.Equal(t, 0.0, s.F1)
	})

	t.Run("out of range threshold falls back to default", func(t *testing.T) {
		s, err := ComputeScores([]bool{true, false}, []float64{0.9, 0.1}, 0)
		require.NoError(t, err)
		assert.Equal(t, DefaultThreshold, s.Threshold)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ComputeScores(nil, nil, 0.5)
		assert.Error(t, err)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := ComputeScores([]bool{true}, []float64{0.5, 0.6}, 0.5)
		assert.Error(t, err)
	})
}
