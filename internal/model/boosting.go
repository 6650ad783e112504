package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// gradientBoosting fits shallow regression trees to the logistic-loss
// gradient: each stage adds learning_rate times a tree fit on the residuals
// y - sigmoid(F), pushing the raw score F toward the targets.
//
// Parameters: learning_rate (default 0.1), n_estimators (default 100),
// max_depth (default 3), min_samples_leaf (default 1).
type gradientBoosting struct {
	params Params

	state boostingState
}

type boostingState struct {
	Base         float64     `json:"base"` // initial log-odds
	LearningRate float64     `json:"learning_rate"`
	Trees        []*treeNode `json:"trees"`
	Width        int         `json:"width"`
}

func newGradientBoosting(params Params) *gradientBoosting {
	return &gradientBoosting{params: params}
}

func (m *gradientBoosting) Name() string   { return NameGradientBoosting }
func (m *gradientBoosting) Params() Params { return m.params }

func (m *gradientBoosting) Fit(x [][]float64, y []bool) error {
	if err := validateTrainingData(x, y); err != nil {
		return fmt.Errorf("gradient boosting fit: %w", err)
	}

	lr := m.params.Float("learning_rate", 0.1)
	if lr <= 0 || lr > 1 {
		return fmt.Errorf("gradient boosting fit: learning_rate must be in (0, 1], got %g", lr)
	}
	nEstimators := m.params.Int("n_estimators", 100)
	cfg := treeConfig{
		maxDepth: m.params.Int("max_depth", 3),
		minLeaf:  m.params.Int("min_samples_leaf", 1),
	}

	n, d := len(x), len(x[0])
	target := make([]float64, n)
	positives := 0
	for i, b := range y {
		if b {
			target[i] = 1
			positives++
		}
	}

	// Initial prediction is the log-odds of the positive rate, clamped so a
	// single-class training set stays finite.
	rate := math.Min(math.Max(float64(positives)/float64(n), 1e-6), 1-1e-6)
	base := math.Log(rate / (1 - rate))

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = base
	}

	residual := make([]float64, n)
	trees := make([]*treeNode, 0, nEstimators)
	for t := 0; t < nEstimators; t++ {
		for i := 0; i < n; i++ {
			residual[i] = target[i] - sigmoid(raw[i])
		}
		tree := buildTree(x, residual, idx, cfg, 0, nil)
		trees = append(trees, tree)
		for i, row := range x {
			raw[i] += lr * tree.predict(row)
		}
	}

	m.state = boostingState{
		Base:         base,
		LearningRate: lr,
		Trees:        trees,
		Width:        d,
	}
	return nil
}

func (m *gradientBoosting) PredictProba(x [][]float64) ([]float64, error) {
	if len(m.state.Trees) == 0 {
		return nil, fmt.Errorf("gradient boosting predict: model is not fitted")
	}
	probs := make([]float64, len(x))
	for i, row := range x {
		if len(row) != m.state.Width {
			return nil, fmt.Errorf("gradient boosting predict: row %d has width %d, want %d",
				i, len(row), m.state.Width)
		}
		raw := m.state.Base
		for _, t := range m.state.Trees {
			raw += m.state.LearningRate * t.predict(row)
		}
		probs[i] = sigmoid(raw)
	}
	return probs, nil
}

func (m *gradientBoosting) MarshalState() ([]byte, error) {
	return json.Marshal(m.state)
}

func (m *gradientBoosting) UnmarshalState(data []byte) error {
	if err := json.Unmarshal(data, &m.state); err != nil {
		return fmt.Errorf("gradient boosting state: %w", err)
	}
	if len(m.state.Trees) == 0 {
		return fmt.Errorf("gradient boosting state: no trees")
	}
	return nil
}
