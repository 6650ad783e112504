package model

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

// randomForest averages probabilities over trees grown on bootstrap samples
// with sqrt-feature subsampling per split.
//
// Parameters: n_estimators (default 500), max_depth (default 10),
// min_samples_leaf (default 1).
type randomForest struct {
	params Params

	state forestState
}

type forestState struct {
	Trees []*treeNode `json:"trees"`
	Width int         `json:"width"`
}

func newRandomForest(params Params) *randomForest {
	return &randomForest{params: params}
}

func (m *randomForest) Name() string   { return NameRandomForest }
func (m *randomForest) Params() Params { return m.params }

func (m *randomForest) Fit(x [][]float64, y []bool) error {
	if err := validateTrainingData(x, y); err != nil {
		return fmt.Errorf("random forest fit: %w", err)
	}

	nEstimators := m.params.Int("n_estimators", 500)
	if nEstimators <= 0 {
		return fmt.Errorf("random forest fit: n_estimators must be positive")
	}
	cfg := treeConfig{
		maxDepth: m.params.Int("max_depth", 10),
		minLeaf:  m.params.Int("min_samples_leaf", 1),
	}

	n, d := len(x), len(x[0])
	target := make([]float64, n)
	for i, b := range y {
		if b {
			target[i] = 1
		}
	}

	rng := rand.New(rand.NewSource(randomSeed))
	subset := int(math.Max(1, math.Floor(math.Sqrt(float64(d)))))

	trees := make([]*treeNode, nEstimators)
	for t := 0; t < nEstimators; t++ {
		bootstrap := make([]int, n)
		for i := range bootstrap {
			bootstrap[i] = rng.Intn(n)
		}
		pick := func(dim int) []int {
			perm := rng.Perm(dim)
			return perm[:subset]
		}
		trees[t] = buildTree(x, target, bootstrap, cfg, 0, pick)
	}

	m.state = forestState{Trees: trees, Width: d}
	return nil
}

func (m *randomForest) PredictProba(x [][]float64) ([]float64, error) {
	if len(m.state.Trees) == 0 {
		return nil, fmt.Errorf("random forest predict: model is not fitted")
	}
	probs := make([]float64, len(x))
	for i, row := range x {
		if len(row) != m.state.Width {
			return nil, fmt.Errorf("random forest predict: row %d has width %d, want %d",
				i, len(row), m.state.Width)
		}
		sum := 0.0
		for _, t := range m.state.Trees {
			sum += t.predict(row)
		}
		probs[i] = sum / float64(len(m.state.Trees))
	}
	return probs, nil
}

func (m *randomForest) MarshalState() ([]byte, error) {
	return json.Marshal(m.state)
}

func (m *randomForest) UnmarshalState(data []byte) error {
	if err := json.Unmarshal(data, &m.state); err != nil {
		return fmt.Errorf("random forest state: %w", err)
	}
	if len(m.state.Trees) == 0 {
		return fmt.Errorf("random forest state: no trees")
	}
	return nil
}
