// Package model implements the forest-fire classifiers: logistic regression,
// random forest, and gradient boosting, with time-based cross-validation,
// grid search, and a JSON artifact format consumed by the streaming scorer.
package model

import (
	"fmt"
	"strconv"
)

// Params holds a classifier's hyperparameters as strings, the form they take
// in grids, run logs, and artifacts.
type Params map[string]string

// Float reads a float parameter, falling back to def when absent or invalid.
func (p Params) Float(key string, def float64) float64 {
	s, ok := p[key]
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// Int reads an integer parameter, falling back to def when absent or invalid.
func (p Params) Int(key string, def int) int {
	s, ok := p[key]
	if !ok {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// String reads a string parameter with a default.
func (p Params) String(key, def string) string {
	if s, ok := p[key]; ok && s != "" {
		return s
	}
	return def
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Classifier is a binary probabilistic classifier over dense feature vectors.
type Classifier interface {
	// Fit trains on a row-major feature matrix and boolean targets.
	Fit(x [][]float64, y []bool) error
	// PredictProba returns the positive-class probability per row.
	// Must be called after a successful Fit (or state restore).
	PredictProba(x [][]float64) ([]float64, error)
	// Name returns the registry name of the model.
	Name() string
	// Params returns the hyperparameters the model was built with.
	Params() Params
	// MarshalState serializes the fitted state for the artifact.
	MarshalState() ([]byte, error)
	// UnmarshalState restores fitted state from an artifact.
	UnmarshalState(data []byte) error
}

// Model registry names.
const (
	NameLogit            = "logit"
	NameRandomForest     = "random_forest"
	NameGradientBoosting = "gradient_boosting"
)

// randomSeed fixes every stochastic component for reproducible runs.
const randomSeed = 24

// New builds a classifier by registry name. Unknown names, including the
// retired "neural_net", return a descriptive error.
func New(name string, params Params) (Classifier, error) {
	if params == nil {
		params = Params{}
	}
	switch name {
	case NameLogit:
		return newLogit(params), nil
	case NameRandomForest:
		return newRandomForest(params), nil
	case NameGradientBoosting:
		return newGradientBoosting(params), nil
	case "neural_net":
		return nil, fmt.Errorf("model %q is not supported; use %s, %s, or %s",
			name, NameLogit, NameRandomForest, NameGradientBoosting)
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}

// Names lists the supported registry names.
func Names() []string {
	return []string{NameLogit, NameRandomForest, NameGradientBoosting}
}

func validateTrainingData(x [][]float64, y []bool) error {
	if len(x) == 0 {
		return fmt.Errorf("empty training set")
	}
	if len(x) != len(y) {
		return fmt.Errorf("feature rows (%d) and labels (%d) differ", len(x), len(y))
	}
	width := len(x[0])
	if width == 0 {
		return fmt.Errorf("zero-width feature vectors")
	}
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("row %d has width %d, want %d", i, len(row), width)
		}
	}
	return nil
}
