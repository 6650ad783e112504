package model

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// logit is an L1/L2-penalized logistic regression trained by full-batch
// gradient descent. Features are standardized internally so the step size
// behaves across columns with wildly different scales (confidence 0-100 vs
// brightness temperature ~330K).
//
// Parameters: penalty ("l2" or "l1", default l2), C (inverse regularization
// strength, default 1), iterations (default 500), learning_rate (default 0.1).
type logit struct {
	params Params

	state logitState
}

type logitState struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
}

func newLogit(params Params) *logit {
	return &logit{params: params}
}

func (m *logit) Name() string   { return NameLogit }
func (m *logit) Params() Params { return m.params }

func (m *logit) Fit(x [][]float64, y []bool) error {
	if err := validateTrainingData(x, y); err != nil {
		return fmt.Errorf("logit fit: %w", err)
	}

	penalty := m.params.String("penalty", "l2")
	if penalty != "l1" && penalty != "l2" {
		return fmt.Errorf("logit fit: unknown penalty %q", penalty)
	}
	c := m.params.Float("C", 1)
	if c <= 0 {
		return fmt.Errorf("logit fit: C must be positive, got %g", c)
	}
	iterations := m.params.Int("iterations", 500)
	lr := m.params.Float("learning_rate", 0.1)

	n, d := len(x), len(x[0])
	means, stds := columnStats(x)
	xs := mat.NewDense(n, d, nil)
	for i, row := range x {
		for j, v := range row {
			xs.Set(i, j, (v-means[j])/stds[j])
		}
	}

	target := make([]float64, n)
	for i, b := range y {
		if b {
			target[i] = 1
		}
	}
	yVec := mat.NewVecDense(n, target)

	weights := mat.NewVecDense(d, nil)
	bias := 0.0
	lambda := 1 / (c * float64(n))

	probs := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	for iter := 0; iter < iterations; iter++ {
		// probs = sigmoid(Xw + b)
		probs.MulVec(xs, weights)
		for i := 0; i < n; i++ {
			probs.SetVec(i, sigmoid(probs.AtVec(i)+bias))
		}

		// grad = Xᵀ(p - y)/n + penalty term
		var residual mat.VecDense
		residual.SubVec(probs, yVec)
		grad.MulVec(xs.T(), &residual)
		grad.ScaleVec(1/float64(n), grad)

		gradBias := 0.0
		for i := 0; i < n; i++ {
			gradBias += residual.AtVec(i)
		}
		gradBias /= float64(n)

		for j := 0; j < d; j++ {
			w := weights.AtVec(j)
			g := grad.AtVec(j)
			switch penalty {
			case "l2":
				g += lambda * w
			case "l1":
				g += lambda * sign(w)
			}
			weights.SetVec(j, w-lr*g)
		}
		bias -= lr * gradBias
	}

	m.state = logitState{
		Weights: weights.RawVector().Data,
		Bias:    bias,
		Means:   means,
		Stds:    stds,
	}
	return nil
}

func (m *logit) PredictProba(x [][]float64) ([]float64, error) {
	if len(m.state.Weights) == 0 {
		return nil, fmt.Errorf("logit predict: model is not fitted")
	}
	probs := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.state.Weights) {
			return nil, fmt.Errorf("logit predict: row %d has width %d, want %d",
				i, len(row), len(m.state.Weights))
		}
		z := m.state.Bias
		for j, v := range row {
			z += m.state.Weights[j] * (v - m.state.Means[j]) / m.state.Stds[j]
		}
		probs[i] = sigmoid(z)
	}
	return probs, nil
}

func (m *logit) MarshalState() ([]byte, error) {
	return json.Marshal(m.state)
}

func (m *logit) UnmarshalState(data []byte) error {
	if err := json.Unmarshal(data, &m.state); err != nil {
		return fmt.Errorf("logit state: %w", err)
	}
	if len(m.state.Weights) == 0 {
		return fmt.Errorf("logit state: empty weights")
	}
	return nil
}

// columnStats returns per-column means and standard deviations, with zero
// deviations replaced by 1 so constant columns pass through unchanged.
func columnStats(x [][]float64) (means, stds []float64) {
	n, d := len(x), len(x[0])
	means = make([]float64, d)
	stds = make([]float64, d)

	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}
	for _, row := range x {
		for j, v := range row {
			diff := v - means[j]
			stds[j] += diff * diff
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(n))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
