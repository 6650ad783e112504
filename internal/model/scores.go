package model

import (
	"fmt"
	"sort"
)

// Scores summarizes binary classification quality at a decision threshold.
type Scores struct {
	Threshold float64 `json:"threshold"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	RocAuc    float64 `json:"roc_auc"`

	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// DefaultThreshold is the decision boundary applied to probabilities.
const DefaultThreshold = 0.50

// ComputeScores evaluates predictions against truth at the given threshold.
func ComputeScores(yTrue []bool, probs []float64, threshold float64) (Scores, error) {
	if len(yTrue) == 0 {
		return Scores{}, fmt.Errorf("compute scores: empty evaluation set")
	}
	if len(yTrue) != len(probs) {
		return Scores{}, fmt.Errorf("compute scores: %d labels but %d probabilities", len(yTrue), len(probs))
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}

	s := Scores{Threshold: threshold}
	for i, truth := range yTrue {
		predicted := probs[i] >= threshold
		switch {
		case predicted && truth:
			s.TruePositives++
		case predicted && !truth:
			s.FalsePositives++
		case !predicted && truth:
			s.FalseNegatives++
		default:
			s.TrueNegatives++
		}
	}

	n := float64(len(yTrue))
	s.Accuracy = float64(s.TruePositives+s.TrueNegatives) / n
	if s.TruePositives+s.FalsePositives > 0 {
		s.Precision = float64(s.TruePositives) / float64(s.TruePositives+s.FalsePositives)
	}
	if s.TruePositives+s.FalseNegatives > 0 {
		s.Recall = float64(s.TruePositives) / float64(s.TruePositives+s.FalseNegatives)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	s.RocAuc = rocAuc(yTrue, probs)

	return s, nil
}

// rocAuc computes the area under the ROC curve via the rank-sum (Mann-Whitney
// U) formulation, with tied probabilities contributing half credit. Returns
// 0.5 when either class is absent.
func rocAuc(yTrue []bool, probs []float64) float64 {
	type pair struct {
		p   float64
		pos bool
	}
	pairs := make([]pair, len(probs))
	positives := 0
	for i, p := range probs {
		pairs[i] = pair{p: p, pos: yTrue[i]}
		if yTrue[i] {
			positives++
		}
	}
	negatives := len(probs) - positives
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].p < pairs[b].p })

	// Assign average ranks across ties, then sum positive ranks.
	rankSum := 0.0
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].p == pairs[i].p {
			j++
		}
		avgRank := float64(i+j+1) / 2 // ranks are 1-based
		for k := i; k < j; k++ {
			if pairs[k].pos {
				rankSum += avgRank
			}
		}
		i = j
	}

	u := rankSum - float64(positives)*float64(positives+1)/2
	return u / (float64(positives) * float64(negatives))
}
