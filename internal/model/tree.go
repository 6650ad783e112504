package model

import (
	"math"
	"sort"
)

// treeNode is one node of a CART regression tree, fit by variance reduction.
// On binary 0/1 targets variance splitting is equivalent to gini impurity,
// so the same tree serves classification leaves (mean = probability),
// random forest members, and boosting residual fits.
type treeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
	Value     float64   `json:"value"`
	Leaf      bool      `json:"leaf,omitempty"`
}

// treeConfig controls tree growth.
type treeConfig struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int // number of features considered per split; 0 means all
}

// buildTree grows a tree on the rows indexed by idx. featurePick selects the
// candidate features for each split (nil considers all); forests pass a
// seeded sampler for per-split feature subsampling.
func buildTree(x [][]float64, target []float64, idx []int, cfg treeConfig, depth int, featurePick func(d int) []int) *treeNode {
	mean := meanAt(target, idx)

	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minLeaf || pureAt(target, idx) {
		return &treeNode{Value: mean, Leaf: true}
	}

	d := len(x[0])
	candidates := allFeatures(d)
	if featurePick != nil {
		candidates = featurePick(d)
	}

	bestFeature, bestThreshold, bestScore := -1, 0.0, math.Inf(1)
	for _, f := range candidates {
		threshold, score, ok := bestSplitOnFeature(x, target, idx, f, cfg.minLeaf)
		if ok && score < bestScore {
			bestFeature, bestThreshold, bestScore = f, threshold, score
		}
	}
	if bestFeature < 0 {
		return &treeNode{Value: mean, Leaf: true}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if x[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Value:     mean,
		Left:      buildTree(x, target, leftIdx, cfg, depth+1, featurePick),
		Right:     buildTree(x, target, rightIdx, cfg, depth+1, featurePick),
	}
}

// bestSplitOnFeature scans sorted unique values of one feature and returns
// the threshold minimizing the weighted child variance.
func bestSplitOnFeature(x [][]float64, target []float64, idx []int, f, minLeaf int) (threshold, score float64, ok bool) {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

	n := len(sorted)
	total, totalSq := 0.0, 0.0
	for _, i := range sorted {
		total += target[i]
		totalSq += target[i] * target[i]
	}

	leftSum, leftSq := 0.0, 0.0
	bestScore := math.Inf(1)
	for k := 0; k < n-1; k++ {
		v := target[sorted[k]]
		leftSum += v
		leftSq += v * v

		// Split only between distinct feature values.
		cur, next := x[sorted[k]][f], x[sorted[k+1]][f]
		if cur == next {
			continue
		}
		leftN, rightN := k+1, n-k-1
		if leftN < minLeaf || rightN < minLeaf {
			continue
		}

		leftVar := leftSq - leftSum*leftSum/float64(leftN)
		rightSum := total - leftSum
		rightVar := (totalSq - leftSq) - rightSum*rightSum/float64(rightN)
		s := leftVar + rightVar
		if s < bestScore {
			bestScore = s
			threshold = (cur + next) / 2
			ok = true
		}
	}
	return threshold, bestScore, ok
}

func (t *treeNode) predict(row []float64) float64 {
	node := t
	for !node.isLeaf() {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func (t *treeNode) isLeaf() bool {
	return t.Leaf || t.Left == nil || t.Right == nil
}

func meanAt(target []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += target[i]
	}
	return sum / float64(len(idx))
}

func pureAt(target []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if target[i] != target[idx[0]] {
			return false
		}
	}
	return true
}

func allFeatures(d int) []int {
	features := make([]int, d)
	for i := range features {
		features[i] = i
	}
	return features
}
