package flight

// Gradient-Boosted Anomaly Classifier
//
// Each aircraft type's anomaly model is a small gradient-boosted ensemble of
// regression trees with logistic loss:
//
// 1. Training starts from the log-odds of the positive-class base rate.
// 2. Each round fits a depth-limited regression tree to the current
//    pseudo-residuals (label minus predicted probability); leaf values are
//    Newton steps (residual sum over hessian sum).
// 3. Splits are chosen greedily by squared-error reduction over quantile
//    thresholds of each feature.
// 4. Inference sums the shrunken tree outputs and squashes through the
//    logistic function into a per-row anomaly probability.
//
// Every tree node carries its own Newton value, which makes path-based
// (Saabas) attribution possible: walking a row down a tree, the value change
// at each split is credited to the split feature. Summed across trees this
// yields signed per-feature contributions in score space, feeding the
// explainability engine.
//
// Training is deterministic given its input; only the synthetic sample
// generation upstream is stochastic, and that is seeded.

import (
	"errors"
	"math"
	"sort"
)

// BoostConfig holds the booster's training hyperparameters.
type BoostConfig struct {
	Rounds       int
	MaxDepth     int
	LearningRate float64
	MinLeaf      int
}

// DefaultBoostConfig returns the hyperparameters used for all aircraft types.
func DefaultBoostConfig() BoostConfig {
	return BoostConfig{
		Rounds:       60,
		MaxDepth:     3,
		LearningRate: 0.15,
		MinLeaf:      5,
	}
}

func (c BoostConfig) withDefaults() BoostConfig {
	def := DefaultBoostConfig()
	if c.Rounds <= 0 {
		c.Rounds = def.Rounds
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = def.MaxDepth
	}
	if c.LearningRate <= 0 {
		c.LearningRate = def.LearningRate
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = def.MinLeaf
	}
	return c
}

// TreeNode is one node of a boosted regression tree. Leaves have no children;
// internal nodes split on Feature < Threshold. Value is the node's Newton
// step, kept on internal nodes too so attribution can walk value deltas.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Value     float64   `json:"value"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
}

func (n *TreeNode) leaf() bool { return n.Left == nil }

// Booster is a trained gradient-boosted binary classifier. It is immutable
// after training and safe for concurrent use.
type Booster struct {
	Base         float64     `json:"base"` // log-odds prior
	LearningRate float64     `json:"learningRate"`
	FeatureCount int         `json:"featureCount"`
	Trees        []*TreeNode `json:"trees"`
}

// TrainBooster fits a booster on a labeled sample matrix. Labels are 0
// (nominal) or 1 (anomalous). A single-class sample yields a degenerate
// booster with no trees that always predicts the base rate.
func TrainBooster(samples [][]float64, labels []float64, cfg BoostConfig) (*Booster, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, errors.New("training sample and label counts must match and be non-zero")
	}
	featureCount := len(samples[0])
	if featureCount == 0 {
		return nil, errors.New("training samples have no features")
	}
	cfg = cfg.withDefaults()

	var positives float64
	for _, y := range labels {
		positives += y
	}
	rate := positives / float64(len(labels))
	const eps = 1e-4
	if rate < eps {
		rate = eps
	}
	if rate > 1-eps {
		rate = 1 - eps
	}

	booster := &Booster{
		Base:         math.Log(rate / (1 - rate)),
		LearningRate: cfg.LearningRate,
		FeatureCount: featureCount,
	}
	if positives == 0 || positives == float64(len(labels)) {
		return booster, nil
	}

	scores := make([]float64, len(labels))
	for i := range scores {
		scores[i] = booster.Base
	}
	residuals := make([]float64, len(labels))
	hessians := make([]float64, len(labels))
	indices := make([]int, len(labels))
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < cfg.Rounds; round++ {
		for i, s := range scores {
			p := sigmoid(s)
			residuals[i] = labels[i] - p
			hessians[i] = p * (1 - p)
		}

		root := buildTree(samples, residuals, hessians, indices, cfg.MaxDepth, cfg.MinLeaf)
		if root.leaf() {
			// nothing left to split on
			break
		}
		booster.Trees = append(booster.Trees, root)

		for i := range scores {
			scores[i] += cfg.LearningRate * treeValue(root, samples[i])
		}
	}

	return booster, nil
}

// PredictProb returns the positive-class (anomaly) probability for one
// feature vector.
func (b *Booster) PredictProb(features []float64) float64 {
	return sigmoid(b.rawScore(features))
}

func (b *Booster) rawScore(features []float64) float64 {
	score := b.Base
	for _, tree := range b.Trees {
		score += b.LearningRate * treeValue(tree, features)
	}
	return score
}

// Attribute returns signed per-feature contributions, in score (log-odds)
// space, for one feature vector. The contributions plus the returned bias sum
// to the raw score.
func (b *Booster) Attribute(features []float64) (contributions []float64, bias float64) {
	contributions = make([]float64, b.FeatureCount)
	bias = b.Base
	for _, tree := range b.Trees {
		bias += b.LearningRate * tree.Value
		node := tree
		for !node.leaf() {
			child := node.Right
			if features[node.Feature] < node.Threshold {
				child = node.Left
			}
			contributions[node.Feature] += b.LearningRate * (child.Value - node.Value)
			node = child
		}
	}
	return contributions, bias
}

func treeValue(node *TreeNode, features []float64) float64 {
	for !node.leaf() {
		if features[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func buildTree(samples [][]float64, residuals, hessians []float64, indices []int, depth, minLeaf int) *TreeNode {
	node := &TreeNode{Value: newtonValue(residuals, hessians, indices)}
	if depth <= 0 || len(indices) < 2*minLeaf {
		return node
	}

	feature, threshold, ok := bestSplit(samples, residuals, indices, minLeaf)
	if !ok {
		return node
	}

	var left, right []int
	for _, idx := range indices {
		if samples[idx][feature] < threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) < minLeaf || len(right) < minLeaf {
		return node
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = buildTree(samples, residuals, hessians, left, depth-1, minLeaf)
	node.Right = buildTree(samples, residuals, hessians, right, depth-1, minLeaf)
	return node
}

// bestSplit scans quantile thresholds of every feature and keeps the split
// with the largest squared-error reduction of the residuals.
func bestSplit(samples [][]float64, residuals []float64, indices []int, minLeaf int) (feature int, threshold float64, ok bool) {
	const maxThresholds = 16

	parentSSE := residualSSE(residuals, indices)
	bestGain := 1e-9
	featureCount := len(samples[indices[0]])
	values := make([]float64, 0, len(indices))

	for f := 0; f < featureCount; f++ {
		values = values[:0]
		for _, idx := range indices {
			values = append(values, samples[idx][f])
		}
		sort.Float64s(values)
		if values[0] == values[len(values)-1] {
			continue
		}

		step := len(values) / maxThresholds
		if step < 1 {
			step = 1
		}
		prev := math.Inf(-1)
		for i := step; i < len(values); i += step {
			candidate := (values[i-1] + values[i]) / 2
			if candidate == prev || candidate == values[0] {
				continue
			}
			prev = candidate

			var leftSum, leftSq, rightSum, rightSq float64
			var leftN, rightN int
			for _, idx := range indices {
				r := residuals[idx]
				if samples[idx][f] < candidate {
					leftSum += r
					leftSq += r * r
					leftN++
				} else {
					rightSum += r
					rightSq += r * r
					rightN++
				}
			}
			if leftN < minLeaf || rightN < minLeaf {
				continue
			}

			sse := (leftSq - leftSum*leftSum/float64(leftN)) +
				(rightSq - rightSum*rightSum/float64(rightN))
			gain := parentSSE - sse
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = candidate
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func residualSSE(residuals []float64, indices []int) float64 {
	var sum, sq float64
	for _, idx := range indices {
		sum += residuals[idx]
		sq += residuals[idx] * residuals[idx]
	}
	return sq - sum*sum/float64(len(indices))
}

// newtonValue is the regularized Newton step for a node: residual sum over
// hessian sum.
func newtonValue(residuals, hessians []float64, indices []int) float64 {
	var num, den float64
	for _, idx := range indices {
		num += residuals[idx]
		den += hessians[idx]
	}
	return num / (den + 1.0)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
