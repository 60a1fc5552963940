package simulation

import (
	"math/rand"
	"sort"
)

// treeNode is a binary CART node. Internal nodes route on feature/threshold;
// leaves carry either a class distribution or a regression value.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	leaf      bool
	proba     []float64
	value     float64
}

type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // 0 means use all features
	classes         int // 0 means regression
	rng             *rand.Rand
}

// growTree fits one CART tree on the rows in idx. Classification nodes split
// on weighted Gini impurity, regression nodes on weighted variance.
func growTree(X [][]float64, y []float64, w []float64, idx []int, depth int, cfg treeConfig) *treeNode {
	if len(idx) == 0 {
		return &treeNode{leaf: true, proba: uniformProba(cfg.classes)}
	}
	if depth >= cfg.maxDepth || len(idx) < cfg.minSamplesSplit || isPure(y, idx) {
		return makeLeaf(y, w, idx, cfg.classes)
	}

	feature, threshold, ok := bestSplit(X, y, w, idx, cfg)
	if !ok {
		return makeLeaf(y, w, idx, cfg.classes)
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return makeLeaf(y, w, idx, cfg.classes)
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(X, y, w, leftIdx, depth+1, cfg),
		right:     growTree(X, y, w, rightIdx, depth+1, cfg),
	}
}

func isPure(y []float64, idx []int) bool {
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}

func uniformProba(classes int) []float64 {
	if classes == 0 {
		return nil
	}
	p := make([]float64, classes)
	for i := range p {
		p[i] = 1 / float64(classes)
	}
	return p
}

func makeLeaf(y []float64, w []float64, idx []int, classes int) *treeNode {
	if classes == 0 {
		sumW, sumWY := 0.0, 0.0
		for _, i := range idx {
			sumW += w[i]
			sumWY += w[i] * y[i]
		}
		if sumW == 0 {
			return &treeNode{leaf: true}
		}
		return &treeNode{leaf: true, value: sumWY / sumW}
	}

	counts := make([]float64, classes)
	total := 0.0
	for _, i := range idx {
		counts[int(y[i])] += w[i]
		total += w[i]
	}
	if total == 0 {
		return &treeNode{leaf: true, proba: uniformProba(classes)}
	}
	for c := range counts {
		counts[c] /= total
	}
	return &treeNode{leaf: true, proba: counts}
}

// bestSplit searches a random feature subset for the threshold minimizing
// weighted child impurity.
func bestSplit(X [][]float64, y []float64, w []float64, idx []int, cfg treeConfig) (int, float64, bool) {
	width := len(X[idx[0]])
	features := make([]int, width)
	for i := range features {
		features[i] = i
	}
	if cfg.maxFeatures > 0 && cfg.maxFeatures < width {
		cfg.rng.Shuffle(width, func(i, j int) {
			features[i], features[j] = features[j], features[i]
		})
		features = features[:cfg.maxFeatures]
		sort.Ints(features)
	}

	bestImpurity := 0.0
	bestFeature := -1
	bestThreshold := 0.0
	found := false

	for _, f := range features {
		samples := make([]int, len(idx))
		copy(samples, idx)
		sort.Slice(samples, func(a, b int) bool { return X[samples[a]][f] < X[samples[b]][f] })

		impurity, threshold, ok := scanSplits(X, y, w, samples, f, cfg.classes)
		if !ok {
			continue
		}
		if !found || impurity < bestImpurity {
			found = true
			bestImpurity = impurity
			bestFeature = f
			bestThreshold = threshold
		}
	}
	return bestFeature, bestThreshold, found
}

// scanSplits walks the rows sorted by feature f, maintaining running left/right
// aggregates, and returns the minimal weighted impurity and its threshold.
func scanSplits(X [][]float64, y []float64, w []float64, sorted []int, f int, classes int) (float64, float64, bool) {
	n := len(sorted)
	found := false
	bestImpurity := 0.0
	bestThreshold := 0.0

	if classes > 0 {
		leftCounts := make([]float64, classes)
		rightCounts := make([]float64, classes)
		leftW, rightW := 0.0, 0.0
		for _, i := range sorted {
			rightCounts[int(y[i])] += w[i]
			rightW += w[i]
		}
		for k := 0; k < n-1; k++ {
			i := sorted[k]
			c := int(y[i])
			leftCounts[c] += w[i]
			leftW += w[i]
			rightCounts[c] -= w[i]
			rightW -= w[i]

			cur, next := X[i][f], X[sorted[k+1]][f]
			if cur == next {
				continue
			}
			impurity := leftW*gini(leftCounts, leftW) + rightW*gini(rightCounts, rightW)
			if !found || impurity < bestImpurity {
				found = true
				bestImpurity = impurity
				bestThreshold = (cur + next) / 2
			}
		}
		return bestImpurity, bestThreshold, found
	}

	var leftW, leftS, leftSS float64
	var rightW, rightS, rightSS float64
	for _, i := range sorted {
		rightW += w[i]
		rightS += w[i] * y[i]
		rightSS += w[i] * y[i] * y[i]
	}
	for k := 0; k < n-1; k++ {
		i := sorted[k]
		leftW += w[i]
		leftS += w[i] * y[i]
		leftSS += w[i] * y[i] * y[i]
		rightW -= w[i]
		rightS -= w[i] * y[i]
		rightSS -= w[i] * y[i] * y[i]

		cur, next := X[i][f], X[sorted[k+1]][f]
		if cur == next {
			continue
		}
		impurity := weightedSSE(leftW, leftS, leftSS) + weightedSSE(rightW, rightS, rightSS)
		if !found || impurity < bestImpurity {
			found = true
			bestImpurity = impurity
			bestThreshold = (cur + next) / 2
		}
	}
	return bestImpurity, bestThreshold, found
}

func gini(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := c / total
		g -= p * p
	}
	return g
}

// weightedSSE computes sum of squared errors around the weighted mean from
// running sums.
func weightedSSE(sumW, sumWY, sumWYY float64) float64 {
	if sumW == 0 {
		return 0
	}
	return sumWYY - sumWY*sumWY/sumW
}

func (t *treeNode) predict(x []float64) *treeNode {
	node := t
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}
