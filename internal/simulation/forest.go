package simulation

import (
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type forestConfig struct {
	numTrees    int
	maxDepth    int
	maxFeatures int // 0 means all, -1 means sqrt(width)
	classes     int // 0 means regression
	seed        int64
}

// forest is a bag of CART trees trained on bootstrap resamples. Trees train
// concurrently; each tree derives its own RNG from the forest seed so results
// do not depend on scheduling.
type forest struct {
	trees   []*treeNode
	classes int
}

func fitForest(X [][]float64, y []float64, cfg forestConfig) *forest {
	n := len(X)
	maxFeatures := cfg.maxFeatures
	if maxFeatures == -1 && n > 0 {
		maxFeatures = int(math.Sqrt(float64(len(X[0]))))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	f := &forest{trees: make([]*treeNode, cfg.numTrees), classes: cfg.classes}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := 0; t < cfg.numTrees; t++ {
		t := t
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.seed + int64(t)))
			idx := make([]int, n)
			for i := range idx {
				idx[i] = rng.Intn(n)
			}
			w := bootstrapWeights(y, idx, cfg.classes)
			treeCfg := treeConfig{
				maxDepth:        cfg.maxDepth,
				minSamplesSplit: 2,
				maxFeatures:     maxFeatures,
				classes:         cfg.classes,
				rng:             rng,
			}
			f.trees[t] = growTree(X, y, w, idx, 0, treeCfg)
			return nil
		})
	}
	g.Wait()
	return f
}

// bootstrapWeights balances class influence within each bootstrap sample:
// weight n / (k * count_c) for rows of class c. Regression rows weigh 1.
func bootstrapWeights(y []float64, idx []int, classes int) []float64 {
	w := make([]float64, len(y))
	if classes == 0 {
		for i := range w {
			w[i] = 1
		}
		return w
	}
	counts := make([]float64, classes)
	for _, i := range idx {
		counts[int(y[i])]++
	}
	present := 0
	for _, c := range counts {
		if c > 0 {
			present++
		}
	}
	total := float64(len(idx))
	for i := range w {
		c := counts[int(y[i])]
		if c > 0 {
			w[i] = total / (float64(present) * c)
		}
	}
	return w
}

// predictProba averages leaf class distributions over all trees.
func (f *forest) predictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		acc := make([]float64, f.classes)
		for _, tree := range f.trees {
			leaf := tree.predict(x)
			for c, p := range leaf.proba {
				acc[c] += p
			}
		}
		for c := range acc {
			acc[c] /= float64(len(f.trees))
		}
		out[i] = acc
	}
	return out
}

// predictValues averages leaf values for regression.
func (f *forest) predictValues(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		sum := 0.0
		for _, tree := range f.trees {
			sum += tree.predict(x).value
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out
}
