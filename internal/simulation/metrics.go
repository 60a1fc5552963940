package simulation

import (
	"math"
	"sort"
)

func accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// precisionRecall computes precision and recall. With exactly two classes the
// binary convention applies (class 1 is positive); otherwise the per-class
// values are averaged weighted by support.
func precisionRecall(yTrue, yPred []int, classes int) (float64, float64) {
	if classes == 2 {
		return binaryPrecisionRecall(yTrue, yPred, 1)
	}
	var precSum, recSum float64
	total := 0
	for c := 0; c < classes; c++ {
		prec, rec := binaryPrecisionRecall(yTrue, yPred, c)
		support := 0
		for _, v := range yTrue {
			if v == c {
				support++
			}
		}
		precSum += prec * float64(support)
		recSum += rec * float64(support)
		total += support
	}
	if total == 0 {
		return 0, 0
	}
	return precSum / float64(total), recSum / float64(total)
}

func binaryPrecisionRecall(yTrue, yPred []int, positive int) (float64, float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		switch {
		case yPred[i] == positive && yTrue[i] == positive:
			tp++
		case yPred[i] == positive:
			fp++
		case yTrue[i] == positive:
			fn++
		}
	}
	prec, rec := 0.0, 0.0
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	return prec, rec
}

// rocAUCBinary computes the ROC area via the rank-sum identity, with average
// ranks for tied scores. Degenerate single-class inputs yield 0.5.
func rocAUCBinary(yTrue []int, scores []float64) float64 {
	n := len(yTrue)
	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, n)
	nPos := 0
	for i := range yTrue {
		pairs[i] = pair{scores[i], yTrue[i] == 1}
		if yTrue[i] == 1 {
			nPos++
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	rankSum := 0.0
	i := 0
	for i < n {
		j := i
		for j < n && pairs[j].score == pairs[i].score {
			j++
		}
		// Average rank across the tie group (1-based ranks).
		avgRank := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			if pairs[k].pos {
				rankSum += avgRank
			}
		}
		i = j
	}
	return (rankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
}

// rocAUCOVR computes a one-vs-rest macro-averaged AUC from per-class
// probabilities.
func rocAUCOVR(yTrue []int, proba [][]float64, classes int) float64 {
	sum := 0.0
	counted := 0
	for c := 0; c < classes; c++ {
		binary := make([]int, len(yTrue))
		scores := make([]float64, len(yTrue))
		hasPos, hasNeg := false, false
		for i, v := range yTrue {
			if v == c {
				binary[i] = 1
				hasPos = true
			} else {
				hasNeg = true
			}
			scores[i] = proba[i][c]
		}
		if !hasPos || !hasNeg {
			continue
		}
		sum += rocAUCBinary(binary, scores)
		counted++
	}
	if counted == 0 {
		return 0.5
	}
	return sum / float64(counted)
}

func r2Score(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	ssTot, ssRes := 0.0, 0.0
	for i := range yTrue {
		d := yTrue[i] - mean
		ssTot += d * d
		r := yTrue[i] - yPred[i]
		ssRes += r * r
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func maeScore(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue))
}

func rmseScore(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(yTrue)))
}

// bestIndex returns the index of the largest value, ties to the earlier index.
func bestIndex(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
