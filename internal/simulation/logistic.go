package simulation

import "math"

// logistic is a multinomial logistic model trained by full-batch gradient
// descent on standardized features, with per-class weights to offset
// imbalance. Initialization is all-zero so training is deterministic.
type logistic struct {
	weights [][]float64 // [classes][features]
	bias    []float64
	classes int
	mean    []float64
	std     []float64
}

const (
	logisticIterations = 500
	logisticRate       = 0.1
)

func fitLogistic(X [][]float64, y []int, classes int, classWeights []float64) *logistic {
	n := len(X)
	if n == 0 {
		return &logistic{classes: classes}
	}
	width := len(X[0])

	m := &logistic{
		weights: make([][]float64, classes),
		bias:    make([]float64, classes),
		classes: classes,
	}
	for c := range m.weights {
		m.weights[c] = make([]float64, width)
	}
	m.mean, m.std = fitStandardizer(X)
	Z := m.standardize(X)

	grad := make([][]float64, classes)
	gradB := make([]float64, classes)
	for c := range grad {
		grad[c] = make([]float64, width)
	}

	for iter := 0; iter < logisticIterations; iter++ {
		for c := range grad {
			for j := range grad[c] {
				grad[c][j] = 0
			}
			gradB[c] = 0
		}
		for i := 0; i < n; i++ {
			p := m.scoreRow(Z[i])
			sw := classWeights[y[i]]
			for c := 0; c < classes; c++ {
				d := p[c]
				if c == y[i] {
					d -= 1
				}
				d *= sw
				for j, v := range Z[i] {
					grad[c][j] += d * v
				}
				gradB[c] += d
			}
		}
		step := logisticRate / float64(n)
		for c := 0; c < classes; c++ {
			for j := range m.weights[c] {
				m.weights[c][j] -= step * grad[c][j]
			}
			m.bias[c] -= step * gradB[c]
		}
	}
	return m
}

func fitStandardizer(X [][]float64) (mean, std []float64) {
	n := float64(len(X))
	width := len(X[0])
	mean = make([]float64, width)
	std = make([]float64, width)
	for _, row := range X {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}
	return mean, std
}

func (m *logistic) standardize(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = (v - m.mean[j]) / m.std[j]
		}
		out[i] = z
	}
	return out
}

// scoreRow computes softmax probabilities for one standardized row.
func (m *logistic) scoreRow(z []float64) []float64 {
	logits := make([]float64, m.classes)
	maxLogit := math.Inf(-1)
	for c := 0; c < m.classes; c++ {
		sum := m.bias[c]
		for j, v := range z {
			sum += m.weights[c][j] * v
		}
		logits[c] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}
	total := 0.0
	for c, l := range logits {
		logits[c] = math.Exp(l - maxLogit)
		total += logits[c]
	}
	for c := range logits {
		logits[c] /= total
	}
	return logits
}

func (m *logistic) predictProba(X [][]float64) [][]float64 {
	Z := m.standardize(X)
	out := make([][]float64, len(Z))
	for i, z := range Z {
		out[i] = m.scoreRow(z)
	}
	return out
}

// classWeightsBalanced returns n / (k * count_c) per class over the training
// labels.
func classWeightsBalanced(y []int, classes int) []float64 {
	counts := make([]float64, classes)
	for _, v := range y {
		counts[v]++
	}
	present := 0
	for _, c := range counts {
		if c > 0 {
			present++
		}
	}
	out := make([]float64, classes)
	total := float64(len(y))
	for c := range out {
		if counts[c] > 0 {
			out[c] = total / (float64(present) * counts[c])
		}
	}
	return out
}
