package search

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// normalizeLogWeights turns unnormalized log-weights into a categorical
// distribution using the numerically stable softmax: the log-sum-exp
// normalizer subtracts the maximum before exponentiating, so equal (or
// equally extreme) weights degrade to a uniform distribution instead of
// overflowing. An empty input yields an empty distribution.
func normalizeLogWeights(logW []float64) []float64 {
	if len(logW) == 0 {
		return nil
	}
	z := floats.LogSumExp(logW)
	probs := make([]float64, len(logW))
	for i, lw := range logW {
		probs[i] = math.Exp(lw - z)
	}
	return probs
}

// resampleMultinomial performs one joint multinomial draw of n slots over the
// given categorical distribution, returning per-category counts that sum to
// exactly n. This conserves the total population size every round, unlike
// independent per-slot acceptance schemes.
func resampleMultinomial(probs []float64, n int, src rand.Source) []int {
	if len(probs) == 0 || n <= 0 {
		return nil
	}
	cat := distuv.NewCategorical(probs, src)
	counts := make([]int, len(probs))
	for i := 0; i < n; i++ {
		counts[int(cat.Rand())]++
	}
	return counts
}
