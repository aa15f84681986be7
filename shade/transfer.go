package shade

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// A TransferFunc maps cell counts onto [0, 1]. Cells with a count of zero map to NaN, and are not colored.
type TransferFunc func(counts []uint32) []float64

// TransferByName returns the TransferFunc registered under a name: eq_hist, log, cbrt or linear
func TransferByName(name string) (TransferFunc, error) {
	switch strings.ToLower(name) {
	case "eq_hist", "eqhist", "":
		return EqHist, nil
	case "log":
		return Log, nil
	case "cbrt":
		return Cbrt, nil
	case "linear":
		return Linear, nil
	default:
		return nil, fmt.Errorf("unknown transfer function %q", name)
	}
}

// EqHist equalizes the histogram of non-zero counts, so that each color in a colormap
// is used by roughly the same number of cells. Counts are ranked by their cumulative
// frequency: a cell's value is the fraction of non-zero cells with a count at or below its own.
func EqHist(counts []uint32) []float64 {
	freq := make(map[uint32]int)
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			freq[c]++
			nonzero++
		}
	}
	levels := make([]uint32, 0, len(freq))
	for c := range freq {
		levels = append(levels, c)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	cdf := make(map[uint32]float64, len(levels))
	seen := 0
	for _, c := range levels {
		seen += freq[c]
		cdf[c] = float64(seen) / float64(nonzero)
	}
	return rescale(counts, func(c uint32) float64 { return cdf[c] })
}

// Log scales counts logarithmically
func Log(counts []uint32) []float64 {
	return rescale(counts, func(c uint32) float64 { return math.Log1p(float64(c)) })
}

// Cbrt scales counts by their cube root
func Cbrt(counts []uint32) []float64 {
	return rescale(counts, func(c uint32) float64 { return math.Cbrt(float64(c)) })
}

// Linear scales counts linearly
func Linear(counts []uint32) []float64 {
	return rescale(counts, func(c uint32) float64 { return float64(c) })
}

// rescale applies fn to non-zero counts, then maps the results linearly so that the smallest is 0 and the largest 1
func rescale(counts []uint32, fn func(c uint32) float64) []float64 {
	res := make([]float64, len(counts))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, c := range counts {
		if c == 0 {
			res[i] = math.NaN()
			continue
		}
		res[i] = fn(c)
		lo = math.Min(lo, res[i])
		hi = math.Max(hi, res[i])
	}
	span := hi - lo
	for i, v := range res {
		if math.IsNaN(v) {
			continue
		}
		if span == 0 {
			res[i] = 1
		} else {
			res[i] = (v - lo) / span
		}
	}
	return res
}
