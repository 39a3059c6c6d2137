// Package stats implements the z-score model and exact combinatorics the
// rest of polydist builds on: comb, z-score, and a mean-z-score summary.
package stats

import (
	"math"
	"math/big"

	"github.com/montanaflynn/stats"
)

// Comb returns the exact binomial coefficient C(n, k), computed as a
// stepwise product-then-divide over math/big so it never overflows for
// the block sizes this tool deals with (spec.md §9: "scipy.misc.comb for
// large n" — an exact big-integer-safe binomial coefficient).
func Comb(n, k int) uint64 {
	if k < 0 || k > n || n < 0 {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := big.NewInt(1)
	num := new(big.Int)
	den := new(big.Int)
	for i := 0; i < k; i++ {
		num.SetInt64(int64(n - i))
		den.SetInt64(int64(i + 1))
		result.Mul(result, num)
		result.Div(result, den) // exact: result*(n-i) is always divisible by i+1
	}
	return result.Uint64()
}

// ZScore computes (obs-exp)/sqrt(n*p*(1-p)) where p = exp/n, returning 0
// when the variance is 0 (spec.md §4.4, §7 NumericError: absorbed
// locally rather than propagated).
func ZScore(obs, exp, n float64) float64 {
	if n <= 0 {
		return 0
	}
	p := exp / n
	variance := n * p * (1 - p)
	if variance <= 0 {
		return 0
	}
	return (obs - exp) / math.Sqrt(variance)
}

// MeanZScore returns the arithmetic mean of a slice of z-scores, used for
// the per-degree summary line in pkg/analysis (spec.md §4.5b). Delegates
// to montanaflynn/stats rather than a hand-rolled sum/len loop.
func MeanZScore(z []float64) float64 {
	if len(z) == 0 {
		return 0
	}
	m, err := stats.Mean(stats.Float64Data(z))
	if err != nil {
		return 0
	}
	return m
}

// FailFraction returns the fraction of z-scores whose magnitude exceeds
// thresh.
func FailFraction(z []float64, thresh float64) float64 {
	if len(z) == 0 {
		return 0
	}
	fails := 0
	for _, x := range z {
		if math.Abs(x) > thresh {
			fails++
		}
	}
	return float64(fails) / float64(len(z))
}
