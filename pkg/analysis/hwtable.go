package analysis

import "github.com/oisee/polydist/pkg/stats"

// HWTable holds, for each degree 0..D, the cumulative Hamming-weight
// counters indexed by term.Map's lexicographic ordering (spec.md §3).
type HWTable struct {
	Degree int
	HWs    [][]uint64 // HWs[d][idx], d in 0..Degree
}

// NewHWTable allocates a zeroed table sized C(blocklen,d) per degree.
func NewHWTable(blocklen, degree int) *HWTable {
	hws := make([][]uint64, degree+1)
	for d := 0; d <= degree; d++ {
		hws[d] = make([]uint64, stats.Comb(blocklen, d))
	}
	return &HWTable{Degree: degree, HWs: hws}
}

// Add accumulates chunk's per-degree Hamming weights elementwise. chunk
// need not include degree 0 (EvalAllTerms never returns it).
func (t *HWTable) Add(chunk [][]uint64) {
	for d := 1; d <= t.Degree && d < len(chunk); d++ {
		row := t.HWs[d]
		for i, hw := range chunk[d] {
			row[i] += hw
		}
	}
}

// Merge adds another table's counters into t elementwise (spec.md §5:
// "the model is associative/commutative under addition, so partial
// results merge losslessly").
func (t *HWTable) Merge(other *HWTable) {
	for d := 1; d <= t.Degree && d < len(other.HWs); d++ {
		for i, hw := range other.HWs[d] {
			t.HWs[d][i] += hw
		}
	}
}
