// Package report formats ranked z-score listings for the host: the
// Combined/CombinedIdx records spec.md §9 asks for in place of the
// original's namedtuples, plus the stable |z|-desc ranking and the
// line-oriented Reporter the host binds (spec.md §6, §9 "the core must
// not depend on any global logging or plotting facility").
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/oisee/polydist/pkg/term"
)

// Combined is a candidate distinguisher: a polynomial (or single
// monomial) together with its expected and observed statistics.
type Combined struct {
	Poly   term.Poly
	ExpP   float64
	ExpCnt float64
	ObsCnt uint64
	ZScore float64
}

// CombinedIdx is a Combined result that additionally refers to a single
// monomial by its TermMap index.
type CombinedIdx struct {
	Combined
	Idx int
}

// Reporter receives formatted lines; the core never writes directly to
// any sink. cmd/polydist binds LineReporter to stdout.
type Reporter interface {
	ChunkHeader(n int, fingerprint [32]byte)
	TermLine(deg int, c CombinedIdx, refZDiff float64, tm term.Term, fail bool)
	PolyLine(c CombinedIdx, poly term.Poly, fail bool)
	ComboLine(rank int, c Combined, fail bool)
	DegreeSummary(deg int, mean float64, failFraction float64)
}

// LineReporter is the default Reporter: one line per record, written to
// an io.Writer, matching the teacher's direct fmt.Printf-to-stdout
// reporting style (no logger, no structured fields).
type LineReporter struct {
	W io.Writer
}

func NewLineReporter(w io.Writer) *LineReporter { return &LineReporter{W: w} }

func failMarker(fail bool) string {
	if fail {
		return "x"
	}
	return " "
}

func (r *LineReporter) ChunkHeader(n int, fingerprint [32]byte) {
	fmt.Fprintf(r.W, "=== chunk: %d blocks, fp=%x ===\n", n, fingerprint[:8])
}

func (r *LineReporter) TermLine(deg int, c CombinedIdx, refZDiff float64, tm term.Term, fail bool) {
	fmt.Fprintf(r.W, " - zscore[deg=%d]: %+09.5f, %+09.5f, observed: %08d, expected: %08.0f %s idx: %6d, term: %v\n",
		deg, c.ZScore, refZDiff, c.ObsCnt, c.ExpCnt, failMarker(fail), c.Idx, tm)
}

func (r *LineReporter) PolyLine(c CombinedIdx, poly term.Poly, fail bool) {
	fmt.Fprintf(r.W, " - zscore[idx%02d]: %+09.5f, observed: %08d, expected: %08.0f %s idx: %6d, poly: %v\n",
		c.Idx, c.ZScore, c.ObsCnt, c.ExpCnt, failMarker(fail), c.Idx, poly)
}

func (r *LineReporter) ComboLine(rank int, c Combined, fail bool) {
	diffPct := 0.0
	if c.ExpCnt != 0 {
		diffPct = 100.0 * (c.ExpCnt - float64(c.ObsCnt)) / c.ExpCnt
	}
	fmt.Fprintf(r.W, " - [%2d] best poly zscore %+9.5f, expp: %.4f, exp: %4.0f, obs: %d, diff: %.2f%% %s poly: %v\n",
		rank, c.ZScore, c.ExpP, c.ExpCnt, c.ObsCnt, diffPct, failMarker(fail), c.Poly)
}

func (r *LineReporter) DegreeSummary(deg int, mean float64, failFraction float64) {
	fmt.Fprintf(r.W, "Mean zscore[deg=%d]: %f\n", deg, mean)
	fmt.Fprintf(r.W, "Num of fails[deg=%d]: %.2f%%\n", deg, 100.0*failFraction)
}

// RankByAbsZ sorts results by |ZScore| descending, ties broken by
// ascending Idx (spec.md §8 invariant 9: "reporting order is stable:
// results with equal |z| are ordered by ascending index").
func RankByAbsZ(results []CombinedIdx) {
	sort.SliceStable(results, func(i, j int) bool {
		ai, aj := absf(results[i].ZScore), absf(results[j].ZScore)
		if ai != aj {
			return ai > aj
		}
		return results[i].Idx < results[j].Idx
	})
}

// RankCombosByAbsZ sorts anonymous (non-indexed) combination results by
// |ZScore| descending; ties keep their original (lexicographic subset
// enumeration) order via a stable sort.
func RankCombosByAbsZ(results []Combined) {
	sort.SliceStable(results, func(i, j int) bool {
		return absf(results[i].ZScore) > absf(results[j].ZScore)
	})
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
