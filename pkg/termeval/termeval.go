// Package termeval is the batched monomial/polynomial evaluator: given a
// loaded block buffer it produces Hamming weights for every monomial up
// to a bounded degree, and evaluates arbitrary XOR/AND polynomials
// against it.
package termeval

import (
	"math"

	"github.com/oisee/polydist/pkg/bitblock"
	"github.com/oisee/polydist/pkg/stats"
	"github.com/oisee/polydist/pkg/term"
)

// ExactVarThreshold is the union-of-variables cutoff below which ExppPoly
// computes the exact expected probability by brute-force truth-table
// enumeration; above it, the product-independence approximation is used
// (spec.md §4.3 Open Question; see DESIGN.md for the resolution).
const ExactVarThreshold = 20

// Eval evaluates monomials and polynomials against a loaded block
// buffer. Load must not run concurrently with any evaluation. EvalPoly
// only reads the loaded buffer, so several goroutines may call it on the
// same Eval at once provided each passes its own res/subres buffers from
// NewScratch — as pkg/analysis's combination-search worker pool does.
type Eval struct {
	buf    *bitblock.Buffer
	degree int
}

// New creates an evaluator for the given block size and maximum degree.
func New(blocklen, degree int) *Eval {
	return &Eval{buf: bitblock.NewBuffer(blocklen), degree: degree}
}

// Load loads a chunk of bytes into the underlying block buffer.
func (e *Eval) Load(data []byte) error {
	return e.buf.Load(data)
}

// NumEvals returns the number of blocks loaded (the trial count for this
// chunk).
func (e *Eval) NumEvals() int { return e.buf.NBlocks() }

// Blocklen returns the configured block size in bits.
func (e *Eval) Blocklen() int { return e.buf.Blocklen() }

// NewScratch allocates a packed bit-vector sized for the currently
// loaded chunk, suitable for use as a res/subres buffer in EvalPoly.
func (e *Eval) NewScratch() bitblock.Packed {
	return bitblock.NewPacked(e.buf.NBlocks())
}

// EvalAllTerms returns, for each degree d in 1..D, the Hamming weight of
// every degree-d monomial in term.Generate/term.Map lexicographic order.
// It walks the term tree depth-first, reusing the degree-(d-1) AND-plane
// to build the degree-d extension (one AndInto per step). Every node of
// the tree below the root is exactly one monomial of degree 1..D, so the
// traversal performs exactly sum_d C(blocklen,d) plane operations.
func (e *Eval) EvalAllTerms(D int) [][]uint64 {
	blocklen := e.buf.Blocklen()
	n := e.buf.NBlocks()

	hws := make([][]uint64, D+1)
	for d := 1; d <= D; d++ {
		hws[d] = make([]uint64, 0, int(stats.Comb(blocklen, d)))
	}
	if D == 0 {
		return hws
	}

	running := make([]bitblock.Packed, D+1)
	for d := 1; d <= D; d++ {
		running[d] = bitblock.NewPacked(n)
	}

	var rec func(depth, start int)
	rec = func(depth, start int) {
		if depth > 0 {
			hws[depth] = append(hws[depth], running[depth].PopCount())
		}
		if depth == D {
			return
		}
		for v := start; v < blocklen; v++ {
			if depth == 0 {
				bitblock.CopyInto(running[1], e.buf.Plane(v))
			} else {
				bitblock.AndInto(running[depth+1], running[depth], e.buf.Plane(v))
			}
			rec(depth+1, v+1)
		}
	}
	rec(0, 0)
	return hws
}

// EvalPoly evaluates poly = XOR of its monomials (each an AND of its
// variables' planes) into res, using subres as per-monomial scratch.
// Duplicate monomials XOR-cancel by construction.
func (e *Eval) EvalPoly(poly term.Poly, res, subres bitblock.Packed) bitblock.Packed {
	bitblock.Zero(res)
	for _, mono := range poly {
		e.evalMonomial(mono, subres)
		bitblock.XorInto(res, res, subres)
	}
	return res
}

func (e *Eval) evalMonomial(mono term.Term, dst bitblock.Packed) {
	if len(mono) == 0 {
		bitblock.FillOnes(dst, e.buf.NBlocks())
		return
	}
	bitblock.CopyInto(dst, e.buf.Plane(mono[0]))
	for _, v := range mono[1:] {
		bitblock.AndInto(dst, dst, e.buf.Plane(v))
	}
}

// HW returns the Hamming weight (popcount) of a packed evaluation
// result.
func (e *Eval) HW(p bitblock.Packed) uint64 { return p.PopCount() }

// ExppTermDeg returns 2^-d: the expected probability that a uniform
// random block satisfies a degree-d monomial.
func (e *Eval) ExppTermDeg(d int) float64 {
	return math.Pow(2, -float64(d))
}

// ExppPoly returns the expected probability of poly's XOR-of-monomials
// value under uniform-random bits (see the package-level ExppPoly for
// the exact/approximate contract).
func (e *Eval) ExppPoly(poly term.Poly) float64 {
	return ExppPoly(poly)
}

// ExppPoly returns the expected probability of poly's XOR-of-monomials
// value under uniform-random bits. Exact (brute-force truth table) when
// the union of variables across poly's monomials has at most
// ExactVarThreshold elements; otherwise the product-independence
// approximation (1 - prod(1-2*p_i))/2.
func ExppPoly(poly term.Poly) float64 {
	vars := term.Union(poly...)
	if len(vars) <= ExactVarThreshold {
		return exactExpp(poly, vars)
	}
	return approxExpp(poly)
}

func exactExpp(poly term.Poly, vars term.Term) float64 {
	idx := make(map[int]int, len(vars))
	for i, v := range vars {
		idx[v] = i
	}
	n := len(vars)
	total := 1 << uint(n)
	ones := 0
	for assign := 0; assign < total; assign++ {
		val := 0
		for _, mono := range poly {
			m := 1
			for _, v := range mono {
				if (assign>>uint(idx[v]))&1 == 0 {
					m = 0
					break
				}
			}
			val ^= m
		}
		ones += val
	}
	return float64(ones) / float64(total)
}

func approxExpp(poly term.Poly) float64 {
	prod := 1.0
	for _, mono := range poly {
		p := math.Pow(2, -float64(mono.Degree()))
		prod *= 1 - 2*p
	}
	return (1 - prod) / 2
}
