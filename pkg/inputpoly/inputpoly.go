// Package inputpoly evaluates user-supplied polynomials against each
// chunk independently of the degree-ladder sweep, keeping a running
// total per polynomial (spec.md §2 InputPolySink).
package inputpoly

import (
	"github.com/oisee/polydist/pkg/term"
	"github.com/oisee/polydist/pkg/termeval"
)

// Sink holds the user's polynomials, their precomputed expected
// probabilities, and cumulative observed counts.
type Sink struct {
	polys   []term.Poly
	expp    []float64
	totals  []uint64
	lastHWs []uint64
}

// NewSink precomputes expected probabilities for every polynomial.
func NewSink(polys []term.Poly) *Sink {
	s := &Sink{
		polys:  polys,
		expp:   make([]float64, len(polys)),
		totals: make([]uint64, len(polys)),
	}
	for i, p := range polys {
		s.expp[i] = termeval.ExppPoly(p)
	}
	return s
}

// Polys returns the configured polynomials.
func (s *Sink) Polys() []term.Poly { return s.polys }

// ExpP returns the precomputed expected probability of polynomial i.
func (s *Sink) ExpP(i int) float64 { return s.expp[i] }

// Totals returns the cumulative observed Hamming weight per polynomial.
func (s *Sink) Totals() []uint64 { return s.totals }

// ProcessChunk evaluates every polynomial against ev's currently loaded
// chunk, accumulates into the running totals, and returns this chunk's
// per-polynomial observed counts.
func (s *Sink) ProcessChunk(ev *termeval.Eval) []uint64 {
	if len(s.polys) == 0 {
		return nil
	}
	res := ev.NewScratch()
	subres := ev.NewScratch()
	hws := make([]uint64, len(s.polys))
	for i, p := range s.polys {
		obs := ev.HW(ev.EvalPoly(p, res, subres))
		hws[i] = obs
		s.totals[i] += obs
	}
	s.lastHWs = hws
	return hws
}

// LastChunk returns the per-polynomial observed counts from the most
// recent ProcessChunk call.
func (s *Sink) LastChunk() []uint64 { return s.lastHWs }
