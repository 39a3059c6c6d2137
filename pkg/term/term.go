// Package term builds the canonical index<->variable-set bijection for
// Boolean monomials (AND-terms) over a block of bits, and the
// lexicographic subset generator that bijection is built from.
package term

// Term is a sorted, deduplicated set of variable indices: an AND-term.
// The empty Term is the constant monomial 1.
type Term []int

// Degree returns the number of variables in the term.
func (t Term) Degree() int { return len(t) }

// Union returns the sorted, deduplicated union of variables across a set
// of terms — the single AND-monomial formed by combining them (spec.md
// §9: "the set-union of their variables, not a repeated concatenation").
func Union(terms ...Term) Term {
	seen := make(map[int]struct{})
	for _, t := range terms {
		for _, v := range t {
			seen[v] = struct{}{}
		}
	}
	out := make(Term, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	// insertion sort is fine: terms are tiny (bounded by top_comb*degree)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Poly is a non-empty ordered sequence of monomials; its value is the XOR
// of its constituent monomials. Duplicate monomials XOR-cancel.
type Poly []Term

// Map holds, for every degree 0..Degree, the canonical lexicographic
// ordering of all variable-subsets of that degree over Blocklen
// variables. It is built once and never mutated.
type Map struct {
	Blocklen int
	Degree   int
	terms    [][]Term
}

// Build constructs the term map for all degrees 0..degree over blocklen
// variables.
func Build(blocklen, degree int) *Map {
	m := &Map{Blocklen: blocklen, Degree: degree, terms: make([][]Term, degree+1)}
	m.terms[0] = []Term{{}}
	for d := 1; d <= degree; d++ {
		m.terms[d] = Generate(d, blocklen-1)
	}
	return m
}

// Count returns C(Blocklen, d): the number of degree-d monomials.
func (m *Map) Count(d int) int { return len(m.terms[d]) }

// At returns the d-degree monomial at lexicographic index idx.
func (m *Map) At(d, idx int) Term { return m.terms[d][idx] }

// Generate enumerates every size-d subset of {0,...,maxVar} in strict
// lexicographic order over sorted indices: term_generator from the
// spec's StatsModel, used for TermMap construction. The combination
// search in pkg/analysis enumerates its a-subsets with its own
// enumerateSubsets, in the same lexicographic order.
func Generate(d, maxVar int) []Term {
	if d == 0 {
		return []Term{{}}
	}
	if maxVar < d-1 {
		return nil
	}
	out := make([]Term, 0, expectedCount(d, maxVar))
	buf := make([]int, d)
	var rec func(pos, start int)
	rec = func(pos, start int) {
		if pos == d {
			t := make(Term, d)
			copy(t, buf)
			out = append(out, t)
			return
		}
		limit := maxVar - (d - pos - 1)
		for v := start; v <= limit; v++ {
			buf[pos] = v
			rec(pos+1, v+1)
		}
	}
	rec(0, 0)
	return out
}

// expectedCount is a cheap capacity hint; it need not be exact.
func expectedCount(d, maxVar int) int {
	n := maxVar + 1
	if d > n {
		return 0
	}
	num := 1
	for i := 0; i < d; i++ {
		num *= n - i
		if i > 0 {
			num /= i + 1
		}
	}
	if num < 0 {
		return 0
	}
	return num
}
