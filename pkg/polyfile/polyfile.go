// Package polyfile implements the host-level JSON format for
// user-supplied polynomials: one polynomial per JSON value, each either
// a flat []int (promoted to a single-monomial polynomial) or a [][]int
// (a full XOR-of-monomials polynomial), plus the out-of-range variable
// policy (spec.md §6).
package polyfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/oisee/polydist/pkg/term"
)

// Policy decides what happens when a polynomial references a variable
// outside [0, blocklen).
type Policy int

const (
	// Fail rejects the polynomial with a *PolynomialError.
	Fail Policy = iota
	// Ignore silently drops the polynomial (FixPoly returns nil, nil).
	Ignore
	// Mod reduces the offending variable modulo blocklen.
	Mod
)

// ParsePolicy parses the --poly-var-policy flag value.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "fail":
		return Fail, nil
	case "ignore":
		return Ignore, nil
	case "mod":
		return Mod, nil
	default:
		return 0, fmt.Errorf("polyfile: unknown policy %q: use fail, ignore, or mod", s)
	}
}

// PolynomialError reports a malformed or out-of-range polynomial.
type PolynomialError struct {
	Reason string
}

func (e *PolynomialError) Error() string { return fmt.Sprintf("invalid polynomial: %s", e.Reason) }

// rawPoly accepts either a flat []int or a [][]int, mirroring the
// Python original's dynamic-typed polynomial parameter.
type rawPoly struct {
	monomials [][]int
}

func (r *rawPoly) UnmarshalJSON(data []byte) error {
	var nested [][]int
	if err := json.Unmarshal(data, &nested); err == nil {
		r.monomials = nested
		return nil
	}
	var flat []int
	if err := json.Unmarshal(data, &flat); err == nil {
		r.monomials = [][]int{flat}
		return nil
	}
	return fmt.Errorf("polynomial is not valid (list of ints or list of lists expected)")
}

// FixPoly validates and canonicalizes a raw polynomial against
// blocklen under policy, mirroring the original's _fix_poly. A nil,
// nil return (under Ignore) means the caller should silently skip this
// polynomial.
func FixPoly(raw [][]int, blocklen int, policy Policy) (term.Poly, error) {
	if len(raw) == 0 {
		return nil, &PolynomialError{Reason: "empty polynomial not allowed"}
	}
	poly := make(term.Poly, len(raw))
	for i, mono := range raw {
		fixed := make([]int, len(mono))
		for j, v := range mono {
			if v < 0 || v >= blocklen {
				switch policy {
				case Ignore:
					return nil, nil
				case Mod:
					v = ((v % blocklen) + blocklen) % blocklen
				default:
					return nil, &PolynomialError{Reason: fmt.Sprintf(
						"variable %d not valid (blocklen is %d)", v, blocklen)}
				}
			}
			fixed[j] = v
		}
		poly[i] = term.Union(term.Term(fixed))
	}
	return poly, nil
}

// Decode parses a single JSON polynomial value (flat or nested) and
// fixes it against blocklen/policy.
func Decode(data []byte, blocklen int, policy Policy) (term.Poly, error) {
	var raw rawPoly
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &PolynomialError{Reason: err.Error()}
	}
	return FixPoly(raw.monomials, blocklen, policy)
}

// LoadFile reads one JSON polynomial per line (blank lines and lines
// starting with "#" or "//" are skipped), matching the original
// tool's --poly-file format.
func LoadFile(r io.Reader, blocklen int, policy Policy) ([]term.Poly, error) {
	var polys []term.Poly
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		p, err := Decode([]byte(line), blocklen, policy)
		if err != nil {
			return nil, fmt.Errorf("polyfile: %w", err)
		}
		if p == nil {
			continue
		}
		polys = append(polys, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("polyfile: reading poly file: %w", err)
	}
	return polys, nil
}

// Builtin returns the canned self-test polynomial set (spec.md
// SUPPLEMENTED FEATURES: "gen-poly --builtin"), grounded on the
// original's get_testing_polynomials.
func Builtin() []term.Poly {
	return []term.Poly{
		{{0}},
		{{0, 1}},
		{{0, 1, 2}},
		{{0, 1, 2}, {0}},
		{{5, 6, 7}, {7, 8, 9}},
		{{1, 2}, {2, 3}, {1, 3}},
		{{0, 1, 2}, {2, 3, 4}, {5, 6, 7}},
		{{0, 1, 2}, {2, 3, 4}, {1, 2, 3}},
	}
}
