package analysis

import (
	"fmt"

	"github.com/oisee/polydist/pkg/term"
)

// ConfigError reports an invalid Config.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("invalid config: %s", e.Reason) }

// ShapeMismatchError reports a reference chunk whose length differs from
// the primary chunk's.
type ShapeMismatchError struct {
	PrimaryLen, RefLen int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("reference data stream has a different size: primary=%d ref=%d", e.PrimaryLen, e.RefLen)
}

// Config enumerates every tunable of the analyser (spec.md §4.5).
type Config struct {
	Blocklen int // bits per block, e.g. 128
	Degree   int // D, inclusive max monomial degree

	TopK       *int // nil disables top-k selection / combination search
	TopComb    int  // max combination arity, iterates 1..TopComb
	CombRandom int  // extra random monomials injected into the top-terms pool per degree
	Seed       uint64

	ZScoreThresh float64

	CombineAllDeg bool // top-terms pool is union across all degrees vs only degree D
	NoCombXOR     bool
	NoCombAND     bool
	AllDegCompute bool // evaluate the full degree ladder vs only user polynomials
	DoRef         bool

	InputPolys []term.Poly

	// NumWorkers bounds the combination-search worker pool (0 = GOMAXPROCS).
	NumWorkers int
}

// Validate checks the configuration for the constraints spec.md §7
// assigns to ConfigError: invalid blocklen, degree, top_k/top_comb out
// of range.
func (c Config) Validate() error {
	if c.Blocklen <= 0 {
		return &ConfigError{Reason: "blocklen must be positive"}
	}
	if c.Degree < 0 || c.Degree > c.Blocklen {
		return &ConfigError{Reason: "degree must be in [0, blocklen]"}
	}
	if c.TopK != nil && *c.TopK < 0 {
		return &ConfigError{Reason: "top_k must be non-negative when set"}
	}
	if c.TopComb < 0 {
		return &ConfigError{Reason: "top_comb must be non-negative"}
	}
	if c.CombRandom < 0 {
		return &ConfigError{Reason: "comb_random must be non-negative"}
	}
	if c.ZScoreThresh < 0 {
		return &ConfigError{Reason: "zscore_thresh must be non-negative"}
	}
	for i, p := range c.InputPolys {
		if len(p) == 0 {
			return &ConfigError{Reason: fmt.Sprintf("input polynomial %d is empty", i)}
		}
		for _, mono := range p {
			for _, v := range mono {
				if v < 0 || v >= c.Blocklen {
					return &ConfigError{Reason: fmt.Sprintf("input polynomial %d references variable %d out of range [0,%d)", i, v, c.Blocklen)}
				}
			}
		}
	}
	return nil
}
