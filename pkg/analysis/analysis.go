// Package analysis implements HWAnalysis, the per-chunk/cumulative
// orchestrator: it drives pkg/termeval to evaluate every monomial up to
// the configured degree, ranks monomials by z-score, and searches
// XOR/AND combinations of the top-ranked monomials for a stronger
// distinguisher (spec.md §4.5).
package analysis

import (
	"math/rand/v2"

	"github.com/oisee/polydist/pkg/inputpoly"
	"github.com/oisee/polydist/pkg/report"
	"github.com/oisee/polydist/pkg/stats"
	"github.com/oisee/polydist/pkg/term"
	"github.com/oisee/polydist/pkg/termeval"
	"github.com/zeebo/blake3"
)

// Analysis is the stateful orchestrator. It is not safe for concurrent
// use on a single instance (spec.md §5): the host runs independent
// instances per chunk-partition and merges HWTables.
type Analysis struct {
	cfg Config

	termMap *term.Map
	ev      *termeval.Eval
	refEv   *termeval.Eval

	total   *HWTable
	refTot  *HWTable
	totalN  int
	poly    *inputpoly.Sink
	rng     *rand.Rand
	reporter report.Reporter
}

// New validates cfg and builds the term map and evaluators.
func New(cfg Config) (*Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Analysis{
		cfg:     cfg,
		termMap: term.Build(cfg.Blocklen, cfg.Degree),
		ev:      termeval.New(cfg.Blocklen, cfg.Degree),
		total:   NewHWTable(cfg.Blocklen, cfg.Degree),
		poly:    inputpoly.NewSink(cfg.InputPolys),
	}
	if cfg.DoRef {
		a.refEv = termeval.New(cfg.Blocklen, cfg.Degree)
		a.refTot = NewHWTable(cfg.Blocklen, cfg.Degree)
	}
	if cfg.CombRandom > 0 {
		a.rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xDEADBEEF))
	}
	return a, nil
}

// SetReporter binds the Reporter the host wants per-chunk and final
// output written to. Optional: a nil reporter silently drops output.
func (a *Analysis) SetReporter(r report.Reporter) { a.reporter = r }

// ChunkReport is the result of one ProcessChunk call.
type ChunkReport struct {
	NumEvals     int
	Fingerprint  [32]byte
	InputResults []report.CombinedIdx
	PerDegree    map[int][]report.CombinedIdx // ranked, per degree
	Combos       []report.Combined            // ranked, top-30 cap applied by caller

	// RefZDeg holds, per degree, the reference stream's z-score for each
	// term.Map index (unranked, in TermMap order) — present only when a
	// reference stream was supplied. Used to subtract baseline drift
	// common to both streams (spec.md §1).
	RefZDeg map[int][]float64
}

// FinalReport is the result of Finished(): the same shape as
// ChunkReport but computed over cumulative totals across every chunk
// processed (spec.md: "finished reports cumulative total_hws,
// ref_total_hws, and input_poly_hws using total_n trials").
type FinalReport struct {
	ChunkReport
	TotalN int
}

// ProcessChunk loads bits (and, if present, refBits) and runs the
// analysis pipeline (spec.md §4.5 steps 1-4) against this chunk alone,
// while folding its per-degree Hamming weights into the cumulative
// HWTable for Finished().
func (a *Analysis) ProcessChunk(bits, refBits []byte) (*ChunkReport, error) {
	if err := a.ev.Load(bits); err != nil {
		return nil, err
	}

	var chunkHWs [][]uint64
	if a.cfg.AllDegCompute {
		chunkHWs = a.ev.EvalAllTerms(a.cfg.Degree)
		a.total.Add(chunkHWs)
	}

	var inputHWs []uint64
	if len(a.cfg.InputPolys) > 0 {
		inputHWs = a.poly.ProcessChunk(a.ev)
	}

	a.totalN += a.ev.NumEvals()

	var refHWs [][]uint64
	if refBits != nil {
		if a.refEv == nil {
			return nil, &ConfigError{Reason: "reference data supplied but Config.DoRef is false"}
		}
		if len(refBits) != len(bits) {
			return nil, &ShapeMismatchError{PrimaryLen: len(bits), RefLen: len(refBits)}
		}
		if err := a.refEv.Load(refBits); err != nil {
			return nil, err
		}
		if a.cfg.AllDegCompute {
			refHWs = a.refEv.EvalAllTerms(a.cfg.Degree)
			a.refTot.Add(refHWs)
		}
	}

	fp := blake3.Sum256(bits)
	var comboRefEv *termeval.Eval
	if refBits != nil {
		comboRefEv = a.refEv
	}
	rep := a.analyse(a.ev.NumEvals(), chunkHWs, inputHWs, refHWs, comboRefEv)
	rep.NumEvals = a.ev.NumEvals()
	rep.Fingerprint = fp
	if a.reporter != nil {
		a.emit(rep)
	}
	return rep, nil
}

// Finished runs the same analysis over the cumulative totals
// accumulated across every ProcessChunk call, using TotalN trials.
func (a *Analysis) Finished() *FinalReport {
	var hws, refHWs [][]uint64
	if a.cfg.AllDegCompute {
		hws = a.total.HWs
		if a.cfg.DoRef {
			refHWs = a.refTot.HWs
		}
	}
	// refEv is nil here: the live reference Eval only holds the most
	// recent chunk's bits, which no longer correspond to total_n trials,
	// so the cumulative combo search cannot differential-subtract it.
	rep := a.analyse(a.totalN, hws, a.poly.Totals(), refHWs, nil)
	rep.NumEvals = a.totalN
	if a.reporter != nil {
		a.emit(&rep.ChunkReport)
	}
	return &FinalReport{ChunkReport: *rep, TotalN: a.totalN}
}

func (a *Analysis) emit(rep *ChunkReport) {
	a.reporter.ChunkHeader(rep.NumEvals, rep.Fingerprint)
	for _, c := range rep.InputResults {
		a.reporter.PolyLine(c, a.cfg.InputPolys[c.Idx], absf(c.ZScore) > a.cfg.ZScoreThresh)
	}
	for d := 1; d <= a.cfg.Degree; d++ {
		results, ok := rep.PerDegree[d]
		if !ok {
			continue
		}
		limit := len(results)
		if limit > 15 {
			limit = 15
		}
		for _, c := range results[:limit] {
			tm := a.termMap.At(d, c.Idx)
			refZDiff := 0.0
			if refZ, ok := rep.RefZDeg[d]; ok {
				refZDiff = c.ZScore - refZ[c.Idx]
			}
			a.reporter.TermLine(d, c, refZDiff, tm, absf(c.ZScore) > a.cfg.ZScoreThresh)
		}
		zs := make([]float64, len(results))
		for i, c := range results {
			zs[i] = c.ZScore
		}
		a.reporter.DegreeSummary(d, stats.MeanZScore(zs), stats.FailFraction(zs, a.cfg.ZScoreThresh))
	}
	limit := len(rep.Combos)
	if limit > 30 {
		limit = 30
	}
	for i, c := range rep.Combos[:limit] {
		a.reporter.ComboLine(i+1, c, absf(c.ZScore) > a.cfg.ZScoreThresh)
	}
}

// analyse implements spec.md §4.5 steps (a)(b)(c) over the given
// num_evals/hws/hwsInput/refHWs (chunk-local, or cumulative — the
// caller decides which). comboRefEv, when non-nil, is a live Eval
// loaded with this call's reference bits, used to differential-
// subtract the reference z-score from every searched combination.
func (a *Analysis) analyse(numEvals int, hws [][]uint64, hwsInput []uint64, refHWs [][]uint64, comboRefEv *termeval.Eval) *ChunkReport {
	rep := &ChunkReport{PerDegree: make(map[int][]report.CombinedIdx)}

	// (a) input polynomials
	rep.InputResults = a.analyseInput(numEvals, hwsInput)

	if !a.cfg.AllDegCompute || hws == nil {
		return rep
	}

	n := float64(numEvals)
	var topTerms []term.Term
	if refHWs != nil {
		rep.RefZDeg = make(map[int][]float64, a.cfg.Degree)
	}

	for d := 1; d <= a.cfg.Degree; d++ {
		expCnt := n * a.ev.ExppTermDeg(d)
		results := make([]report.CombinedIdx, len(hws[d]))
		for idx, hw := range hws[d] {
			z := stats.ZScore(float64(hw), expCnt, n)
			results[idx] = report.CombinedIdx{
				Combined: report.Combined{ExpCnt: expCnt, ObsCnt: hw, ZScore: z},
				Idx:      idx,
			}
		}
		report.RankByAbsZ(results)
		rep.PerDegree[d] = results

		if refHWs != nil && d < len(refHWs) {
			refZ := make([]float64, len(refHWs[d]))
			for idx, hw := range refHWs[d] {
				refZ[idx] = stats.ZScore(float64(hw), expCnt, n)
			}
			rep.RefZDeg[d] = refZ
		}

		if a.cfg.TopK == nil {
			continue
		}
		if a.cfg.CombineAllDeg || d == a.cfg.Degree {
			k := *a.cfg.TopK
			if k < 0 || k > len(results) {
				k = len(results)
			}
			for _, c := range results[:k] {
				topTerms = append(topTerms, a.termMap.At(d, c.Idx))
			}
			if a.cfg.CombRandom > 0 {
				topTerms = append(topTerms, a.sampleRandomTerms(d, a.cfg.CombRandom)...)
			}
		}
	}

	if a.cfg.TopK == nil || len(topTerms) == 0 {
		return rep
	}
	rep.Combos = a.searchCombinations(topTerms, n, comboRefEv)
	return rep
}

func (a *Analysis) analyseInput(numEvals int, hwsInput []uint64) []report.CombinedIdx {
	if hwsInput == nil {
		return nil
	}
	n := float64(numEvals)
	results := make([]report.CombinedIdx, len(hwsInput))
	for idx, obs := range hwsInput {
		expp := a.poly.ExpP(idx)
		expCnt := n * expp
		z := stats.ZScore(float64(obs), expCnt, n)
		results[idx] = report.CombinedIdx{
			Combined: report.Combined{ExpP: expp, ExpCnt: expCnt, ObsCnt: obs, ZScore: z},
			Idx:      idx,
		}
	}
	report.RankByAbsZ(results)
	return results
}

// sampleRandomTerms draws k distinct degree-d monomials uniformly
// without replacement, for injection into the combination-search pool
// (spec.md §4.5b "comb_random"). Deterministic given Config.Seed.
func (a *Analysis) sampleRandomTerms(d, k int) []term.Term {
	count := a.termMap.Count(d)
	if k > count {
		k = count
	}
	picked := make(map[int]struct{}, k)
	out := make([]term.Term, 0, k)
	for len(out) < k {
		idx := int(a.rng.IntN(count))
		if _, dup := picked[idx]; dup {
			continue
		}
		picked[idx] = struct{}{}
		out = append(out, a.termMap.At(d, idx))
	}
	return out
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
