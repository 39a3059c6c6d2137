package analysis

import (
	"runtime"
	"sync"

	"github.com/oisee/polydist/pkg/bitblock"
	"github.com/oisee/polydist/pkg/report"
	"github.com/oisee/polydist/pkg/stats"
	"github.com/oisee/polydist/pkg/term"
	"github.com/oisee/polydist/pkg/termeval"
)

// comboTask is one XOR or AND combination of top-terms pool indices,
// queued to the worker pool (spec.md §4.5c).
type comboTask struct {
	idxs []int
	xor  bool // true = XOR composite, false = AND composite
}

// searchCombinations evaluates every XOR combination of arity 1..TopComb
// and every AND combination of arity 2..TopComb over pool, in parallel,
// ranked by |z-score|. No arity-1 AND task is queued: a one-term AND is
// the same monomial as the arity-1 XOR task for that term. It is
// grounded on the teacher's worker-pool shape (task channel, mutex-
// guarded result slice, WaitGroup) adapted from "search over candidate
// instruction sequences" to "search over a-subsets of the top-terms
// pool."
//
// refEv, when non-nil, is an Eval already loaded with the current
// chunk's reference-stream bits: each combo is then evaluated against
// both streams and ZScore holds the differential z_data - z_ref rather
// than the raw z_data, matching the per-term differential computed in
// analyse. refEv must be nil when no current-chunk reference buffer is
// available (e.g. Finished's cumulative pass, where the live Eval no
// longer corresponds to total_n trials).
func (a *Analysis) searchCombinations(pool []term.Term, n float64, refEv *termeval.Eval) []report.Combined {
	if a.cfg.TopComb <= 0 || len(pool) == 0 {
		return nil
	}

	var tasks []comboTask
	for arity := 1; arity <= a.cfg.TopComb && arity <= len(pool); arity++ {
		enumerateSubsets(len(pool), arity, func(idxs []int) {
			cp := append([]int(nil), idxs...)
			if !a.cfg.NoCombXOR {
				tasks = append(tasks, comboTask{idxs: cp, xor: true})
			}
			if !a.cfg.NoCombAND && arity > 1 {
				tasks = append(tasks, comboTask{idxs: cp, xor: false})
			}
		})
	}
	if len(tasks) == 0 {
		return nil
	}

	workers := a.cfg.NumWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan comboTask, len(tasks))
	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)

	var (
		mu      sync.Mutex
		results []report.Combined
		wg      sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := a.ev.NewScratch()
			subres := a.ev.NewScratch()
			var refRes, refSubres bitblock.Packed
			if refEv != nil {
				refRes = refEv.NewScratch()
				refSubres = refEv.NewScratch()
			}
			for t := range taskCh {
				poly := buildComboPoly(pool, t)
				expp := a.ev.ExppPoly(poly)
				expCnt := n * expp
				if expCnt == 0 {
					continue
				}
				obs := a.ev.HW(a.ev.EvalPoly(poly, res, subres))
				z := stats.ZScore(float64(obs), expCnt, n)
				if refEv != nil {
					refObs := refEv.HW(refEv.EvalPoly(poly, refRes, refSubres))
					z -= stats.ZScore(float64(refObs), expCnt, n)
				}
				mu.Lock()
				results = append(results, report.Combined{
					Poly:   poly,
					ExpP:   expp,
					ExpCnt: expCnt,
					ObsCnt: obs,
					ZScore: z,
				})
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	report.RankCombosByAbsZ(results)
	return results
}

// buildComboPoly turns a combination task into the polynomial it
// represents: an XOR combo keeps each selected monomial distinct and
// XORs them; an AND combo unions their variables into one monomial.
func buildComboPoly(pool []term.Term, t comboTask) term.Poly {
	if t.xor {
		poly := make(term.Poly, len(t.idxs))
		for i, idx := range t.idxs {
			poly[i] = pool[idx]
		}
		return poly
	}
	terms := make([]term.Term, len(t.idxs))
	for i, idx := range t.idxs {
		terms[i] = pool[idx]
	}
	return term.Poly{term.Union(terms...)}
}

// enumerateSubsets calls yield once per size-k subset of {0,...,n-1},
// in lexicographic order.
func enumerateSubsets(n, k int, yield func(idxs []int)) {
	if k <= 0 || k > n {
		return
	}
	idxs := make([]int, k)
	for i := range idxs {
		idxs[i] = i
	}
	for {
		yield(idxs)
		i := k - 1
		for i >= 0 && idxs[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idxs[i]++
		for j := i + 1; j < k; j++ {
			idxs[j] = idxs[j-1] + 1
		}
	}
}
