package analysis

// Snapshot is the exported, gob-encodable cumulative state of an
// Analysis: enough to resume accumulating after a process restart. The
// core itself never persists this (spec.md non-goal); only a host that
// chooses to (cmd/polydist's checkpoint/resume feature) calls Snapshot
// and Restore.
type Snapshot struct {
	TotalN      int
	Total       *HWTable
	RefTotal    *HWTable
	InputTotals []uint64
}

// Snapshot captures the analyser's cumulative counters.
func (a *Analysis) Snapshot() *Snapshot {
	return &Snapshot{
		TotalN:      a.totalN,
		Total:       a.total,
		RefTotal:    a.refTot,
		InputTotals: append([]uint64(nil), a.poly.Totals()...),
	}
}

// Restore replaces the analyser's cumulative counters with a prior
// Snapshot's. The caller must construct the Analysis with the same
// Config the snapshot was taken under.
func (a *Analysis) Restore(s *Snapshot) {
	a.totalN = s.TotalN
	if s.Total != nil {
		a.total = s.Total
	}
	if s.RefTotal != nil {
		a.refTot = s.RefTotal
	}
	copy(a.poly.Totals(), s.InputTotals)
}
