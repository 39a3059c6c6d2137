package inputpoly

import (
	"testing"

	"github.com/oisee/polydist/pkg/term"
	"github.com/oisee/polydist/pkg/termeval"
)

func TestProcessChunkAccumulates(t *testing.T) {
	ev := termeval.New(8, 3)
	data := make([]byte, 1024)
	for i := range data {
		data[i] = 0xFF
	}
	if err := ev.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}

	s := NewSink([]term.Poly{{{0}}, {{0, 1}}})
	hws1 := s.ProcessChunk(ev)
	hws2 := s.ProcessChunk(ev)

	n := uint64(ev.NumEvals())
	for i := range hws1 {
		if hws1[i] != n {
			t.Errorf("poly %d chunk hw = %d, want %d", i, hws1[i], n)
		}
	}
	totals := s.Totals()
	for i := range totals {
		if totals[i] != hws1[i]+hws2[i] {
			t.Errorf("poly %d total = %d, want %d", i, totals[i], hws1[i]+hws2[i])
		}
	}
}

func TestNewSinkPrecomputesExpp(t *testing.T) {
	s := NewSink([]term.Poly{{{0, 1, 2}}})
	if got := s.ExpP(0); got != 0.125 {
		t.Errorf("ExpP(0) = %f, want 0.125", got)
	}
}
