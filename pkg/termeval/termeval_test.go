package termeval

import (
	"math"
	"testing"

	"github.com/oisee/polydist/pkg/term"
)

func TestEvalAllTermsZeroData(t *testing.T) {
	data := make([]byte, 1024)
	e := New(8, 3)
	if err := e.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hws := e.EvalAllTerms(3)
	for d := 1; d <= 3; d++ {
		for i, hw := range hws[d] {
			if hw != 0 {
				t.Errorf("deg %d idx %d hw = %d, want 0", d, i, hw)
			}
		}
	}
}

func TestEvalAllTermsOnesData(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = 0xFF
	}
	e := New(8, 3)
	if err := e.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n := uint64(e.NumEvals())
	hws := e.EvalAllTerms(3)
	for d := 1; d <= 3; d++ {
		for i, hw := range hws[d] {
			if hw != n {
				t.Errorf("deg %d idx %d hw = %d, want %d", d, i, hw, n)
			}
		}
	}
}

func TestEvalAllTermsCounts(t *testing.T) {
	data := make([]byte, 2048)
	e := New(8, 3)
	if err := e.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	hws := e.EvalAllTerms(3)
	want := []int{0, 8, 28, 56}
	for d := 1; d <= 3; d++ {
		if len(hws[d]) != want[d] {
			t.Errorf("deg %d count = %d, want %d", d, len(hws[d]), want[d])
		}
	}
}

func TestEvalPolyXORLinear(t *testing.T) {
	data := []byte{0xA5, 0x3C, 0x0F, 0xF0, 0x99, 0x66, 0x12, 0x34, 0x56, 0x78}
	e := New(8, 3)
	if err := e.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	res := e.NewScratch()
	subres := e.NewScratch()

	a := term.Poly{{0, 1}}
	b := term.Poly{{2, 3}}

	ra := e.NewScratch()
	e.EvalPoly(a, ra, subres)
	rb := e.NewScratch()
	e.EvalPoly(b, rb, subres)

	union := append(term.Poly{}, a...)
	union = append(union, b...)
	e.EvalPoly(union, res, subres)

	for i := 0; i < len(res); i++ {
		if res[i] != (ra[i] ^ rb[i]) {
			t.Fatalf("XOR-linearity violated at word %d", i)
		}
	}
}

func TestEvalPolySelfXORCancels(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	e := New(8, 2)
	if err := e.Load(data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	res := e.NewScratch()
	subres := e.NewScratch()
	poly := term.Poly{{0, 1}, {0, 1}}
	e.EvalPoly(poly, res, subres)
	if e.HW(res) != 0 {
		t.Fatalf("hw(A xor A) = %d, want 0", e.HW(res))
	}
}

func TestExppTermDeg(t *testing.T) {
	e := New(8, 3)
	for d := 0; d <= 3; d++ {
		want := math.Pow(2, -float64(d))
		if got := e.ExppTermDeg(d); got != want {
			t.Errorf("ExppTermDeg(%d) = %f, want %f", d, got, want)
		}
	}
}

func TestExppPolySingleMonomial(t *testing.T) {
	p := term.Poly{{0, 1, 2}}
	got := ExppPoly(p)
	want := 0.125
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ExppPoly({0,1,2}) = %f, want %f", got, want)
	}
}

func TestExppPolyDisjointXORIsHalf(t *testing.T) {
	// Two independent fair-coin monomials XORed is itself fair.
	p := term.Poly{{0}, {1}}
	got := ExppPoly(p)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ExppPoly({0}xor{1}) = %f, want 0.5", got)
	}
}

func TestExppPolySharedVariableExact(t *testing.T) {
	// {0,1} xor {0}: exact truth table over vars {0,1}.
	// 00->0^0=0 01->0^0=0 10->0^1=1 11->1^1=0 => P(1) = 1/4
	p := term.Poly{{0, 1}, {0}}
	got := ExppPoly(p)
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("ExppPoly({0,1}xor{0}) = %f, want 0.25", got)
	}
}
