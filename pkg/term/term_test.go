package term

import (
	"reflect"
	"testing"
)

func TestGenerateCountAndOrder(t *testing.T) {
	cases := []struct{ d, maxVar, want int }{
		{1, 7, 8},
		{2, 7, 28},
		{3, 7, 56},
		{0, 7, 1},
	}
	for _, c := range cases {
		got := Generate(c.d, c.maxVar)
		if len(got) != c.want {
			t.Errorf("Generate(%d,%d) len = %d, want %d", c.d, c.maxVar, len(got), c.want)
		}
	}

	terms := Generate(2, 3)
	want := []Term{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("Generate(2,3) = %v, want %v", terms, want)
	}
}

func TestGenerateNoRepeats(t *testing.T) {
	terms := Generate(3, 9)
	seen := make(map[string]bool)
	for _, tm := range terms {
		key := ""
		for _, v := range tm {
			key += string(rune('a' + v))
		}
		if seen[key] {
			t.Fatalf("duplicate term %v", tm)
		}
		seen[key] = true
	}
}

func TestBuildBijection(t *testing.T) {
	m := Build(8, 3)
	for d := 0; d <= 3; d++ {
		n := m.Count(d)
		seen := make(map[int]bool)
		for i := 0; i < n; i++ {
			tm := m.At(d, i)
			if tm.Degree() != d {
				t.Fatalf("degree mismatch at d=%d idx=%d: %v", d, i, tm)
			}
			key := 0
			for _, v := range tm {
				key = key*16 + v
			}
			if seen[key] {
				t.Fatalf("non-distinct tuple at d=%d idx=%d", d, i)
			}
			seen[key] = true
		}
	}
	if m.Count(1) != 8 || m.Count(2) != 28 || m.Count(3) != 56 {
		t.Fatalf("unexpected counts: %d %d %d", m.Count(1), m.Count(2), m.Count(3))
	}
}

func TestUnionDedupesAndSorts(t *testing.T) {
	u := Union(Term{2, 0}, Term{0, 1}, Term{1, 3})
	want := Term{0, 1, 2, 3}
	if !reflect.DeepEqual(u, want) {
		t.Errorf("Union = %v, want %v", u, want)
	}
}
