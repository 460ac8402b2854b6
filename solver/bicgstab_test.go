package solver

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestBiCGStabConverges(t *testing.T) {
	rnd := rand.New(rand.NewSource(41))
	for _, n := range []int{1, 2, 3, 5, 10, 20} {
		ata, atd, want := randomSystem(rnd, n)
		b, err := NewBiCGStab(ata, atd)
		if err != nil {
			t.Fatalf("n=%d: NewBiCGStab: %v", n, err)
		}
		if err := b.Compute(); err != nil {
			t.Fatalf("n=%d: Compute: %v", n, err)
		}
		if b.NumAnswers() < 1 {
			t.Fatalf("n=%d: no candidates", n)
		}
		got, err := b.Answer(b.NumAnswers())
		if err != nil {
			t.Fatalf("n=%d: Answer: %v", n, err)
		}
		dist := floats.Distance(got.RawVector().Data, want.RawVector().Data, math.Inf(1))
		if dist > 1e-8 {
			t.Errorf("n=%d: final iterate off by %g", n, dist)
		}
	}
}

func TestBiCGStabNoCovariance(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	ata, atd, _ := randomSystem(rnd, 3)
	b, err := NewBiCGStab(ata, atd)
	if err != nil {
		t.Fatalf("NewBiCGStab: %v", err)
	}
	if _, err := b.Covariance(1, 1); err == nil {
		t.Error("expected covariance to be unsupported")
	}
}
