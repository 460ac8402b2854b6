package solver

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestConjugateGradientConverges(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 2, 3, 5, 10, 20} {
		ata, atd, want := randomSystem(rnd, n)
		cg, err := NewConjugateGradient(ata, atd, nil)
		if err != nil {
			t.Fatalf("n=%d: NewConjugateGradient: %v", n, err)
		}
		if err := cg.Compute(); err != nil {
			t.Fatalf("n=%d: Compute: %v", n, err)
		}
		if cg.NumAnswers() != n {
			t.Fatalf("n=%d: NumAnswers() = %d", n, cg.NumAnswers())
		}
		got, err := cg.Answer(n)
		if err != nil {
			t.Fatalf("n=%d: Answer(%d): %v", n, n, err)
		}
		dist := floats.Distance(got.RawVector().Data, want.RawVector().Data, math.Inf(1))
		if dist > 1e-10 {
			t.Errorf("n=%d: final iterate off by %g", n, dist)
		}
	}
}

func TestConjugateGradientStartsFromInitialModel(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	ata, atd, want := randomSystem(rnd, 6)
	m0 := mat.NewVecDense(6, nil)
	for i := 0; i < 6; i++ {
		m0.SetVec(i, rnd.NormFloat64())
	}
	cg, err := NewConjugateGradient(ata, atd, m0)
	if err != nil {
		t.Fatalf("NewConjugateGradient: %v", err)
	}
	if err := cg.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	got, err := cg.Answer(cg.NumAnswers())
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if dist := floats.Distance(got.RawVector().Data, want.RawVector().Data, math.Inf(1)); dist > 1e-9 {
		t.Errorf("final iterate off by %g with nonzero start", dist)
	}
	if _, err := NewConjugateGradient(ata, atd, mat.NewVecDense(2, nil)); err == nil {
		t.Error("expected error for initial model of wrong length")
	}
}

// Search directions must be conjugate under AᵀA.
func TestConjugateGradientDirections(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	ata, atd, _ := randomSystem(rnd, 6)
	cg, err := NewConjugateGradient(ata, atd, nil)
	if err != nil {
		t.Fatalf("NewConjugateGradient: %v", err)
	}
	if err := cg.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	var ap mat.VecDense
	for i := 0; i < len(cg.dirs); i++ {
		for j := 0; j < i; j++ {
			ap.MulVec(ata, cg.dirs[j])
			cross := mat.Dot(cg.dirs[i], &ap)
			scale := math.Sqrt(cg.energies[i] * cg.energies[j])
			if math.Abs(cross)/scale > 1e-8 {
				t.Errorf("directions %d and %d not conjugate: %g", i, j, cross/scale)
			}
		}
	}
}

// Summing every direction term reproduces σ²·(AᵀA)⁻¹.
func TestConjugateGradientCovariance(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	ata, atd, _ := randomSystem(rnd, 5)
	cg, err := NewConjugateGradient(ata, atd, nil)
	if err != nil {
		t.Fatalf("NewConjugateGradient: %v", err)
	}
	if err := cg.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	const sigma = 2.0
	cov, err := cg.Covariance(sigma, cg.NumAnswers())
	if err != nil {
		t.Fatalf("Covariance: %v", err)
	}
	var prod mat.Dense
	prod.Mul(cov, ata)
	var eye mat.Dense
	eye.Scale(sigma*sigma, identity(5))
	if !mat.EqualApprox(&prod, &eye, 1e-7) {
		t.Errorf("cov·AᵀA =\n%v\nwant σ²·I", mat.Formatted(&prod))
	}
	if _, err := cg.Covariance(sigma, 0); err == nil {
		t.Error("expected error for candidate 0")
	}
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
